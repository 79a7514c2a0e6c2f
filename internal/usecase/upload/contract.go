package upload

import (
	"context"
	"io"
)

// ObjectStore writes a stream to a named object and returns its public URL.
type ObjectStore interface {
	Upload(ctx context.Context, r io.Reader, object, contentType string) (string, error)
}
