package ingest

import (
	"context"
	"io"

	"github.com/kailas-cloud/cymbalsearch/internal/domain/operation"
)

// ObjectStore writes a stream to a named object and returns its public URL.
type ObjectStore interface {
	Upload(ctx context.Context, r io.Reader, object, contentType string) (string, error)
}

// Importer submits vendor import jobs and re-attaches to them by name.
type Importer interface {
	Import(ctx context.Context, src operation.Source) (operation.Job, error)
	Resume(name string) (operation.Job, error)
}

// Ledger persists submitted operations. Optional.
type Ledger interface {
	Save(ctx context.Context, op operation.Operation) error
	Get(ctx context.Context, name string) (operation.Operation, error)
}
