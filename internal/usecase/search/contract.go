package search

import (
	"context"

	"github.com/kailas-cloud/cymbalsearch/internal/domain/search/request"
	"github.com/kailas-cloud/cymbalsearch/internal/domain/search/result"
)

// Searcher runs a query against the managed search app.
type Searcher interface {
	Search(ctx context.Context, q request.Query) (*result.Response, error)
}
