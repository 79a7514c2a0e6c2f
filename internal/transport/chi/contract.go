package chi

import (
	"context"
	"io"

	"github.com/kailas-cloud/cymbalsearch/internal/domain/operation"
	"github.com/kailas-cloud/cymbalsearch/internal/domain/search/request"
	"github.com/kailas-cloud/cymbalsearch/internal/domain/search/result"
	healthuc "github.com/kailas-cloud/cymbalsearch/internal/usecase/health"
	ingestuc "github.com/kailas-cloud/cymbalsearch/internal/usecase/ingest"
	uploaduc "github.com/kailas-cloud/cymbalsearch/internal/usecase/upload"
)

// Searcher runs search queries.
type Searcher interface {
	Search(ctx context.Context, q request.Query) (*result.Response, error)
}

// Uploader stores user PDFs.
type Uploader interface {
	UploadPDF(ctx context.Context, r io.Reader, filename, contentType string) (uploaduc.Result, error)
}

// Ingester builds descriptor records and drives imports.
type Ingester interface {
	Ingest(ctx context.Context, p ingestuc.Params, async bool) (ingestuc.Result, error)
	Import(ctx context.Context, src operation.Source) (operation.Operation, error)
	Submit(ctx context.Context, src operation.Source) (operation.Operation, error)
	Status(ctx context.Context, name string) (operation.Operation, error)
}

// HealthChecker reports dependency health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}
