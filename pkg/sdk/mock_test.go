package cymbalsearch

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

// --- searchUseCase mock ---

type mockSearchUC struct {
	searchFn func(ctx context.Context, q request.Query) (*result.Response, error)
}

func (m *mockSearchUC) Search(ctx context.Context, q request.Query) (*result.Response, error) {
	return m.searchFn(ctx, q)
}

// --- uploadUseCase mock ---

type mockUploadUC struct {
	uploadFn func(ctx context.Context, r io.Reader, filename, contentType string) (uploaduc.Result, error)
}

func (m *mockUploadUC) UploadPDF(
	ctx context.Context, r io.Reader, filename, contentType string,
) (uploaduc.Result, error) {
	return m.uploadFn(ctx, r, filename, contentType)
}

// --- ingestUseCase mock ---

type mockIngestUC struct {
	ingestFn func(ctx context.Context, p ingestuc.Params, async bool) (ingestuc.Result, error)
	importFn func(ctx context.Context, src operation.Source) (operation.Operation, error)
	submitFn func(ctx context.Context, src operation.Source) (operation.Operation, error)
	statusFn func(ctx context.Context, name string) (operation.Operation, error)
}

func (m *mockIngestUC) Ingest(ctx context.Context, p ingestuc.Params, async bool) (ingestuc.Result, error) {
	return m.ingestFn(ctx, p, async)
}

func (m *mockIngestUC) Import(ctx context.Context, src operation.Source) (operation.Operation, error) {
	return m.importFn(ctx, src)
}

func (m *mockIngestUC) Submit(ctx context.Context, src operation.Source) (operation.Operation, error) {
	return m.submitFn(ctx, src)
}

func (m *mockIngestUC) Status(ctx context.Context, name string) (operation.Operation, error) {
	return m.statusFn(ctx, name)
}

// --- healthUseCase mock ---

type mockHealthUC struct {
	report healthuc.Report
}

func (m *mockHealthUC) Check(context.Context) healthuc.Report { return m.report }
