package cymbalsearch

import (
	"context"
	"errors"
	"testing"

	"github.com/kailas-cloud/cymbalsearch/internal/domain/search/request"
	"github.com/kailas-cloud/cymbalsearch/internal/domain/search/result"
)

func TestQueryBuilder_Defaults(t *testing.T) {
	var got request.Query
	c := wireClient(&mockSearchUC{
		searchFn: func(_ context.Context, q request.Query) (*result.Response, error) {
			got = q
			return &result.Response{TotalSize: 2}, nil
		},
	}, nil, nil, nil, nil)

	res, err := c.Query("quarterly report").Do(context.Background())
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if res.TotalSize != 2 {
		t.Errorf("TotalSize = %d", res.TotalSize)
	}
	if got.Text() != "quarterly report" || got.PageSize() != request.DefaultPageSize || !got.IncludeCitations() {
		t.Errorf("query = %+v", got)
	}
}

func TestQueryBuilder_Knobs(t *testing.T) {
	var got request.Query
	c := wireClient(&mockSearchUC{
		searchFn: func(_ context.Context, q request.Query) (*result.Response, error) {
			got = q
			return &result.Response{}, nil
		},
	}, nil, nil, nil, nil)

	_, err := c.Query("q").
		PageSize(20).
		SummaryResults(5).
		Snippets(1).
		Citations(false).
		SemanticChunks(false).
		ExtractiveAnswers(2).
		ExtractiveSegments(4).
		Do(context.Background())
	if err != nil {
		t.Fatalf("Do: %v", err)
	}

	if got.PageSize() != 20 || got.SummaryResultCount() != 5 || got.MaxSnippetCount() != 1 {
		t.Errorf("counts = %d/%d/%d", got.PageSize(), got.SummaryResultCount(), got.MaxSnippetCount())
	}
	if got.IncludeCitations() || got.UseSemanticChunks() {
		t.Error("toggles should be off")
	}
	if got.MaxExtractiveAnswerCount() != 2 || got.MaxExtractiveSegmentCount() != 4 {
		t.Errorf("extractive = %d/%d", got.MaxExtractiveAnswerCount(), got.MaxExtractiveSegmentCount())
	}
}

func TestQueryBuilder_InvalidQuery(t *testing.T) {
	called := false
	c := wireClient(&mockSearchUC{
		searchFn: func(context.Context, request.Query) (*result.Response, error) {
			called = true
			return nil, nil
		},
	}, nil, nil, nil, nil)

	_, err := c.Query("").Do(context.Background())
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
	_, err = c.Query("q").PageSize(-1).Do(context.Background())
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
	if called {
		t.Error("search must not run for invalid queries")
	}
}

func TestQueryBuilder_ProviderError(t *testing.T) {
	c := wireClient(&mockSearchUC{
		searchFn: func(context.Context, request.Query) (*result.Response, error) {
			return nil, ErrSearchProvider
		},
	}, nil, nil, nil, nil)

	if _, err := c.Query("q").Do(context.Background()); !errors.Is(err, ErrSearchProvider) {
		t.Errorf("expected ErrSearchProvider, got %v", err)
	}
}
