package cymbalsearch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/kailas-cloud/cymbalsearch/internal/domain/search/request"
)

// QueryBuilder is a fluent builder for search queries. Unset knobs keep
// their defaults (page size 10, 3 summary results, 5 snippets, citations and
// semantic chunks on, 3 extractive answers and segments).
type QueryBuilder struct {
	client *Client
	text   string
	opts   []request.Option
}

// Query starts a search for text.
func (c *Client) Query(text string) *QueryBuilder {
	return &QueryBuilder{client: c, text: text}
}

// PageSize sets the number of results per page.
func (b *QueryBuilder) PageSize(n int) *QueryBuilder {
	b.opts = append(b.opts, request.WithPageSize(n))
	return b
}

// SummaryResults sets how many top results feed the summary.
func (b *QueryBuilder) SummaryResults(n int) *QueryBuilder {
	b.opts = append(b.opts, request.WithSummaryResultCount(n))
	return b
}

// Snippets bounds the snippets returned per result.
func (b *QueryBuilder) Snippets(n int) *QueryBuilder {
	b.opts = append(b.opts, request.WithMaxSnippetCount(n))
	return b
}

// Citations toggles citations in the summary.
func (b *QueryBuilder) Citations(on bool) *QueryBuilder {
	b.opts = append(b.opts, request.WithIncludeCitations(on))
	return b
}

// SemanticChunks toggles semantic chunks for summarization.
func (b *QueryBuilder) SemanticChunks(on bool) *QueryBuilder {
	b.opts = append(b.opts, request.WithUseSemanticChunks(on))
	return b
}

// ExtractiveAnswers bounds the extractive answers returned per result.
func (b *QueryBuilder) ExtractiveAnswers(n int) *QueryBuilder {
	b.opts = append(b.opts, request.WithMaxExtractiveAnswerCount(n))
	return b
}

// ExtractiveSegments bounds the extractive segments returned per result.
func (b *QueryBuilder) ExtractiveSegments(n int) *QueryBuilder {
	b.opts = append(b.opts, request.WithMaxExtractiveSegmentCount(n))
	return b
}

// Do validates the query and runs it.
func (b *QueryBuilder) Do(ctx context.Context) (resp *SearchResult, err error) {
	start := time.Now()
	defer func() {
		var attrs []slog.Attr
		if resp != nil {
			attrs = append(attrs, slog.Int("results", len(resp.Results)), slog.Bool("summary", resp.Summary != nil))
		}
		b.client.obs.observe("search", start, err, attrs...)
	}()

	q, err := request.New(b.text, b.opts...)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	resp, err = b.client.searchSvc.Search(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	return resp, nil
}
