package request

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/cymbalsearch/internal/domain"
)

// Search parameter defaults.
const (
	// MaxQueryLength is the maximum allowed search query length.
	MaxQueryLength = 4096
	// MaxCount bounds every count knob.
	MaxCount = 1000

	DefaultSummaryResultCount        = 3
	DefaultPageSize                  = 10
	DefaultMaxSnippetCount           = 5
	DefaultIncludeCitations          = true
	DefaultUseSemanticChunks         = true
	DefaultMaxExtractiveAnswerCount  = 3
	DefaultMaxExtractiveSegmentCount = 3
)

// Query is a validated search query with its formatting knobs.
type Query struct {
	text                      string
	summaryResultCount        int
	pageSize                  int
	maxSnippetCount           int
	includeCitations          bool
	useSemanticChunks         bool
	maxExtractiveAnswerCount  int
	maxExtractiveSegmentCount int
}

// Option overrides one default of a Query.
type Option func(*Query)

// WithSummaryResultCount sets how many top results feed the summary.
func WithSummaryResultCount(n int) Option { return func(q *Query) { q.summaryResultCount = n } }

// WithPageSize sets the number of results per page.
func WithPageSize(n int) Option { return func(q *Query) { q.pageSize = n } }

// WithMaxSnippetCount sets the snippet bound per result.
func WithMaxSnippetCount(n int) Option { return func(q *Query) { q.maxSnippetCount = n } }

// WithIncludeCitations toggles citations in the summary.
func WithIncludeCitations(v bool) Option { return func(q *Query) { q.includeCitations = v } }

// WithUseSemanticChunks toggles semantic chunks for summarization.
func WithUseSemanticChunks(v bool) Option { return func(q *Query) { q.useSemanticChunks = v } }

// WithMaxExtractiveAnswerCount sets the extractive answer bound per result.
func WithMaxExtractiveAnswerCount(n int) Option {
	return func(q *Query) { q.maxExtractiveAnswerCount = n }
}

// WithMaxExtractiveSegmentCount sets the extractive segment bound per result.
func WithMaxExtractiveSegmentCount(n int) Option {
	return func(q *Query) { q.maxExtractiveSegmentCount = n }
}

// New validates the query text and applies options over the defaults.
func New(text string, opts ...Option) (Query, error) {
	if strings.TrimSpace(text) == "" {
		return Query{}, fmt.Errorf("%w: query is required", domain.ErrInvalidInput)
	}
	if len(text) > MaxQueryLength {
		return Query{}, fmt.Errorf("%w: query too long (max %d chars)", domain.ErrInvalidInput, MaxQueryLength)
	}

	q := Query{
		text:                      text,
		summaryResultCount:        DefaultSummaryResultCount,
		pageSize:                  DefaultPageSize,
		maxSnippetCount:           DefaultMaxSnippetCount,
		includeCitations:          DefaultIncludeCitations,
		useSemanticChunks:         DefaultUseSemanticChunks,
		maxExtractiveAnswerCount:  DefaultMaxExtractiveAnswerCount,
		maxExtractiveSegmentCount: DefaultMaxExtractiveSegmentCount,
	}
	for _, o := range opts {
		o(&q)
	}

	counts := []struct {
		name string
		v    int
	}{
		{"summary_result_count", q.summaryResultCount},
		{"page_size", q.pageSize},
		{"max_snippet_count", q.maxSnippetCount},
		{"max_extractive_answer_count", q.maxExtractiveAnswerCount},
		{"max_extractive_segment_count", q.maxExtractiveSegmentCount},
	}
	for _, c := range counts {
		if c.v < 0 {
			return Query{}, fmt.Errorf("%w: %s must not be negative, got %d", domain.ErrInvalidInput, c.name, c.v)
		}
		if c.v > MaxCount {
			return Query{}, fmt.Errorf("%w: %s must not exceed %d, got %d", domain.ErrInvalidInput, c.name, MaxCount, c.v)
		}
	}

	return q, nil
}

// Text returns the search query text.
func (q *Query) Text() string { return q.text }

// SummaryResultCount returns how many top results feed the summary.
func (q *Query) SummaryResultCount() int { return q.summaryResultCount }

// PageSize returns the number of results per page.
func (q *Query) PageSize() int { return q.pageSize }

// MaxSnippetCount returns the snippet bound per result.
func (q *Query) MaxSnippetCount() int { return q.maxSnippetCount }

// IncludeCitations reports whether the summary carries citations.
func (q *Query) IncludeCitations() bool { return q.includeCitations }

// UseSemanticChunks reports whether summarization uses semantic chunks.
func (q *Query) UseSemanticChunks() bool { return q.useSemanticChunks }

// MaxExtractiveAnswerCount returns the extractive answer bound per result.
func (q *Query) MaxExtractiveAnswerCount() int { return q.maxExtractiveAnswerCount }

// MaxExtractiveSegmentCount returns the extractive segment bound per result.
func (q *Query) MaxExtractiveSegmentCount() int { return q.maxExtractiveSegmentCount }
