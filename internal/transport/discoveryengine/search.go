package discoveryengine

import (
	"context"
	"errors"
	"fmt"
	"time"

	deapi "cloud.google.com/go/discoveryengine/apiv1"
	"cloud.google.com/go/discoveryengine/apiv1/discoveryenginepb"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/kailas-cloud/cymbalsearch/internal/domain"
	"github.com/kailas-cloud/cymbalsearch/internal/domain/search/request"
	"github.com/kailas-cloud/cymbalsearch/internal/domain/search/result"
	"github.com/kailas-cloud/cymbalsearch/internal/metrics"
)

// summaryModelVersion pins the summarization model to the stable release.
const summaryModelVersion = "stable"

type searchFunc func(ctx context.Context, req *discoveryenginepb.SearchRequest) (*discoveryenginepb.SearchResponse, error)

// Searcher runs queries against the app's default serving config.
type Searcher struct {
	client        *deapi.SearchClient
	servingConfig string
	search        searchFunc
}

// NewSearcher creates a search client for cfg.Location.
func NewSearcher(ctx context.Context, cfg Config, opts ...option.ClientOption) (*Searcher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	client, err := deapi.NewSearchClient(ctx, clientOptions(cfg.Location, opts)...)
	if err != nil {
		return nil, fmt.Errorf("create search client: %w", err)
	}

	s := &Searcher{client: client, servingConfig: cfg.ServingConfig()}
	s.search = func(ctx context.Context, req *discoveryenginepb.SearchRequest) (*discoveryenginepb.SearchResponse, error) {
		return firstPage(ctx, client, req)
	}
	return s, nil
}

// firstPage fetches one page and returns the raw response of that page.
func firstPage(
	ctx context.Context, client *deapi.SearchClient, req *discoveryenginepb.SearchRequest,
) (*discoveryenginepb.SearchResponse, error) {
	it := client.Search(ctx, req)
	if _, err := it.Next(); err != nil && !errors.Is(err, iterator.Done) {
		return nil, err //nolint:wrapcheck // wrapped by Search
	}
	resp, ok := it.Response.(*discoveryenginepb.SearchResponse)
	if !ok || resp == nil {
		return &discoveryenginepb.SearchResponse{}, nil
	}
	return resp, nil
}

// Search sends q and maps the first response page.
func (s *Searcher) Search(ctx context.Context, q request.Query) (_ *result.Response, err error) {
	defer metrics.ObserveGateway(metrics.GatewaySearch, "search", time.Now(), &err)

	resp, err := s.search(ctx, buildSearchRequest(s.servingConfig, q))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrSearchProvider, err)
	}
	return toResult(resp), nil
}

// Close releases the underlying connection.
func (s *Searcher) Close() error {
	if s.client == nil {
		return nil
	}
	if err := s.client.Close(); err != nil {
		return fmt.Errorf("close search client: %w", err)
	}
	return nil
}

func buildSearchRequest(servingConfig string, q request.Query) *discoveryenginepb.SearchRequest {
	return &discoveryenginepb.SearchRequest{
		ServingConfig: servingConfig,
		Query:         q.Text(),
		PageSize:      int32(q.PageSize()), //nolint:gosec // bounded by request.MaxCount
		ContentSearchSpec: &discoveryenginepb.SearchRequest_ContentSearchSpec{
			SnippetSpec: &discoveryenginepb.SearchRequest_ContentSearchSpec_SnippetSpec{
				ReturnSnippet:   true,
				MaxSnippetCount: int32(q.MaxSnippetCount()), //nolint:gosec,staticcheck // bounded; still honored by the API
			},
			SummarySpec: &discoveryenginepb.SearchRequest_ContentSearchSpec_SummarySpec{
				SummaryResultCount:     int32(q.SummaryResultCount()), //nolint:gosec // bounded
				IncludeCitations:       q.IncludeCitations(),
				IgnoreAdversarialQuery: true,
				UseSemanticChunks:      q.UseSemanticChunks(),
				ModelSpec: &discoveryenginepb.SearchRequest_ContentSearchSpec_SummarySpec_ModelSpec{
					Version: summaryModelVersion,
				},
			},
			ExtractiveContentSpec: &discoveryenginepb.SearchRequest_ContentSearchSpec_ExtractiveContentSpec{
				MaxExtractiveAnswerCount:     int32(q.MaxExtractiveAnswerCount()),  //nolint:gosec // bounded
				MaxExtractiveSegmentCount:    int32(q.MaxExtractiveSegmentCount()), //nolint:gosec // bounded
				ReturnExtractiveSegmentScore: true,
			},
		},
		QueryExpansionSpec: &discoveryenginepb.SearchRequest_QueryExpansionSpec{
			Condition: discoveryenginepb.SearchRequest_QueryExpansionSpec_AUTO,
		},
		SpellCorrectionSpec: &discoveryenginepb.SearchRequest_SpellCorrectionSpec{
			Mode: discoveryenginepb.SearchRequest_SpellCorrectionSpec_AUTO,
		},
	}
}
