package search

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/cymbalsearch/internal/domain"
	"github.com/kailas-cloud/cymbalsearch/internal/domain/search/request"
	"github.com/kailas-cloud/cymbalsearch/internal/domain/search/result"
	"github.com/kailas-cloud/cymbalsearch/internal/logger"
)

// Service forwards validated queries to the search gateway.
type Service struct {
	searcher Searcher
}

// New creates a search service.
func New(searcher Searcher) *Service {
	return &Service{searcher: searcher}
}

// Search runs q and returns the normalized first page. There is no retry.
func (s *Service) Search(ctx context.Context, q request.Query) (*result.Response, error) {
	log := logger.FromContext(ctx)
	start := time.Now()

	resp, err := s.searcher.Search(ctx, q)
	if err != nil {
		log.Error("search failed",
			zap.Int("query_len", len(q.Text())),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err),
		)
		if !errors.Is(err, domain.ErrSearchProvider) {
			err = fmt.Errorf("%w: %w", domain.ErrSearchProvider, err)
		}
		return nil, err
	}
	if resp == nil {
		resp = &result.Response{}
	}

	log.Debug("search done",
		zap.Int("results", len(resp.Results)),
		zap.Int32("total_size", resp.TotalSize),
		zap.Bool("summary", resp.Summary != nil),
		zap.Duration("duration", time.Since(start)),
	)
	return resp, nil
}
