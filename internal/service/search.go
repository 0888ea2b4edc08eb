package service

import (
	"context"

	"hackernews/internal/search"
)

// MaxSearchWindow is how deep into a result set search can page. Elasticsearch
// refuses from+size beyond index.max_result_window, which defaults to 10000.
const MaxSearchWindow = 10000

// Searcher is the full-text backend; *search.Client implements it.
type Searcher interface {
	Search(ctx context.Context, query string, from, size int) (*search.Result, error)
}

// SearchService defines story search.
type SearchService interface {
	// Search returns one page (0-based) of stories matching query. Pages starting
	// at or past MaxSearchWindow fail with ErrSearchExhausted.
	Search(ctx context.Context, query string, page int) (*search.Result, error)
}

type searchService struct {
	backend Searcher
}

// NewSearchService constructs a SearchService. A nil backend makes every search fail with ErrSearchUnavailable.
func NewSearchService(backend Searcher) SearchService {
	return &searchService{backend: backend}
}

func (s *searchService) Search(ctx context.Context, query string, page int) (*search.Result, error) {
	if s.backend == nil {
		return nil, ErrSearchUnavailable
	}
	if page < 0 {
		page = 0
	}
	if page > (MaxSearchWindow-1)/MaxFeedPageSize {
		return nil, ErrSearchExhausted
	}
	from := page * MaxFeedPageSize
	return s.backend.Search(ctx, query, from, min(MaxFeedPageSize, MaxSearchWindow-from))
}
