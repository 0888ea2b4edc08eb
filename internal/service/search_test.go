package service

import (
	"context"
	"math"
	"testing"

	"hackernews/internal/search"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSearcher struct {
	query      string
	from, size int
}

func (s *stubSearcher) Search(_ context.Context, query string, from, size int) (*search.Result, error) {
	s.query, s.from, s.size = query, from, size
	return &search.Result{Total: 1, Items: []search.Document{{ID: 9}}}, nil
}

func TestSearchService(t *testing.T) {
	ctx := context.Background()

	backend := &stubSearcher{}
	res, err := NewSearchService(backend).Search(ctx, "golang", 2)
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Total)
	assert.Equal(t, "golang", backend.query)
	assert.Equal(t, 60, backend.from)
	assert.Equal(t, 30, backend.size)

	_, err = NewSearchService(backend).Search(ctx, "golang", -4)
	require.NoError(t, err)
	assert.Equal(t, 0, backend.from)

	_, err = NewSearchService(nil).Search(ctx, "golang", 0)
	assert.ErrorIs(t, err, ErrSearchUnavailable)
}

func TestSearchService_ResultWindow(t *testing.T) {
	ctx := context.Background()
	backend := &stubSearcher{}
	svc := NewSearchService(backend)

	t.Run("last page is trimmed to the window", func(t *testing.T) {
		_, err := svc.Search(ctx, "golang", 333)
		require.NoError(t, err)
		assert.Equal(t, 9990, backend.from)
		assert.Equal(t, 10, backend.size)
	})

	t.Run("pages past the window never reach the backend", func(t *testing.T) {
		for _, page := range []int{334, 100000, math.MaxInt / 2} {
			backend.query = ""
			_, err := svc.Search(ctx, "rust", page)
			assert.ErrorIs(t, err, ErrSearchExhausted, "page=%d", page)
			assert.Empty(t, backend.query, "page=%d", page)
		}
	})
}
