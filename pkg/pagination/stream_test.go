package pagination

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixturePages serves n sequential ints through a PageFunc and counts
// fetches. When useTotal is set the envelope-style "more" signal is exact;
// otherwise it falls back to the full-page heuristic.
type fixturePages struct {
	n        int
	useTotal bool
	fetches  int
	failPage int
}

func (f *fixturePages) fetch(_ context.Context, page, limit int) ([]int, bool, error) {
	f.fetches++
	if f.failPage > 0 && page == f.failPage {
		return nil, false, errors.New("boom")
	}

	start := (page - 1) * limit
	if start > f.n {
		start = f.n
	}
	end := start + limit
	if end > f.n {
		end = f.n
	}

	items := make([]int, 0, end-start)
	for i := start; i < end; i++ {
		items = append(items, i+1)
	}

	if f.useTotal {
		totalPages := (f.n + limit - 1) / limit
		return items, page < totalPages, nil
	}
	return items, len(items) == limit, nil
}

func TestStreamYieldsAllItems(t *testing.T) {
	tests := []struct {
		name        string
		n           int
		limit       int
		wantFetches int
	}{
		{"45 items limit 20", 45, 20, 3},
		{"exact multiple", 60, 20, 3},
		{"single short page", 5, 20, 1},
		{"empty", 0, 20, 1},
		{"limit 1", 3, 1, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := &fixturePages{n: tt.n, useTotal: true}
			s := NewStream("test", tt.limit, fx.fetch)

			var got []int
			for s.Next(context.Background()) {
				got = append(got, s.Item())
			}

			require.NoError(t, s.Err())
			assert.Len(t, got, tt.n)
			assert.Equal(t, tt.wantFetches, fx.fetches)
			for i, v := range got {
				assert.Equal(t, i+1, v, "items must come back in order")
			}
		})
	}
}

func TestStreamShortPageHeuristic(t *testing.T) {
	// Without a total page count the stream stops on the first short page.
	// An exact multiple costs one extra (empty) fetch.
	fx := &fixturePages{n: 40, useTotal: false}
	s := NewStream("test", 20, fx.fetch)

	count := 0
	for s.Next(context.Background()) {
		count++
	}

	require.NoError(t, s.Err())
	assert.Equal(t, 40, count)
	assert.Equal(t, 3, fx.fetches)

	// With the explicit signal the empty trailing fetch disappears.
	fx = &fixturePages{n: 40, useTotal: true}
	s = NewStream("test", 20, fx.fetch)
	for s.Next(context.Background()) {
	}
	require.NoError(t, s.Err())
	assert.Equal(t, 2, fx.fetches)
}

func TestStreamErrorMidway(t *testing.T) {
	fx := &fixturePages{n: 100, useTotal: true, failPage: 2}
	s := NewStream("test", 20, fx.fetch)

	var got []int
	for s.Next(context.Background()) {
		got = append(got, s.Item())
	}

	// Page 1 items were yielded and stay valid; the failure surfaces after.
	assert.Len(t, got, 20)
	require.Error(t, s.Err())
	assert.Contains(t, s.Err().Error(), "page 2")

	// The stream stays terminated.
	assert.False(t, s.Next(context.Background()))
}

func TestStreamCollect(t *testing.T) {
	fx := &fixturePages{n: 7, useTotal: true}
	s := NewStream("test", 3, fx.fetch)

	items, err := s.Collect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7}, items)
	assert.Equal(t, 3, fx.fetches)
}

func TestNewStreamDefaultLimit(t *testing.T) {
	fx := &fixturePages{n: 1, useTotal: true}
	s := NewStream("test", 0, fx.fetch)
	require.True(t, s.Next(context.Background()))
	assert.Equal(t, 20, s.limit)
}
