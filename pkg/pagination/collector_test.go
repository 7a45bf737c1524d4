package pagination

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// totalFixture serves n sequential ints through a TotalPageFunc.
type totalFixture struct {
	n        int
	fetches  atomic.Int32
	failPage int
}

func (f *totalFixture) fetch(ctx context.Context, page, limit int) ([]int, int, error) {
	f.fetches.Add(1)
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	if f.failPage > 0 && page == f.failPage {
		return nil, 0, errors.New("boom")
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
	return items, (f.n + limit - 1) / limit, nil
}

func TestCollectAllOrder(t *testing.T) {
	fx := &totalFixture{n: 47}
	c := NewCollector("test", fx.fetch, Config{MaxConcurrency: 3, Limit: 10})

	items, err := c.CollectAll(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 47)
	for i, v := range items {
		assert.Equal(t, i+1, v, "parallel fetch must preserve page order")
	}
	assert.Equal(t, int32(5), fx.fetches.Load())
}

func TestCollectAllSinglePage(t *testing.T) {
	fx := &totalFixture{n: 4}
	c := NewCollector("test", fx.fetch, Config{MaxConcurrency: 3, Limit: 10})

	items, err := c.CollectAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 4}, items)
	assert.Equal(t, int32(1), fx.fetches.Load())
}

func TestCollectAllPageError(t *testing.T) {
	fx := &totalFixture{n: 100, failPage: 4}
	c := NewCollector("test", fx.fetch, Config{MaxConcurrency: 2, Limit: 10})

	_, err := c.CollectAll(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "page 4")
}

func TestCollectAllFirstPageError(t *testing.T) {
	fx := &totalFixture{n: 100, failPage: 1}
	c := NewCollector("test", fx.fetch, Config{MaxConcurrency: 2, Limit: 10})

	_, err := c.CollectAll(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "page 1")
}

func TestCollectAllCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	fx := &totalFixture{n: 1000}
	c := NewCollector("test", func(ctx context.Context, page, limit int) ([]int, int, error) {
		if page == 1 {
			return fx.fetch(ctx, page, limit)
		}
		cancel()
		return nil, 0, ctx.Err()
	}, Config{MaxConcurrency: 2, Limit: 10})

	_, err := c.CollectAll(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewCollectorDefaults(t *testing.T) {
	c := NewCollector[int]("test", nil, Config{})
	assert.Equal(t, 4, c.config.MaxConcurrency)
	assert.Equal(t, 20, c.config.Limit)
}
