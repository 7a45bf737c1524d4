package pagination

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Config holds collector configuration.
type Config struct {
	// MaxConcurrency is the maximum number of parallel page fetches.
	MaxConcurrency int

	// Limit is the page size requested from the service.
	Limit int
}

// DefaultConfig returns a safe default collector configuration.
func DefaultConfig() Config {
	return Config{
		MaxConcurrency: 4,
		Limit:          20,
	}
}

// TotalPageFunc fetches a single page and reports the total page count the
// service advertises in the response envelope.
type TotalPageFunc[T any] func(ctx context.Context, page, limit int) (items []T, totalPages int, err error)

// Collector fetches every page of a listing eagerly with a bounded worker
// pool. Use Stream instead when the result set may be unbounded.
type Collector[T any] struct {
	entity string
	fetch  TotalPageFunc[T]
	config Config
}

// NewCollector creates a collector. entity labels metrics and logs.
func NewCollector[T any](entity string, fetch TotalPageFunc[T], config Config) *Collector[T] {
	if config.MaxConcurrency <= 0 {
		config.MaxConcurrency = 4
	}
	if config.Limit <= 0 {
		config.Limit = 20
	}
	return &Collector[T]{
		entity: entity,
		fetch:  fetch,
		config: config,
	}
}

// CollectAll fetches all pages and returns the items in page order. The
// first page is fetched synchronously to learn the total page count; the
// rest go through the worker pool. Any page failure aborts the collection
// and surfaces the error.
func (c *Collector[T]) CollectAll(ctx context.Context) ([]T, error) {
	start := time.Now()

	firstItems, totalPages, err := c.fetch(ctx, 1, c.config.Limit)
	if err != nil {
		return nil, fmt.Errorf("fetch %s page 1: %w", c.entity, err)
	}
	pagesFetchedTotal.WithLabelValues(c.entity).Inc()

	if totalPages <= 1 {
		log.Debug().
			Str("entity", c.entity).
			Int("items", len(firstItems)).
			Dur("duration", time.Since(start)).
			Msg("Collect complete (single page)")
		return firstItems, nil
	}

	log.Debug().
		Str("entity", c.entity).
		Int("total_pages", totalPages).
		Msg("Starting parallel page collect")

	// Pages land in their slot so order survives parallel fetching.
	pages := make([][]T, totalPages+1)
	pages[1] = firstItems

	workerCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	pageQueue := make(chan int, totalPages)
	for page := 2; page <= totalPages; page++ {
		pageQueue <- page
	}
	close(pageQueue)

	errCh := make(chan error, c.config.MaxConcurrency)

	var wg sync.WaitGroup
	var mu sync.Mutex
	for i := 0; i < c.config.MaxConcurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for page := range pageQueue {
				select {
				case <-workerCtx.Done():
					return
				default:
				}

				items, _, err := c.fetch(workerCtx, page, c.config.Limit)
				if err != nil {
					select {
					case errCh <- fmt.Errorf("fetch %s page %d: %w", c.entity, page, err):
					default:
					}
					cancel()
					return
				}
				pagesFetchedTotal.WithLabelValues(c.entity).Inc()

				mu.Lock()
				pages[page] = items
				mu.Unlock()
			}
		}()
	}

	wg.Wait()
	close(errCh)

	if err := <-errCh; err != nil {
		log.Warn().
			Err(err).
			Str("entity", c.entity).
			Int("total_pages", totalPages).
			Msg("Parallel collect aborted")
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var all []T
	for page := 1; page <= totalPages; page++ {
		all = append(all, pages[page]...)
	}

	log.Debug().
		Str("entity", c.entity).
		Int("pages", totalPages).
		Int("items", len(all)).
		Dur("duration", time.Since(start)).
		Msg("Collect complete")

	return all, nil
}
