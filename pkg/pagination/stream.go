package pagination

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"
)

// Prometheus metrics for pagination.
var (
	pagesFetchedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stackcoin_pages_fetched_total",
		Help: "Total pages fetched by entity",
	}, []string{"entity"})

	streamItemsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stackcoin_stream_items_total",
		Help: "Total items yielded by streams by entity",
	}, []string{"entity"})
)

// PageFunc fetches a single page of items. more reports whether another
// page exists after this one: from the response envelope's total page count
// when the service provides it, otherwise len(items) == limit.
type PageFunc[T any] func(ctx context.Context, page, limit int) (items []T, more bool, err error)

// Stream is a lazy sequence of items backed by successive page fetches.
// The zero value is not usable; create one with NewStream. A Stream is
// single-use and not safe for concurrent use.
//
// Iteration follows the bufio.Scanner idiom:
//
//	for s.Next(ctx) {
//		use(s.Item())
//	}
//	if err := s.Err(); err != nil { ... }
type Stream[T any] struct {
	entity string
	fetch  PageFunc[T]
	limit  int

	page int
	buf  []T
	idx  int
	item T
	done bool
	err  error
}

// NewStream creates a stream starting at page 1. entity labels the metrics
// and logs; limit is the page size requested from the service.
func NewStream[T any](entity string, limit int, fetch PageFunc[T]) *Stream[T] {
	if limit <= 0 {
		limit = 20
	}
	return &Stream[T]{
		entity: entity,
		fetch:  fetch,
		limit:  limit,
		page:   1,
	}
}

// Next advances the stream to the next item, fetching the next page when
// the current one is exhausted. It returns false at the end of the sequence
// or on error; Err distinguishes the two. Items already yielded remain
// valid after a failure.
func (s *Stream[T]) Next(ctx context.Context) bool {
	if s.err != nil {
		return false
	}

	for s.idx >= len(s.buf) {
		if s.done {
			return false
		}

		items, more, err := s.fetch(ctx, s.page, s.limit)
		if err != nil {
			s.err = fmt.Errorf("fetch %s page %d: %w", s.entity, s.page, err)
			log.Warn().
				Err(err).
				Str("entity", s.entity).
				Int("page", s.page).
				Msg("Stream page fetch failed")
			return false
		}

		pagesFetchedTotal.WithLabelValues(s.entity).Inc()
		log.Debug().
			Str("entity", s.entity).
			Int("page", s.page).
			Int("items", len(items)).
			Bool("more", more).
			Msg("Stream page fetched")

		s.buf = items
		s.idx = 0
		s.page++
		if !more {
			s.done = true
		}
	}

	s.item = s.buf[s.idx]
	s.idx++
	streamItemsTotal.WithLabelValues(s.entity).Inc()
	return true
}

// Item returns the item produced by the last successful Next.
func (s *Stream[T]) Item() T {
	return s.item
}

// Err returns the first error hit during iteration, nil on clean exhaustion.
func (s *Stream[T]) Err() error {
	return s.err
}

// Collect drains the stream into a slice. Convenience for callers that want
// everything but still sequentially, one page per round trip.
func (s *Stream[T]) Collect(ctx context.Context) ([]T, error) {
	var items []T
	for s.Next(ctx) {
		items = append(items, s.item)
	}
	return items, s.err
}
