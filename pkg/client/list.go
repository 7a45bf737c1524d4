package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/stackcoin/stackcoin-go/pkg/pagination"
)

// normalizePaging applies the page=1, limit=20 defaults and rejects
// non-positive values locally. Upper clamping is service policy.
func normalizePaging(page, limit int) (int, int, error) {
	if page == 0 {
		page = 1
	}
	if limit == 0 {
		limit = DefaultPageLimit
	}
	if page < 0 {
		return 0, 0, fmt.Errorf("%w: page must be positive (got %d)", ErrInvalidArgument, page)
	}
	if limit < 0 {
		return 0, 0, fmt.Errorf("%w: limit must be positive (got %d)", ErrInvalidArgument, limit)
	}
	return page, limit, nil
}

func pagingQuery(page, limit int) url.Values {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))
	return q
}

// hasMore decides whether another page follows. The envelope's total page
// count is authoritative; without it a full page means "assume more".
func hasMore(p Pagination, got, limit int) bool {
	if p.TotalPages > 0 {
		return p.Page < p.TotalPages
	}
	return got == limit
}

// Transactions returns one page of the session user's transactions.
// Ordering is service-defined and stable across pages of the same query.
func (s *Session) Transactions(ctx context.Context, opts TransactionListOptions) (TransactionPage, error) {
	page, limit, err := normalizePaging(opts.Page, opts.Limit)
	if err != nil {
		return TransactionPage{}, err
	}

	q := pagingQuery(page, limit)
	if opts.Sender != 0 {
		q.Set("sender", strconv.FormatInt(opts.Sender, 10))
	}
	if opts.Recipient != 0 {
		q.Set("recipient", strconv.FormatInt(opts.Recipient, 10))
	}

	var p TransactionPage
	if err := s.get(ctx, "/transactions", q, &p); err != nil {
		return TransactionPage{}, err
	}
	return p, nil
}

// Requests returns one page of payment requests the session user is party
// to, filtered by role, status and age.
func (s *Session) Requests(ctx context.Context, opts RequestListOptions) (RequestPage, error) {
	page, limit, err := normalizePaging(opts.Page, opts.Limit)
	if err != nil {
		return RequestPage{}, err
	}

	q := pagingQuery(page, limit)
	if opts.Role != "" {
		q.Set("role", string(opts.Role))
	}
	if opts.Status != "" {
		q.Set("status", string(opts.Status))
	}
	if opts.Since != "" {
		q.Set("since", opts.Since)
	}

	var p RequestPage
	if err := s.get(ctx, "/requests", q, &p); err != nil {
		return RequestPage{}, err
	}
	return p, nil
}

// Users returns one page of the user listing.
func (s *Session) Users(ctx context.Context, opts UserListOptions) (UserPage, error) {
	page, limit, err := normalizePaging(opts.Page, opts.Limit)
	if err != nil {
		return UserPage{}, err
	}

	q := pagingQuery(page, limit)
	if opts.Username != "" {
		q.Set("username", opts.Username)
	}

	var p UserPage
	if err := s.get(ctx, "/users", q, &p); err != nil {
		return UserPage{}, err
	}
	return p, nil
}

// StreamTransactions returns a lazy stream over the transaction listing,
// fetching pages of opts.Limit as the caller advances. Page and any set
// filters are carried to every fetch; opts.Page is ignored, streams always
// start at page 1.
func (s *Session) StreamTransactions(opts TransactionListOptions) *pagination.Stream[Transaction] {
	return pagination.NewStream(
		"transactions", opts.Limit,
		func(ctx context.Context, page, limit int) ([]Transaction, bool, error) {
			opts := opts
			opts.Page = page
			opts.Limit = limit
			p, err := s.Transactions(ctx, opts)
			if err != nil {
				return nil, false, err
			}
			return p.Transactions, hasMore(p.Pagination, len(p.Transactions), limit), nil
		})
}

// StreamRequests returns a lazy stream over the payment request listing.
func (s *Session) StreamRequests(opts RequestListOptions) *pagination.Stream[PaymentRequest] {
	return pagination.NewStream(
		"requests", opts.Limit,
		func(ctx context.Context, page, limit int) ([]PaymentRequest, bool, error) {
			opts := opts
			opts.Page = page
			opts.Limit = limit
			p, err := s.Requests(ctx, opts)
			if err != nil {
				return nil, false, err
			}
			return p.Requests, hasMore(p.Pagination, len(p.Requests), limit), nil
		})
}

// StreamUsers returns a lazy stream over the user listing.
func (s *Session) StreamUsers(opts UserListOptions) *pagination.Stream[User] {
	return pagination.NewStream(
		"users", opts.Limit,
		func(ctx context.Context, page, limit int) ([]User, bool, error) {
			opts := opts
			opts.Page = page
			opts.Limit = limit
			p, err := s.Users(ctx, opts)
			if err != nil {
				return nil, false, err
			}
			return p.Users, hasMore(p.Pagination, len(p.Users), limit), nil
		})
}

// AllTransactions fetches the complete transaction listing eagerly with a
// bounded worker pool. Prefer StreamTransactions for unbounded results.
func (s *Session) AllTransactions(ctx context.Context, opts TransactionListOptions, cfg pagination.Config) ([]Transaction, error) {
	c := pagination.NewCollector(
		"transactions",
		func(ctx context.Context, page, limit int) ([]Transaction, int, error) {
			opts := opts
			opts.Page = page
			opts.Limit = limit
			p, err := s.Transactions(ctx, opts)
			if err != nil {
				return nil, 0, err
			}
			return p.Transactions, p.Pagination.TotalPages, nil
		}, cfg)
	return c.CollectAll(ctx)
}

// AllRequests fetches the complete payment request listing eagerly.
func (s *Session) AllRequests(ctx context.Context, opts RequestListOptions, cfg pagination.Config) ([]PaymentRequest, error) {
	c := pagination.NewCollector(
		"requests",
		func(ctx context.Context, page, limit int) ([]PaymentRequest, int, error) {
			opts := opts
			opts.Page = page
			opts.Limit = limit
			p, err := s.Requests(ctx, opts)
			if err != nil {
				return nil, 0, err
			}
			return p.Requests, p.Pagination.TotalPages, nil
		}, cfg)
	return c.CollectAll(ctx)
}

// AllUsers fetches the complete user listing eagerly.
func (s *Session) AllUsers(ctx context.Context, opts UserListOptions, cfg pagination.Config) ([]User, error) {
	c := pagination.NewCollector(
		"users",
		func(ctx context.Context, page, limit int) ([]User, int, error) {
			opts := opts
			opts.Page = page
			opts.Limit = limit
			p, err := s.Users(ctx, opts)
			if err != nil {
				return nil, 0, err
			}
			return p.Users, p.Pagination.TotalPages, nil
		}, cfg)
	return c.CollectAll(ctx)
}
