// Package pagination turns page-by-page endpoints into item sequences.
//
// The ledger API paginates list responses with page/limit query parameters
// and reports the total page count in the response envelope. This package
// offers two consumption styles:
//
//   - Stream: a lazy sequential iterator in the bufio.Scanner idiom. One
//     page is fetched per advance, so an unbounded result set is never
//     loaded eagerly. The stream ends on the first page that reports no
//     further pages (explicit total, or a short page as fallback).
//
//   - Collector: an eager fetch of every page using a bounded worker pool,
//     for callers that want the whole result set and can afford it. Items
//     come back in page order.
//
// Example usage:
//
//	stream := pagination.NewStream("users", 20, fetchUsersPage)
//	for stream.Next(ctx) {
//		handle(stream.Item())
//	}
//	if err := stream.Err(); err != nil {
//		return err
//	}
//
// A Stream is not restartable mid-iteration; restarting means creating a
// new Stream, which re-issues page 1.
package pagination
