package client

import (
	"errors"
	"net/http"
	"testing"
)

func TestSentinelForCode(t *testing.T) {
	tests := []struct {
		code     string
		expected error
	}{
		{codeUnauthorized, ErrAuthentication},
		{codeNotFound, ErrNotFound},
		{codeInvalidArgument, ErrInvalidArgument},
		{codeInvalidState, ErrInvalidState},
		{codeInsufficientFunds, ErrInsufficientFunds},
		{"something_else", nil},
		{"", nil},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			if got := sentinelForCode(tt.code); got != tt.expected {
				t.Errorf("sentinelForCode(%q) = %v, want %v", tt.code, got, tt.expected)
			}
		})
	}
}

func TestSentinelForStatus(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		expected error
	}{
		{"unauthorized", http.StatusUnauthorized, ErrAuthentication},
		{"forbidden", http.StatusForbidden, ErrAuthentication},
		{"not found", http.StatusNotFound, ErrNotFound},
		{"payment required", http.StatusPaymentRequired, ErrInsufficientFunds},
		{"conflict", http.StatusConflict, ErrInvalidState},
		{"bad request", http.StatusBadRequest, ErrInvalidArgument},
		{"unprocessable", http.StatusUnprocessableEntity, ErrInvalidArgument},
		{"server error", http.StatusInternalServerError, ErrTransport},
		{"bad gateway", http.StatusBadGateway, ErrTransport},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sentinelForStatus(tt.status); got != tt.expected {
				t.Errorf("sentinelForStatus(%d) = %v, want %v", tt.status, got, tt.expected)
			}
		})
	}
}

func TestAPIErrorMessage(t *testing.T) {
	withCode := &APIError{
		StatusCode: 402,
		Code:       codeInsufficientFunds,
		Message:    "balance too low",
		Err:        ErrInsufficientFunds,
	}
	want := "stackcoin api error (status 402, code insufficient_funds): balance too low"
	if withCode.Error() != want {
		t.Errorf("Error() = %q, want %q", withCode.Error(), want)
	}

	withoutCode := &APIError{
		StatusCode: 500,
		Message:    "500 Internal Server Error",
		Err:        ErrTransport,
	}
	want = "stackcoin api error (status 500): 500 Internal Server Error"
	if withoutCode.Error() != want {
		t.Errorf("Error() = %q, want %q", withoutCode.Error(), want)
	}
}

func TestAPIErrorUnwrap(t *testing.T) {
	err := &APIError{
		StatusCode: 404,
		Code:       codeNotFound,
		Message:    "unknown user",
		Err:        ErrNotFound,
	}

	if !errors.Is(err, ErrNotFound) {
		t.Error("errors.Is should match the wrapped sentinel")
	}
	if errors.Is(err, ErrInvalidState) {
		t.Error("errors.Is should not match a different sentinel")
	}

	var apiErr *APIError
	if !errors.As(error(err), &apiErr) {
		t.Fatal("errors.As should recover *APIError")
	}
	if apiErr.StatusCode != 404 {
		t.Errorf("StatusCode = %d, want 404", apiErr.StatusCode)
	}
}

func TestErrKind(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"authentication", ErrAuthentication, "authentication"},
		{"session closed", ErrSessionClosed, "session_closed"},
		{"not found", ErrNotFound, "not_found"},
		{"invalid argument", ErrInvalidArgument, "invalid_argument"},
		{"invalid state", ErrInvalidState, "invalid_state"},
		{"insufficient funds", ErrInsufficientFunds, "insufficient_funds"},
		{"transport", ErrTransport, "transport"},
		{"wrapped", &APIError{Err: ErrNotFound}, "not_found"},
		{"unknown", errors.New("other"), "transport"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errKind(tt.err); got != tt.expected {
				t.Errorf("errKind() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestNormalizePaging(t *testing.T) {
	tests := []struct {
		name      string
		page      int
		limit     int
		wantPage  int
		wantLimit int
		wantErr   bool
	}{
		{"defaults", 0, 0, 1, DefaultPageLimit, false},
		{"explicit", 3, 50, 3, 50, false},
		{"negative page", -1, 20, 0, 0, true},
		{"negative limit", 1, -5, 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, limit, err := normalizePaging(tt.page, tt.limit)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidArgument) {
					t.Errorf("expected ErrInvalidArgument, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if page != tt.wantPage || limit != tt.wantLimit {
				t.Errorf("normalizePaging() = (%d, %d), want (%d, %d)",
					page, limit, tt.wantPage, tt.wantLimit)
			}
		})
	}
}

func TestHasMore(t *testing.T) {
	tests := []struct {
		name     string
		p        Pagination
		got      int
		limit    int
		expected bool
	}{
		{"explicit more", Pagination{Page: 1, TotalPages: 3}, 20, 20, true},
		{"explicit last", Pagination{Page: 3, TotalPages: 3}, 5, 20, false},
		{"heuristic full page", Pagination{Page: 1}, 20, 20, true},
		{"heuristic short page", Pagination{Page: 1}, 7, 20, false},
		{"heuristic empty page", Pagination{Page: 1}, 0, 20, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := hasMore(tt.p, tt.got, tt.limit); got != tt.expected {
				t.Errorf("hasMore() = %v, want %v", got, tt.expected)
			}
		})
	}
}
