// Package client provides the StackCoin ledger API client: an authenticated
// session, typed operations, and error handling.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Prometheus metrics for ledger API operations.
var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stackcoin_requests_total",
		Help: "Total ledger API requests by endpoint and status",
	}, []string{"endpoint", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "stackcoin_request_duration_seconds",
		Help:    "Ledger API request duration in seconds by endpoint",
		Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5, 10},
	}, []string{"endpoint"})

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stackcoin_errors_total",
		Help: "Total ledger API errors by kind",
	}, []string{"kind"})
)

// DefaultPageLimit is the page size used when a listing option leaves
// Limit unset.
const DefaultPageLimit = 20

// Session is an authenticated connection context to the ledger service.
// It is safe for concurrent use; the client issues no background work and
// adds no locking beyond the closed flag. A Session must be released with
// Close, or used through WithSession which guarantees it.
type Session struct {
	baseURL    string
	token      string
	userAgent  string
	httpClient *http.Client
	logger     zerolog.Logger
	closed     atomic.Bool
}

// Config holds the session configuration.
type Config struct {
	// BaseURL is the ledger service endpoint, e.g. "https://stackcoin.world".
	BaseURL string

	// Token is the bearer credential.
	Token string

	// HTTPClient is the transport to use. Timeout and cancellation policy
	// belong to this client, not to the session. Defaults to a client with
	// a 30s timeout.
	HTTPClient *http.Client

	// UserAgent identifies the application to the service.
	UserAgent string
}

// Open establishes an authenticated session. It performs one handshake
// round trip and fails with ErrAuthentication if the service rejects the
// credential.
func Open(ctx context.Context, cfg Config) (*Session, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("%w: base url is required", ErrInvalidArgument)
	}
	if cfg.Token == "" {
		return nil, fmt.Errorf("%w: token is required", ErrInvalidArgument)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = "stackcoin-go/1.0"
	}

	logger := log.With().Str("component", "stackcoin-client").Logger()

	s := &Session{
		baseURL:    cfg.BaseURL,
		token:      cfg.Token,
		userAgent:  userAgent,
		httpClient: httpClient,
		logger:     logger,
	}

	// Handshake: any authenticated endpoint validates the token; the
	// session user's own balance is the cheapest.
	var b Balance
	if err := s.get(ctx, "/self/balance", nil, &b); err != nil {
		s.Close()
		return nil, err
	}

	s.logger.Info().
		Int64("user_id", b.UserID).
		Str("username", b.Username).
		Msg("Session opened")

	return s, nil
}

// Close releases the underlying transport. Idempotent; operations issued
// after Close fail with ErrSessionClosed.
func (s *Session) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	s.httpClient.CloseIdleConnections()
	s.logger.Debug().Msg("Session closed")
	return nil
}

// WithSession opens a session, runs fn, and closes the session exactly once
// regardless of how fn ends. Callers must not retain the session past fn.
func WithSession(ctx context.Context, cfg Config, fn func(ctx context.Context, s *Session) error) error {
	s, err := Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer s.Close()
	return fn(ctx, s)
}

// get issues a GET request and decodes the JSON response into out.
func (s *Session) get(ctx context.Context, path string, query url.Values, out any) error {
	return s.do(ctx, http.MethodGet, path, query, nil, out)
}

// post issues a POST request with a JSON body and decodes the response.
func (s *Session) post(ctx context.Context, path string, body any, out any) error {
	return s.do(ctx, http.MethodPost, path, nil, body, out)
}

// do performs one round trip: marshal, send, map status to the error
// taxonomy, unmarshal. No retries; cancellation passes through untouched.
func (s *Session) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	if s.closed.Load() {
		errorsTotal.WithLabelValues("session_closed").Inc()
		return fmt.Errorf("%w: %s %s", ErrSessionClosed, method, path)
	}

	requestID := uuid.NewString()
	logger := s.logger.With().
		Str("endpoint", path).
		Str("method", method).
		Str("request_id", requestID).
		Logger()

	start := time.Now()
	defer func() {
		requestDuration.WithLabelValues(path).Observe(time.Since(start).Seconds())
	}()

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	u := s.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.token)
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	logger.Debug().Msg("Executing ledger request")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		// Caller-initiated aborts surface as-is, never as a domain error.
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			logger.Warn().Err(err).Msg("Request cancelled")
			requestsTotal.WithLabelValues(path, "cancelled").Inc()
			return err
		}
		logger.Error().Err(err).Msg("Request failed")
		errorsTotal.WithLabelValues("transport").Inc()
		requestsTotal.WithLabelValues(path, "network_error").Inc()
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	requestsTotal.WithLabelValues(path, strconv.Itoa(resp.StatusCode)).Inc()

	if resp.StatusCode >= 400 {
		apiErr := s.decodeError(resp)
		errorsTotal.WithLabelValues(errKind(apiErr)).Inc()
		logger.Warn().
			Int("status", resp.StatusCode).
			Err(apiErr).
			Msg("Ledger request error")
		return apiErr
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			errorsTotal.WithLabelValues("transport").Inc()
			return fmt.Errorf("%w: decode response: %v", ErrTransport, err)
		}
	}

	logger.Debug().
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("Ledger request complete")

	return nil
}

// decodeError maps an error response to the taxonomy. The body's error code
// wins; the status code is the fallback.
func (s *Session) decodeError(resp *http.Response) *APIError {
	apiErr := &APIError{
		StatusCode: resp.StatusCode,
		Message:    resp.Status,
	}

	var body errorBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.Error.Code != "" {
		apiErr.Code = body.Error.Code
		if body.Error.Message != "" {
			apiErr.Message = body.Error.Message
		}
	}

	if sentinel := sentinelForCode(apiErr.Code); sentinel != nil {
		apiErr.Err = sentinel
	} else {
		apiErr.Err = sentinelForStatus(resp.StatusCode)
	}

	return apiErr
}
