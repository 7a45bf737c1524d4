// Package testutil provides an in-memory mock of the StackCoin ledger
// service for tests.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/stackcoin/stackcoin-go/pkg/client"
)

// Token is the credential the mock accepts.
const Token = "test-token"

// SelfID is the user id the mock associates with Token.
const SelfID int64 = 1

// MockLedger is a configurable in-memory ledger service backed by
// httptest. It implements the full API surface the client consumes,
// pagination envelope included.
type MockLedger struct {
	server *httptest.Server

	mu           sync.Mutex
	users        map[int64]client.User
	balances     map[int64]int64
	transactions []client.Transaction
	requests     map[int64]*client.PaymentRequest
	nextTxID     int64
	nextReqID    int64

	// RequestCount is the number of HTTP requests received, any endpoint.
	RequestCount int

	// FailAfter, when > 0, makes every request past the nth fail with a
	// 500. Used to exercise mid-stream failures.
	FailAfter int
}

// NewMockLedger creates a started mock ledger with the session user seeded.
func NewMockLedger() *MockLedger {
	m := &MockLedger{
		users:     make(map[int64]client.User),
		balances:  make(map[int64]int64),
		requests:  make(map[int64]*client.PaymentRequest),
		nextTxID:  1,
		nextReqID: 1,
	}
	m.AddUser(client.User{ID: SelfID, Username: "self"}, 1000)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /self/balance", m.handleSelfBalance)
	mux.HandleFunc("GET /users/{id}/balance", m.handleUserBalance)
	mux.HandleFunc("POST /users/{id}/send", m.handleSend)
	mux.HandleFunc("POST /users/{id}/requests", m.handleCreateRequest)
	mux.HandleFunc("POST /requests/{id}/accept", m.handleTransition(client.RequestAccepted))
	mux.HandleFunc("POST /requests/{id}/deny", m.handleTransition(client.RequestDenied))
	mux.HandleFunc("GET /transactions", m.handleTransactions)
	mux.HandleFunc("GET /requests", m.handleRequests)
	mux.HandleFunc("GET /users", m.handleUsers)

	m.server = httptest.NewServer(m.countAndAuth(mux))
	return m
}

// URL returns the mock server URL.
func (m *MockLedger) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockLedger) Close() {
	m.server.Close()
}

// Config returns a client configuration pointed at the mock.
func (m *MockLedger) Config() client.Config {
	return client.Config{
		BaseURL: m.URL(),
		Token:   Token,
	}
}

// AddUser registers a user with an opening balance.
func (m *MockLedger) AddUser(u client.User, balance int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID] = u
	m.balances[u.ID] = balance
}

// SeedUsers registers n numbered users beyond the session user.
func (m *MockLedger) SeedUsers(n int) {
	for i := 0; i < n; i++ {
		id := SelfID + 1 + int64(i)
		m.AddUser(client.User{ID: id, Username: fmt.Sprintf("user-%03d", id)}, 100)
	}
}

// AddRequest seeds a payment request in a given state and returns its id.
func (m *MockLedger) AddRequest(requesterID, payerID, amount int64, status client.RequestStatus) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextReqID
	m.nextReqID++
	m.requests[id] = &client.PaymentRequest{
		ID:          id,
		RequesterID: requesterID,
		PayerID:     payerID,
		Amount:      amount,
		Status:      status,
	}
	return id
}

// RequestStatus reports the stored status of a seeded payment request.
func (m *MockLedger) RequestStatus(id int64) client.RequestStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.requests[id]; ok {
		return r.Status
	}
	return ""
}

// Balance reports the stored balance of a user.
func (m *MockLedger) Balance(id int64) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.balances[id]
}

// Reset clears the request counter and failure injection.
func (m *MockLedger) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RequestCount = 0
	m.FailAfter = 0
}

// GetRequestCount returns the number of requests made to the server.
func (m *MockLedger) GetRequestCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.RequestCount
}

// countAndAuth tracks requests, injects failures and enforces the bearer
// token before dispatching to the API handlers.
func (m *MockLedger) countAndAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.mu.Lock()
		m.RequestCount++
		fail := m.FailAfter > 0 && m.RequestCount > m.FailAfter
		m.mu.Unlock()

		if fail {
			writeError(w, http.StatusInternalServerError, "", "injected failure")
			return
		}

		if r.Header.Get("Authorization") != "Bearer "+Token {
			writeError(w, http.StatusUnauthorized, "unauthorized", "invalid token")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (m *MockLedger) handleSelfBalance(w http.ResponseWriter, r *http.Request) {
	m.writeBalance(w, SelfID)
}

func (m *MockLedger) handleUserBalance(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_argument", err.Error())
		return
	}
	m.writeBalance(w, id)
}

func (m *MockLedger) writeBalance(w http.ResponseWriter, id int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		writeError(w, http.StatusNotFound, "not_found", "unknown user")
		return
	}
	writeJSON(w, http.StatusOK, client.Balance{
		UserID:   u.ID,
		Username: u.Username,
		Balance:  m.balances[id],
	})
}

type amountParams struct {
	Amount int64  `json:"amount"`
	Label  string `json:"label"`
}

func (m *MockLedger) handleSend(w http.ResponseWriter, r *http.Request) {
	toID, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_argument", err.Error())
		return
	}

	var params amountParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_argument", "malformed body")
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[toID]; !ok {
		writeError(w, http.StatusNotFound, "not_found", "unknown recipient")
		return
	}
	if params.Amount <= 0 {
		writeError(w, http.StatusBadRequest, "invalid_argument", "amount must be positive")
		return
	}
	if m.balances[SelfID] < params.Amount {
		writeError(w, http.StatusPaymentRequired, "insufficient_funds", "balance too low")
		return
	}

	m.balances[SelfID] -= params.Amount
	m.balances[toID] += params.Amount

	tx := client.Transaction{
		ID:     m.nextTxID,
		FromID: SelfID,
		ToID:   toID,
		Amount: params.Amount,
		Label:  params.Label,
		Time:   time.Now().UTC().Truncate(time.Second),
	}
	m.nextTxID++
	m.transactions = append(m.transactions, tx)

	writeJSON(w, http.StatusOK, tx)
}

func (m *MockLedger) handleCreateRequest(w http.ResponseWriter, r *http.Request) {
	payerID, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_argument", err.Error())
		return
	}

	var params amountParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_argument", "malformed body")
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[payerID]; !ok {
		writeError(w, http.StatusNotFound, "not_found", "unknown payer")
		return
	}
	if params.Amount <= 0 {
		writeError(w, http.StatusBadRequest, "invalid_argument", "amount must be positive")
		return
	}

	pr := &client.PaymentRequest{
		ID:          m.nextReqID,
		RequesterID: SelfID,
		PayerID:     payerID,
		Amount:      params.Amount,
		Label:       params.Label,
		Status:      client.RequestPending,
	}
	m.nextReqID++
	m.requests[pr.ID] = pr

	writeJSON(w, http.StatusOK, pr)
}

func (m *MockLedger) handleTransition(target client.RequestStatus) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_argument", err.Error())
			return
		}

		m.mu.Lock()
		defer m.mu.Unlock()

		pr, ok := m.requests[id]
		if !ok {
			writeError(w, http.StatusNotFound, "not_found", "unknown request")
			return
		}
		if pr.Status != client.RequestPending {
			writeError(w, http.StatusConflict, "invalid_state",
				fmt.Sprintf("request is %s, not pending", pr.Status))
			return
		}

		if target == client.RequestAccepted {
			if m.balances[pr.PayerID] < pr.Amount {
				writeError(w, http.StatusPaymentRequired, "insufficient_funds", "balance too low")
				return
			}
			m.balances[pr.PayerID] -= pr.Amount
			m.balances[pr.RequesterID] += pr.Amount
		}
		pr.Status = target

		writeJSON(w, http.StatusOK, pr)
	}
}

func (m *MockLedger) handleTransactions(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var filtered []client.Transaction
	sender := r.URL.Query().Get("sender")
	recipient := r.URL.Query().Get("recipient")
	for _, tx := range m.transactions {
		if sender != "" && strconv.FormatInt(tx.FromID, 10) != sender {
			continue
		}
		if recipient != "" && strconv.FormatInt(tx.ToID, 10) != recipient {
			continue
		}
		filtered = append(filtered, tx)
	}

	items, pg := paginate(filtered, r)
	writeJSON(w, http.StatusOK, client.TransactionPage{Transactions: items, Pagination: pg})
}

func (m *MockLedger) handleRequests(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	defer m.mu.Unlock()

	role := r.URL.Query().Get("role")
	status := r.URL.Query().Get("status")

	var filtered []client.PaymentRequest
	for id := int64(1); id < m.nextReqID; id++ {
		pr, ok := m.requests[id]
		if !ok {
			continue
		}
		if role == string(client.RoleRequester) && pr.RequesterID != SelfID {
			continue
		}
		if role == string(client.RoleResponder) && pr.PayerID != SelfID {
			continue
		}
		if status != "" && string(pr.Status) != status {
			continue
		}
		filtered = append(filtered, *pr)
	}

	items, pg := paginate(filtered, r)
	writeJSON(w, http.StatusOK, client.RequestPage{Requests: items, Pagination: pg})
}

func (m *MockLedger) handleUsers(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	defer m.mu.Unlock()

	username := r.URL.Query().Get("username")

	var filtered []client.User
	for _, u := range m.users {
		if username != "" && u.Username != username {
			continue
		}
		filtered = append(filtered, u)
	}
	// Stable id order across pages of the same query.
	sort.Slice(filtered, func(i, j int) bool { return filtered[i].ID < filtered[j].ID })

	items, pg := paginate(filtered, r)
	writeJSON(w, http.StatusOK, client.UserPage{Users: items, Pagination: pg})
}

// paginate slices items per the page/limit query parameters and builds the
// response envelope with the total page count.
func paginate[T any](items []T, r *http.Request) ([]T, client.Pagination) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	totalPages := (len(items) + limit - 1) / limit

	start := (page - 1) * limit
	if start > len(items) {
		start = len(items)
	}
	end := start + limit
	if end > len(items) {
		end = len(items)
	}

	return items[start:end], client.Pagination{
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}
}

func pathID(r *http.Request) (int64, error) {
	raw := strings.TrimSpace(r.PathValue("id"))
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]map[string]string{
		"error": {"code": code, "message": message},
	})
}
