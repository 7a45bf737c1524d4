package client

import "time"

// Balance is a point-in-time snapshot of a user's account. It is never
// cached client-side; every lookup is a fresh round trip.
type Balance struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Balance  int64  `json:"balance"`
}

// Transaction is a completed transfer between two users. Immutable once
// returned by the service.
type Transaction struct {
	ID     int64     `json:"id"`
	FromID int64     `json:"from_id"`
	ToID   int64     `json:"to_id"`
	Amount int64     `json:"amount"`
	Label  string    `json:"label,omitempty"`
	Time   time.Time `json:"time"`
}

// RequestStatus is the lifecycle state of a payment request.
type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestAccepted RequestStatus = "accepted"
	RequestDenied   RequestStatus = "denied"
)

// PaymentRequest asks another user to pay the requester. Status transitions
// happen server-side only; AcceptRequest/DenyRequest ask for a transition,
// they never mutate locally.
type PaymentRequest struct {
	ID          int64         `json:"id"`
	RequesterID int64         `json:"requester_id"`
	PayerID     int64         `json:"payer_id"`
	Amount      int64         `json:"amount"`
	Label       string        `json:"label,omitempty"`
	Status      RequestStatus `json:"status"`
}

// User is a ledger account holder.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Banned   bool   `json:"banned"`
	Admin    bool   `json:"admin"`
}

// Pagination is the envelope the service attaches to every list response.
// TotalPages is the authoritative "has more" signal; when the service omits
// it (zero), callers fall back to the short-page heuristic.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"total_pages,omitempty"`
}

// TransactionPage is one page of the transaction listing.
type TransactionPage struct {
	Transactions []Transaction `json:"transactions"`
	Pagination   Pagination    `json:"pagination"`
}

// RequestPage is one page of the payment request listing.
type RequestPage struct {
	Requests   []PaymentRequest `json:"requests"`
	Pagination Pagination       `json:"pagination"`
}

// UserPage is one page of the user listing.
type UserPage struct {
	Users      []User     `json:"users"`
	Pagination Pagination `json:"pagination"`
}

// RequestRole selects which side of a payment request the session user is on
// when listing requests.
type RequestRole string

const (
	// RoleRequester matches requests created by the session user.
	RoleRequester RequestRole = "requester"

	// RoleResponder matches requests the session user is asked to pay.
	RoleResponder RequestRole = "responder"
)

// TransactionListOptions filters the transaction listing. Zero values mean
// "unset"; set filters combine conjunctively.
type TransactionListOptions struct {
	Sender    int64
	Recipient int64
	Page      int
	Limit     int
}

// RequestListOptions filters the payment request listing.
type RequestListOptions struct {
	Role   RequestRole
	Status RequestStatus
	// Since restricts results to requests newer than the given window,
	// expressed the way the service expects it (e.g. "2h", "30m").
	Since string
	Page  int
	Limit int
}

// UserListOptions filters the user listing.
type UserListOptions struct {
	Username string
	Page     int
	Limit    int
}
