package client

import (
	"context"
	"fmt"
)

// sendParams is the body of a transfer or payment request creation.
type sendParams struct {
	Amount int64  `json:"amount"`
	Label  string `json:"label,omitempty"`
}

// SelfBalance returns the session user's balance.
func (s *Session) SelfBalance(ctx context.Context) (Balance, error) {
	var b Balance
	if err := s.get(ctx, "/self/balance", nil, &b); err != nil {
		return Balance{}, err
	}
	return b, nil
}

// UserBalance returns another user's balance. Fails with ErrNotFound when
// the id is unknown.
func (s *Session) UserBalance(ctx context.Context, userID int64) (Balance, error) {
	if err := validID("user id", userID); err != nil {
		return Balance{}, err
	}
	var b Balance
	if err := s.get(ctx, fmt.Sprintf("/users/%d/balance", userID), nil, &b); err != nil {
		return Balance{}, err
	}
	return b, nil
}

// Send transfers amount from the session user to another user. The amount
// is validated locally before any network I/O. Fails with
// ErrInsufficientFunds, ErrInvalidArgument or ErrNotFound.
func (s *Session) Send(ctx context.Context, toID, amount int64, label string) (Transaction, error) {
	if err := validID("recipient id", toID); err != nil {
		return Transaction{}, err
	}
	if err := validAmount(amount); err != nil {
		return Transaction{}, err
	}

	var tx Transaction
	err := s.post(ctx, fmt.Sprintf("/users/%d/send", toID), sendParams{Amount: amount, Label: label}, &tx)
	if err != nil {
		return Transaction{}, err
	}

	s.logger.Info().
		Int64("transaction_id", tx.ID).
		Int64("to_id", toID).
		Int64("amount", amount).
		Msg("Tokens sent")

	return tx, nil
}

// RequestPayment asks payer to pay amount to the session user. The created
// request starts in the pending state.
func (s *Session) RequestPayment(ctx context.Context, payerID, amount int64, label string) (PaymentRequest, error) {
	if err := validID("payer id", payerID); err != nil {
		return PaymentRequest{}, err
	}
	if err := validAmount(amount); err != nil {
		return PaymentRequest{}, err
	}

	var pr PaymentRequest
	err := s.post(ctx, fmt.Sprintf("/users/%d/requests", payerID), sendParams{Amount: amount, Label: label}, &pr)
	if err != nil {
		return PaymentRequest{}, err
	}

	s.logger.Info().
		Int64("request_id", pr.ID).
		Int64("payer_id", payerID).
		Int64("amount", amount).
		Msg("Payment request created")

	return pr, nil
}

// AcceptRequest accepts a pending payment request addressed to the session
// user. Fails with ErrInvalidState when the request is not pending.
func (s *Session) AcceptRequest(ctx context.Context, requestID int64) (PaymentRequest, error) {
	return s.transitionRequest(ctx, requestID, "accept")
}

// DenyRequest denies a pending payment request addressed to the session
// user. Fails with ErrInvalidState when the request is not pending.
func (s *Session) DenyRequest(ctx context.Context, requestID int64) (PaymentRequest, error) {
	return s.transitionRequest(ctx, requestID, "deny")
}

func (s *Session) transitionRequest(ctx context.Context, requestID int64, action string) (PaymentRequest, error) {
	if err := validID("request id", requestID); err != nil {
		return PaymentRequest{}, err
	}

	var pr PaymentRequest
	err := s.post(ctx, fmt.Sprintf("/requests/%d/%s", requestID, action), nil, &pr)
	if err != nil {
		return PaymentRequest{}, err
	}

	s.logger.Info().
		Int64("request_id", requestID).
		Str("status", string(pr.Status)).
		Msg("Payment request transitioned")

	return pr, nil
}

func validID(name string, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: %s must be positive (got %d)", ErrInvalidArgument, name, id)
	}
	return nil
}

func validAmount(amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("%w: amount must be positive (got %d)", ErrInvalidArgument, amount)
	}
	return nil
}
