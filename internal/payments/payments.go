// Package payments defines the payment provider collaborator: hosted
// checkout creation and verification of signed webhook deliveries.
package payments

import (
	"context"
	"errors"
)

var (
	ErrInvalidSignature = errors.New("invalid webhook signature")
	ErrMalformedEvent   = errors.New("malformed webhook event")
)

// PaymentStatus is the provider's verdict on a checkout session, normalized.
type PaymentStatus string

const (
	PaymentPaid     PaymentStatus = "paid"
	PaymentUnpaid   PaymentStatus = "unpaid"
	PaymentExpired  PaymentStatus = "expired"
	PaymentCanceled PaymentStatus = "canceled"
)

// Event is a verified provider notification. SessionID is empty for events
// that do not concern a checkout session.
type Event struct {
	ID            string
	Type          string
	SessionID     string
	PaymentStatus PaymentStatus
	// AmountTotal and AccountID are as reported by the provider and are
	// informational only; crediting uses the stored intent.
	AmountTotal int64
	AccountID   string
}

type CheckoutRequest struct {
	AccountID      string
	Amount         int64
	Currency       string
	IdempotencyKey string
}

type CheckoutSession struct {
	SessionID   string
	RedirectURL string
}

type Provider interface {
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (CheckoutSession, error)
	VerifyEvent(payload []byte, signatureHeader string) (Event, error)
}
