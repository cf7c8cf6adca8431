// Package stripe implements payments.Provider on Stripe Checkout.
package stripe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/fastprodman/luxwallet/internal/config"
	"github.com/fastprodman/luxwallet/internal/payments"
	stripeapi "github.com/stripe/stripe-go/v75"
	checkoutsession "github.com/stripe/stripe-go/v75/checkout/session"
	"github.com/stripe/stripe-go/v75/webhook"
)

// SignatureHeader carries the webhook signature.
const SignatureHeader = "Stripe-Signature"

const (
	metaAccountID   = "account_id"
	metaAmountMinor = "amount_minor"

	eventCheckoutCompleted      = "checkout.session.completed"
	eventAsyncPaymentSucceeded  = "checkout.session.async_payment_succeeded"
	eventAsyncPaymentFailed     = "checkout.session.async_payment_failed"
	eventCheckoutSessionExpired = "checkout.session.expired"
)

var _ payments.Provider = (*Provider)(nil)

type Provider struct {
	sessions      checkoutsession.Client
	webhookSecret string
	productName   string
	successURL    string
	cancelURL     string
}

// New uses the live Stripe API backend.
func New(cfg config.StripeConfig) *Provider {
	return NewWithBackend(cfg, stripeapi.GetBackend(stripeapi.APIBackend))
}

// NewWithBackend talks to Stripe through b (e.g. a backend pointed at a
// test server via stripe.GetBackendWithConfig).
func NewWithBackend(cfg config.StripeConfig, b stripeapi.Backend) *Provider {
	frontend := strings.TrimRight(cfg.FrontendURL, "/")

	return &Provider{
		sessions:      checkoutsession.Client{B: b, Key: cfg.SecretKey},
		webhookSecret: cfg.WebhookSecret,
		productName:   cfg.ProductName,
		successURL:    frontend + "/?topup=success",
		cancelURL:     frontend + "/?topup=cancel",
	}
}

func (p *Provider) CreateCheckoutSession(ctx context.Context, req payments.CheckoutRequest) (payments.CheckoutSession, error) {
	params := &stripeapi.CheckoutSessionParams{
		Mode: stripeapi.String(string(stripeapi.CheckoutSessionModePayment)),
		LineItems: []*stripeapi.CheckoutSessionLineItemParams{
			{
				PriceData: &stripeapi.CheckoutSessionLineItemPriceDataParams{
					Currency: stripeapi.String(req.Currency),
					ProductData: &stripeapi.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripeapi.String(p.productName),
					},
					UnitAmount: stripeapi.Int64(req.Amount),
				},
				Quantity: stripeapi.Int64(1),
			},
		},
		SuccessURL:        stripeapi.String(p.successURL),
		CancelURL:         stripeapi.String(p.cancelURL),
		ClientReferenceID: stripeapi.String(req.AccountID),
	}
	params.Context = ctx
	params.AddMetadata(metaAccountID, req.AccountID)
	params.AddMetadata(metaAmountMinor, strconv.FormatInt(req.Amount, 10))

	if req.IdempotencyKey != "" {
		params.SetIdempotencyKey(req.IdempotencyKey)
	}

	s, err := p.sessions.New(params)
	if err != nil {
		return payments.CheckoutSession{}, fmt.Errorf("create checkout session: %w", err)
	}

	if s.ID == "" || s.URL == "" {
		return payments.CheckoutSession{}, errors.New("create checkout session: response missing id or url")
	}

	return payments.CheckoutSession{SessionID: s.ID, RedirectURL: s.URL}, nil
}

// VerifyEvent checks the signature header against the raw payload and maps
// checkout session events to a normalized payments.Event.
func (p *Provider) VerifyEvent(payload []byte, signatureHeader string) (payments.Event, error) {
	event, err := webhook.ConstructEventWithOptions(
		payload,
		signatureHeader,
		p.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true},
	)
	if err != nil {
		return payments.Event{}, fmt.Errorf("%w: %v", payments.ErrInvalidSignature, err)
	}

	ev := payments.Event{ID: event.ID, Type: string(event.Type)}

	var status payments.PaymentStatus

	switch ev.Type {
	case eventCheckoutCompleted:
		// decided by the session's payment_status below
	case eventAsyncPaymentSucceeded:
		status = payments.PaymentPaid
	case eventAsyncPaymentFailed:
		status = payments.PaymentCanceled
	case eventCheckoutSessionExpired:
		status = payments.PaymentExpired
	default:
		return ev, nil
	}

	if event.Data == nil {
		return payments.Event{}, fmt.Errorf("%w: %s without data", payments.ErrMalformedEvent, ev.Type)
	}

	var session stripeapi.CheckoutSession

	err = json.Unmarshal(event.Data.Raw, &session)
	if err != nil {
		return payments.Event{}, fmt.Errorf("%w: parse checkout session: %v", payments.ErrMalformedEvent, err)
	}

	if session.ID == "" {
		return payments.Event{}, fmt.Errorf("%w: checkout session without id", payments.ErrMalformedEvent)
	}

	if status == "" {
		status = payments.PaymentUnpaid
		if session.PaymentStatus == stripeapi.CheckoutSessionPaymentStatusPaid {
			status = payments.PaymentPaid
		}
	}

	ev.SessionID = session.ID
	ev.PaymentStatus = status
	ev.AmountTotal = session.AmountTotal
	ev.AccountID = session.ClientReferenceID

	if id := session.Metadata[metaAccountID]; id != "" {
		ev.AccountID = id
	}

	return ev, nil
}
