package wallet

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/fastprodman/luxwallet/internal/config"
	"github.com/fastprodman/luxwallet/internal/payments"
)

var errProviderDown = errors.New("provider down")

type fakeProvider struct {
	mu        sync.Mutex
	seq       int
	fixedID   string
	createErr error
	requests  []payments.CheckoutRequest
	byKey     map[string]string
	onCreate  func()

	event     payments.Event
	verifyErr error
}

func (f *fakeProvider) CreateCheckoutSession(_ context.Context, req payments.CheckoutRequest) (payments.CheckoutSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.requests = append(f.requests, req)
	if f.onCreate != nil {
		f.onCreate()
	}
	if f.createErr != nil {
		return payments.CheckoutSession{}, f.createErr
	}

	// Like the provider, a repeated idempotency key returns the first session.
	if id, ok := f.byKey[req.IdempotencyKey]; ok && req.IdempotencyKey != "" {
		return payments.CheckoutSession{SessionID: id, RedirectURL: "https://checkout.test/pay/" + id}, nil
	}

	id := f.fixedID
	if id == "" {
		f.seq++
		id = fmt.Sprintf("cs_test_%d", f.seq)
	}

	if req.IdempotencyKey != "" {
		if f.byKey == nil {
			f.byKey = map[string]string{}
		}
		f.byKey[req.IdempotencyKey] = id
	}

	return payments.CheckoutSession{SessionID: id, RedirectURL: "https://checkout.test/pay/" + id}, nil
}

func (f *fakeProvider) VerifyEvent(_ []byte, sig string) (payments.Event, error) {
	if f.verifyErr != nil {
		return payments.Event{}, f.verifyErr
	}
	if sig == "" {
		return payments.Event{}, payments.ErrInvalidSignature
	}

	return f.event, nil
}

func (f *fakeProvider) calls() []payments.CheckoutRequest {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]payments.CheckoutRequest(nil), f.requests...)
}

func testWalletConfig() config.WalletConfig {
	return config.WalletConfig{
		ClickCost:   1,
		MinTopUp:    50,
		MaxTopUp:    100000,
		LockTimeout: 10 * time.Second,
	}
}

func newTestService(db *sql.DB, p payments.Provider) *Service {
	return New(db, p, testWalletConfig(), "eur")
}

func paidEvent(sessionID string, amount int64) payments.Event {
	return payments.Event{
		ID:            "evt_" + sessionID,
		Type:          "checkout.session.completed",
		SessionID:     sessionID,
		PaymentStatus: payments.PaymentPaid,
		AmountTotal:   amount,
	}
}

func intentState(t *testing.T, db *sql.DB, sessionID string) (string, bool) {
	t.Helper()

	var (
		status   string
		credited bool
	)

	err := db.QueryRow(`SELECT status, credited FROM payment_intents WHERE session_id = $1`, sessionID).
		Scan(&status, &credited)
	if err != nil {
		t.Fatalf("read intent %q: %v", sessionID, err)
	}

	return status, credited
}

func intentCount(t *testing.T, db *sql.DB) int {
	t.Helper()

	var n int

	err := db.QueryRow(`SELECT count(*) FROM payment_intents`).Scan(&n)
	if err != nil {
		t.Fatalf("count intents: %v", err)
	}

	return n
}
