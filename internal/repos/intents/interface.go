package intents

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

var (
	ErrDuplicateIntent = errors.New("duplicate payment intent")
	ErrIntentNotFound  = errors.New("payment intent not found")
	// ErrNotTransitionable is returned when a status change is attempted on an
	// intent that already left the created state.
	ErrNotTransitionable = errors.New("payment intent status cannot change")
)

type Status string

const (
	StatusCreated  Status = "created"
	StatusPaid     Status = "paid"
	StatusExpired  Status = "expired"
	StatusCanceled Status = "canceled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusCreated, StatusPaid, StatusExpired, StatusCanceled:
		return true
	default:
		return false
	}
}

// Intent is one top-up attempt, keyed by the provider's session id.
// Amount is in minor units and never changes after insert.
type Intent struct {
	SessionID string
	AccountID string
	Amount    int64
	Currency  string
	Status    Status
	Credited  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Intents interface {
	Insert(ctx context.Context, tx *sql.Tx, intent Intent) error
	Get(ctx context.Context, sessionID string) (Intent, error)
	LockBySession(ctx context.Context, tx *sql.Tx, sessionID string) (Intent, error)
	MarkCredited(ctx context.Context, tx *sql.Tx, sessionID string) error
	SetStatus(ctx context.Context, tx *sql.Tx, sessionID string, status Status) error
	ListByAccount(ctx context.Context, accountID string, limit int) ([]Intent, error)
}
