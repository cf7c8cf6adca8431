package wallet

import (
	"errors"

	"github.com/fastprodman/luxwallet/internal/payments"
	"github.com/fastprodman/luxwallet/internal/repos/accounts"
	"github.com/fastprodman/luxwallet/internal/repos/intents"
)

var (
	ErrInsufficientFunds = accounts.ErrInsufficientFunds
	ErrAccountNotFound   = accounts.ErrAccountNotFound
	ErrIntentNotFound    = intents.ErrIntentNotFound
	ErrDuplicateIntent   = intents.ErrDuplicateIntent
	ErrInvalidSignature  = payments.ErrInvalidSignature

	ErrInvalidAmount = errors.New("invalid amount")
	// ErrBusy means a row lock could not be taken in time, or the transaction
	// deadlocked. Nothing was changed and the call can be retried.
	ErrBusy                = errors.New("wallet busy, retry later")
	ErrProviderUnavailable = errors.New("cannot start payment")
)

// Outcome is what a reconciliation did. Every outcome is a success from the
// provider's point of view.
type Outcome string

const (
	OutcomeIgnored         Outcome = "ignored"
	OutcomeStatusUpdated   Outcome = "status_updated"
	OutcomeUnknownIntent   Outcome = "unknown_intent"
	OutcomeAlreadyCredited Outcome = "already_credited"
	OutcomeCredited        Outcome = "credited"
)

type TopUp struct {
	SessionID   string
	RedirectURL string
}

const (
	defaultTopUpsLimit = 20
	maxTopUpsLimit     = 100
)
