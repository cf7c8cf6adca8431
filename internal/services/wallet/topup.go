package wallet

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/fastprodman/luxwallet/internal/infra/pgutils"
	"github.com/fastprodman/luxwallet/internal/payments"
	"github.com/fastprodman/luxwallet/internal/repos/intents"
	"github.com/google/uuid"
)

// topUpKeySpace namespaces provider idempotency keys derived from client keys.
var topUpKeySpace = uuid.MustParse("6f1c2a4e-8b3d-4c7a-9e51-2d7f0b6a3c19")

// intentWriteTimeout bounds the intent insert, which outlives the request.
const intentWriteTimeout = 10 * time.Second

// providerIdempotencyKey maps a client retry key to a stable provider key.
// The same account, amount and client key always give the same provider key,
// so a retried request gets the same checkout session back. An empty client
// key gives an empty provider key and every call opens a new session.
func providerIdempotencyKey(accountID string, amount int64, clientKey string) string {
	if clientKey == "" {
		return ""
	}

	name := accountID + "\x00" + strconv.FormatInt(amount, 10) + "\x00" + clientKey

	return uuid.NewSHA1(topUpKeySpace, []byte(name)).String()
}

// CreateTopUp opens a hosted checkout session for amount and records the
// pending intent. The balance is not touched; crediting happens only when
// the provider confirms payment.
//
// The provider is called outside any transaction so no row lock is held
// across the network round trip. clientKey, when set, makes retries return
// the session created by the first attempt.
func (s *Service) CreateTopUp(ctx context.Context, accountID string, amount int64, clientKey string) (TopUp, error) {
	if amount < s.cfg.MinTopUp || amount > s.cfg.MaxTopUp {
		return TopUp{}, fmt.Errorf("top-up %d outside [%d, %d]: %w",
			amount, s.cfg.MinTopUp, s.cfg.MaxTopUp, ErrInvalidAmount)
	}

	_, err := s.accounts.GetBalance(ctx, accountID)
	if err != nil {
		return TopUp{}, fmt.Errorf("create top-up: %w", err)
	}

	sess, err := s.provider.CreateCheckoutSession(ctx, payments.CheckoutRequest{
		AccountID:      accountID,
		Amount:         amount,
		Currency:       s.currency,
		IdempotencyKey: providerIdempotencyKey(accountID, amount, clientKey),
	})
	if err != nil {
		return TopUp{}, fmt.Errorf("%w: %w", ErrProviderUnavailable, err)
	}

	top := TopUp{SessionID: sess.SessionID, RedirectURL: sess.RedirectURL}

	// The session exists at the provider now; record it even if the caller
	// has gone away.
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), intentWriteTimeout)
	defer cancel()

	err = s.recordIntent(writeCtx, intents.Intent{
		SessionID: sess.SessionID,
		AccountID: accountID,
		Amount:    amount,
		Currency:  s.currency,
	})
	if errors.Is(err, ErrDuplicateIntent) {
		return s.replayTopUp(writeCtx, top, accountID, amount, err)
	}
	if err != nil {
		return TopUp{}, fmt.Errorf("create top-up: %w", err)
	}

	slog.Info("top-up session created",
		"account_id", accountID,
		"session_id", sess.SessionID,
		"amount", amount,
	)

	return top, nil
}

func (s *Service) recordIntent(ctx context.Context, in intents.Intent) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		err := s.intents.Insert(ctx, tx, in)
		if err != nil {
			switch {
			case pgutils.IsForeignKeyViolation(err):
				return fmt.Errorf("insert intent: %w", ErrAccountNotFound)
			case pgutils.IsCheckViolation(err):
				return fmt.Errorf("insert intent: %w", ErrInvalidAmount)
			}

			return fmt.Errorf("insert intent: %w", err)
		}

		return nil
	})
}

// replayTopUp handles a provider session that is already recorded. It is the
// answer to a retried request when the stored intent matches it; anything
// else is a genuine duplicate.
func (s *Service) replayTopUp(ctx context.Context, top TopUp, accountID string, amount int64, dupErr error) (TopUp, error) {
	existing, err := s.intents.Get(ctx, top.SessionID)
	if err != nil {
		return TopUp{}, fmt.Errorf("create top-up: %w", errors.Join(dupErr, err))
	}

	if existing.AccountID != accountID || existing.Amount != amount {
		return TopUp{}, fmt.Errorf("create top-up: %w", dupErr)
	}

	slog.Info("top-up session replayed",
		"account_id", accountID,
		"session_id", top.SessionID,
		"status", existing.Status,
	)

	return top, nil
}
