package wallet

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/fastprodman/luxwallet/internal/repos/intents"
)

// GetBalance returns the account's balance (no locks; suitable for the GET endpoint).
func (s *Service) GetBalance(ctx context.Context, accountID string) (int64, error) {
	balance, err := s.accounts.GetBalance(ctx, accountID)
	if err != nil {
		return 0, fmt.Errorf("get balance: %w", err)
	}

	return balance, nil
}

// OpenAccount creates a zero-balance account. It reports false if the
// account already existed, leaving its balance untouched.
func (s *Service) OpenAccount(ctx context.Context, accountID string) (bool, error) {
	created, err := s.accounts.Create(ctx, accountID)
	if err != nil {
		return false, fmt.Errorf("open account: %w", err)
	}

	if created {
		slog.Info("account opened", "account_id", accountID)
	}

	return created, nil
}

// ListTopUps returns the account's top-up intents, newest first.
func (s *Service) ListTopUps(ctx context.Context, accountID string, limit int) ([]intents.Intent, error) {
	switch {
	case limit <= 0:
		limit = defaultTopUpsLimit
	case limit > maxTopUpsLimit:
		limit = maxTopUpsLimit
	}

	list, err := s.intents.ListByAccount(ctx, accountID, limit)
	if err != nil {
		return nil, fmt.Errorf("list top-ups: %w", err)
	}

	return list, nil
}

// GetTopUp returns one of the account's top-ups. Sessions owned by another
// account are reported as not found.
func (s *Service) GetTopUp(ctx context.Context, accountID, sessionID string) (intents.Intent, error) {
	in, err := s.intents.Get(ctx, sessionID)
	if err != nil {
		return intents.Intent{}, fmt.Errorf("get top-up: %w", err)
	}

	if in.AccountID != accountID {
		return intents.Intent{}, fmt.Errorf("get top-up: %w", ErrIntentNotFound)
	}

	return in, nil
}
