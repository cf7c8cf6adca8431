package wallet

import (
	"context"
	"database/sql"
	"fmt"
)

// Debit charges unitCost in a single transaction:
//
// 1) Ensure account exists.
// 2) Lock account row (FOR UPDATE).
// 3) Reject when the locked balance is short; nothing is written.
// 4) Conditional decrement, returning the new balance.
func (s *Service) Debit(ctx context.Context, accountID string, unitCost int64) (int64, error) {
	if unitCost <= 0 {
		return 0, fmt.Errorf("debit %d: %w", unitCost, ErrInvalidAmount)
	}

	var newBalance int64

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		// 1) Ensure account exists
		err := s.accounts.Exists(ctx, tx, accountID)
		if err != nil {
			return fmt.Errorf("check account exists: %w", err)
		}

		// 2) Lock account row
		balance, err := s.accounts.LockAndGetBalance(ctx, tx, accountID)
		if err != nil {
			return fmt.Errorf("lock and get balance: %w", err)
		}

		// 3) Pre-check against locked balance
		if balance < unitCost {
			return fmt.Errorf("pre-check debit: %w", ErrInsufficientFunds)
		}

		// 4) Apply
		newBalance, err = s.accounts.DecreaseBalance(ctx, tx, accountID, unitCost)
		if err != nil {
			return fmt.Errorf("decrease balance: %w", err)
		}

		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("debit: %w", err)
	}

	return newBalance, nil
}

// DebitClick charges the configured per-click cost.
func (s *Service) DebitClick(ctx context.Context, accountID string) (int64, error) {
	return s.Debit(ctx, accountID, s.cfg.ClickCost)
}
