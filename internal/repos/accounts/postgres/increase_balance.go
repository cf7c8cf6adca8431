package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fastprodman/luxwallet/internal/repos/accounts"
)

func (r *accountsRepo) IncreaseBalance(ctx context.Context, tx *sql.Tx, accountID string, amount int64) (int64, error) {
	var balance int64

	err := tx.QueryRowContext(ctx, `
		UPDATE accounts
		SET balance = balance + $2,
		    updated_at = now()
		WHERE id = $1
		RETURNING balance
	`, accountID, amount).Scan(&balance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, accounts.ErrAccountNotFound
		}

		return 0, fmt.Errorf("increase balance: %w", err)
	}

	return balance, nil
}
