package accounts

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fastprodman/luxwallet/internal/repos/accounts"
)

func (r *accountsRepo) Exists(ctx context.Context, tx *sql.Tx, accountID string) error {
	var exists bool

	err := tx.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM accounts WHERE id = $1)
	`, accountID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check exists: %w", err)
	}

	if !exists {
		return accounts.ErrAccountNotFound
	}

	return nil
}
