package accounts

import (
	"context"
	"fmt"
)

// Create opens an account with a zero balance. It reports false when the
// account already existed; the existing balance is left untouched.
func (r *accountsRepo) Create(ctx context.Context, accountID string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO accounts (id, balance)
		VALUES ($1, 0)
		ON CONFLICT (id) DO NOTHING
	`, accountID)
	if err != nil {
		return false, fmt.Errorf("insert account: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}

	return affected == 1, nil
}
