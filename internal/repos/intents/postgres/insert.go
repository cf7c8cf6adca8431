package intents

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fastprodman/luxwallet/internal/infra/pgutils"
	"github.com/fastprodman/luxwallet/internal/repos/intents"
)

// Insert records a new intent as created and not credited, whatever the
// Status and Credited fields of in say.
func (r *intentsRepo) Insert(ctx context.Context, tx *sql.Tx, in intents.Intent) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO payment_intents (session_id, account_id, amount, currency, status, credited)
		VALUES ($1, $2, $3, $4, $5, false)
	`, in.SessionID, in.AccountID, in.Amount, in.Currency, string(intents.StatusCreated))
	if err != nil {
		if pgutils.IsUniqueViolation(err) {
			return intents.ErrDuplicateIntent
		}

		return fmt.Errorf("insert intent: %w", err)
	}

	return nil
}
