package intents

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fastprodman/luxwallet/internal/repos/intents"
)

// MarkCredited flips credited to true and status to paid. It only matches an
// uncredited row, so a second call returns ErrNotTransitionable.
func (r *intentsRepo) MarkCredited(ctx context.Context, tx *sql.Tx, sessionID string) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE payment_intents
		SET status = $2,
		    credited = true,
		    updated_at = now()
		WHERE session_id = $1
		  AND NOT credited
	`, sessionID, string(intents.StatusPaid))
	if err != nil {
		return fmt.Errorf("mark credited: %w", err)
	}

	return expectOneRow(res)
}

// SetStatus moves a created, uncredited intent to a terminal status without
// any balance effect.
func (r *intentsRepo) SetStatus(ctx context.Context, tx *sql.Tx, sessionID string, status intents.Status) error {
	if !status.Valid() || status == intents.StatusCreated || status == intents.StatusPaid {
		return fmt.Errorf("set status %q: %w", status, intents.ErrNotTransitionable)
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE payment_intents
		SET status = $2,
		    updated_at = now()
		WHERE session_id = $1
		  AND status = $3
		  AND NOT credited
	`, sessionID, string(status), string(intents.StatusCreated))
	if err != nil {
		return fmt.Errorf("set status: %w", err)
	}

	return expectOneRow(res)
}

func expectOneRow(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}

	if affected == 0 {
		return intents.ErrNotTransitionable
	}

	return nil
}
