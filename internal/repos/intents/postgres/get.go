package intents

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fastprodman/luxwallet/internal/repos/intents"
)

func (r *intentsRepo) Get(ctx context.Context, sessionID string) (intents.Intent, error) {
	in, err := scanIntent(r.db.QueryRowContext(ctx, `
		SELECT `+intentColumns+`
		FROM payment_intents
		WHERE session_id = $1
	`, sessionID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return intents.Intent{}, intents.ErrIntentNotFound
		}

		return intents.Intent{}, fmt.Errorf("get intent: %w", err)
	}

	return in, nil
}

// LockBySession reads the intent and holds its row lock until tx ends.
func (r *intentsRepo) LockBySession(ctx context.Context, tx *sql.Tx, sessionID string) (intents.Intent, error) {
	in, err := scanIntent(tx.QueryRowContext(ctx, `
		SELECT `+intentColumns+`
		FROM payment_intents
		WHERE session_id = $1
		FOR UPDATE
	`, sessionID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return intents.Intent{}, intents.ErrIntentNotFound
		}

		return intents.Intent{}, fmt.Errorf("lock intent: %w", err)
	}

	return in, nil
}
