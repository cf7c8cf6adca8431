package intents

import (
	"context"
	"fmt"

	"github.com/fastprodman/luxwallet/internal/repos/intents"
)

func (r *intentsRepo) ListByAccount(ctx context.Context, accountID string, limit int) ([]intents.Intent, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+intentColumns+`
		FROM payment_intents
		WHERE account_id = $1
		ORDER BY created_at DESC, session_id
		LIMIT $2
	`, accountID, limit)
	if err != nil {
		return nil, fmt.Errorf("list intents: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := make([]intents.Intent, 0, limit)

	for rows.Next() {
		in, err := scanIntent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan intent: %w", err)
		}

		out = append(out, in)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("iterate intents: %w", err)
	}

	return out, nil
}
