package intents

import (
	"database/sql"

	"github.com/fastprodman/luxwallet/internal/repos/intents"
)

var _ intents.Intents = (*intentsRepo)(nil)

type intentsRepo struct{ db *sql.DB }

func New(db *sql.DB) *intentsRepo {
	return &intentsRepo{db: db}
}

const intentColumns = `session_id, account_id, amount, currency, status, credited, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanIntent(row rowScanner) (intents.Intent, error) {
	var (
		in     intents.Intent
		status string
	)

	err := row.Scan(
		&in.SessionID, &in.AccountID, &in.Amount, &in.Currency,
		&status, &in.Credited, &in.CreatedAt, &in.UpdatedAt,
	)
	if err != nil {
		return intents.Intent{}, err
	}

	in.Status = intents.Status(status)

	return in, nil
}
