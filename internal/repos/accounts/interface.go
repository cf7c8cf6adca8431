package accounts

import (
	"context"
	"database/sql"
	"errors"
)

var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrAccountNotFound   = errors.New("account not found")
)

// Accounts is the balance store. Methods taking a *sql.Tx must be called
// inside a wallet transaction; balance mutations require the row lock taken
// by LockAndGetBalance earlier in the same transaction.
type Accounts interface {
	Create(ctx context.Context, accountID string) (bool, error)
	Exists(ctx context.Context, tx *sql.Tx, accountID string) error
	GetBalance(ctx context.Context, accountID string) (int64, error)
	LockAndGetBalance(ctx context.Context, tx *sql.Tx, accountID string) (int64, error)
	IncreaseBalance(ctx context.Context, tx *sql.Tx, accountID string, amount int64) (int64, error)
	DecreaseBalance(ctx context.Context, tx *sql.Tx, accountID string, amount int64) (int64, error)
}
