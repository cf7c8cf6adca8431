package pgutils

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// WithTx runs fn inside a transaction.
// It commits if fn returns nil, otherwise it rolls back.
func WithTx(ctx context.Context, db *sql.DB, fn func(*sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil) // default isolation level
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	err = fn(tx)
	if err != nil {
		rbErr := tx.Rollback()
		if rbErr != nil {
			return fmt.Errorf("rollback after fn error: %v (fn err: %w)", rbErr, err)
		}
		return fmt.Errorf("fn: %w", err)
	}

	err = tx.Commit()
	if err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

// WithLockTimeout is WithTx with lock_timeout set for the transaction, so a
// row lock that cannot be acquired within d fails with SQLSTATE 55P03
// instead of blocking. A zero d leaves the server default.
func WithLockTimeout(ctx context.Context, db *sql.DB, d time.Duration, fn func(*sql.Tx) error) error {
	return WithTx(ctx, db, func(tx *sql.Tx) error {
		if d > 0 {
			_, err := tx.ExecContext(ctx,
				`SELECT set_config('lock_timeout', $1, true)`,
				fmt.Sprintf("%dms", d.Milliseconds()),
			)
			if err != nil {
				return fmt.Errorf("set lock_timeout: %w", err)
			}
		}

		return fn(tx)
	})
}
