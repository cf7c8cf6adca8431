package wallet

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fastprodman/luxwallet/internal/config"
	"github.com/fastprodman/luxwallet/internal/infra/pgutils"
	"github.com/fastprodman/luxwallet/internal/payments"
	"github.com/fastprodman/luxwallet/internal/repos/accounts"
	pgaccounts "github.com/fastprodman/luxwallet/internal/repos/accounts/postgres"
	"github.com/fastprodman/luxwallet/internal/repos/intents"
	pgintents "github.com/fastprodman/luxwallet/internal/repos/intents/postgres"
)

// Service owns every balance mutation: per-click debits and crediting paid
// top-ups. All amounts are integer minor units.
type Service struct {
	db       *sql.DB
	accounts accounts.Accounts
	intents  intents.Intents
	provider payments.Provider
	cfg      config.WalletConfig
	currency string
}

func New(dbx *sql.DB, provider payments.Provider, cfg config.WalletConfig, currency string) *Service {
	return &Service{
		db:       dbx,
		accounts: pgaccounts.New(dbx),
		intents:  pgintents.New(dbx),
		provider: provider,
		cfg:      cfg,
		currency: currency,
	}
}

func (s *Service) Currency() string {
	return s.currency
}

// Ping reports whether the balance store is reachable.
func (s *Service) Ping(ctx context.Context) error {
	err := s.db.PingContext(ctx)
	if err != nil {
		return fmt.Errorf("ping db: %w", err)
	}

	return nil
}

// withTx runs fn in a transaction bounded by the configured lock timeout.
// Lock timeouts and deadlocks come back as ErrBusy.
func (s *Service) withTx(ctx context.Context, fn func(*sql.Tx) error) error {
	err := pgutils.WithLockTimeout(ctx, s.db, s.cfg.LockTimeout, fn)
	if err != nil && pgutils.IsRetryable(err) {
		return fmt.Errorf("%w: %w", ErrBusy, err)
	}

	return err
}
