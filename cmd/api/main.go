package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/fastprodman/luxwallet/internal/api"
	"github.com/fastprodman/luxwallet/internal/auth"
	"github.com/fastprodman/luxwallet/internal/infra/logging"
	"github.com/fastprodman/luxwallet/internal/infra/pgutils"
	paystripe "github.com/fastprodman/luxwallet/internal/payments/stripe"
	"github.com/fastprodman/luxwallet/internal/services/wallet"
	"github.com/fastprodman/luxwallet/pkg/envconf"
	"github.com/fastprodman/luxwallet/pkg/shutdownqueue"
	"github.com/joho/godotenv"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := run(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error running api: %v\n", err)
		//nolint:gocritic
		os.Exit(1)
	}
}

func run(ctx context.Context) (retErr error) {
	// A local .env is optional; real deployments set the environment directly.
	err := godotenv.Load()
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	cfg := new(apiConfig)

	err = envconf.Load(cfg)
	if err != nil {
		return fmt.Errorf("init config: %w", err)
	}

	logging.SetupJSON(cfg.LogLevel, "service", "wallet-api")

	sq := shutdownqueue.New()

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		serr := sq.Shutdown(shutdownCtx)
		if serr != nil {
			retErr = errors.Join(retErr, serr)
		}
	}()

	// --- Infra ---
	dbConns, err := pgutils.OpenDB(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}

	sq.Add("postgres", func(context.Context) error {
		return dbConns.Close()
	})

	provider := paystripe.New(cfg.Stripe)
	walletSrv := wallet.New(dbConns, provider, cfg.Wallet, cfg.Stripe.Currency)
	verifier := auth.NewJWTVerifier(cfg.Auth)

	// --- HTTP server ---
	srv := api.NewServer(cfg.Port, walletSrv, verifier)

	sq.Add("http-server", func(c context.Context) error {
		slog.Info("Shut down server")

		return srv.Shutdown(c)
	})

	// Run server
	errCh := make(chan error, 1)

	go func() {
		serr := srv.ListenAndServe()
		// http.ErrServerClosed is the normal path during Shutdown
		if serr != nil && !errors.Is(serr, http.ErrServerClosed) {
			errCh <- serr
			return
		}

		errCh <- nil
	}()

	slog.Info("API started",
		"port", cfg.Port,
		"currency", cfg.Stripe.Currency,
		"click_cost", cfg.Wallet.ClickCost,
	)

	// --- Wait until either context cancels or server errors out ---
	select {
	case <-ctx.Done():
		// graceful path; deferred Shutdown drains the queue
		return nil
	case serr := <-errCh:
		if serr != nil {
			return fmt.Errorf("server error: %w", serr)
		}

		return nil
	}
}
