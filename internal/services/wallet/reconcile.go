package wallet

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/fastprodman/luxwallet/internal/payments"
	"github.com/fastprodman/luxwallet/internal/repos/intents"
)

// ReconcileWebhook verifies a raw provider delivery and reconciles it. A bad
// signature returns ErrInvalidSignature and changes nothing.
func (s *Service) ReconcileWebhook(ctx context.Context, payload []byte, signatureHeader string) (Outcome, error) {
	ev, err := s.provider.VerifyEvent(payload, signatureHeader)
	if err != nil {
		return "", fmt.Errorf("verify event: %w", err)
	}

	return s.Reconcile(ctx, ev)
}

// Reconcile applies a verified payment event. Each intent is credited at
// most once, always by its stored amount, however often the event arrives.
func (s *Service) Reconcile(ctx context.Context, ev payments.Event) (Outcome, error) {
	if ev.SessionID == "" {
		slog.Debug("webhook event ignored", "event_id", ev.ID, "type", ev.Type)
		return OutcomeIgnored, nil
	}

	switch ev.PaymentStatus {
	case payments.PaymentPaid:
		return s.credit(ctx, ev)
	case payments.PaymentExpired, payments.PaymentCanceled:
		return s.closeIntent(ctx, ev)
	default:
		slog.Info("payment not settled yet",
			"event_id", ev.ID, "session_id", ev.SessionID, "payment_status", ev.PaymentStatus)
		return OutcomeIgnored, nil
	}
}

// credit runs in one transaction, locking intent then account:
//
// 1) Lock intent; unknown session is a no-op.
// 2) Already credited is a no-op.
// 3) Mark paid+credited.
// 4) Lock account and add the stored amount.
func (s *Service) credit(ctx context.Context, ev payments.Event) (Outcome, error) {
	var (
		outcome    Outcome
		intent     intents.Intent
		newBalance int64
	)

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var err error

		// 1) Lock intent
		intent, err = s.intents.LockBySession(ctx, tx, ev.SessionID)
		if errors.Is(err, intents.ErrIntentNotFound) {
			outcome = OutcomeUnknownIntent
			return nil
		}
		if err != nil {
			return fmt.Errorf("lock intent: %w", err)
		}

		// 2) Idempotency
		if intent.Credited {
			outcome = OutcomeAlreadyCredited
			return nil
		}

		// 3) Mark credited
		err = s.intents.MarkCredited(ctx, tx, intent.SessionID)
		if err != nil {
			return fmt.Errorf("mark credited: %w", err)
		}

		// 4) Credit the stored amount
		_, err = s.accounts.LockAndGetBalance(ctx, tx, intent.AccountID)
		if err != nil {
			return fmt.Errorf("lock and get balance: %w", err)
		}

		newBalance, err = s.accounts.IncreaseBalance(ctx, tx, intent.AccountID, intent.Amount)
		if err != nil {
			return fmt.Errorf("increase balance: %w", err)
		}

		outcome = OutcomeCredited

		return nil
	})
	if err != nil {
		return "", fmt.Errorf("reconcile %s: %w", ev.SessionID, err)
	}

	switch outcome {
	case OutcomeUnknownIntent:
		slog.Warn("paid event for unknown session", "event_id", ev.ID, "session_id", ev.SessionID)
	case OutcomeAlreadyCredited:
		slog.Info("session already credited", "event_id", ev.ID, "session_id", ev.SessionID)
	case OutcomeCredited:
		if ev.AmountTotal != 0 && ev.AmountTotal != intent.Amount {
			slog.Warn("provider amount differs from stored intent",
				"session_id", ev.SessionID,
				"stored_amount", intent.Amount,
				"provider_amount", ev.AmountTotal,
			)
		}

		if ev.AccountID != "" && ev.AccountID != intent.AccountID {
			slog.Warn("provider account differs from stored intent",
				"session_id", ev.SessionID,
				"stored_account_id", intent.AccountID,
				"provider_account_id", ev.AccountID,
			)
		}

		slog.Info("top-up credited",
			"event_id", ev.ID,
			"session_id", ev.SessionID,
			"account_id", intent.AccountID,
			"amount", intent.Amount,
			"balance", newBalance,
		)
	}

	return outcome, nil
}

// closeIntent records an expired or failed checkout. Only created,
// uncredited intents change; the balance never does.
func (s *Service) closeIntent(ctx context.Context, ev payments.Event) (Outcome, error) {
	status := intents.StatusExpired
	if ev.PaymentStatus == payments.PaymentCanceled {
		status = intents.StatusCanceled
	}

	var outcome Outcome

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		intent, err := s.intents.LockBySession(ctx, tx, ev.SessionID)
		if errors.Is(err, intents.ErrIntentNotFound) {
			outcome = OutcomeUnknownIntent
			return nil
		}
		if err != nil {
			return fmt.Errorf("lock intent: %w", err)
		}

		switch {
		case intent.Credited:
			outcome = OutcomeAlreadyCredited
			return nil
		case intent.Status != intents.StatusCreated:
			outcome = OutcomeIgnored
			return nil
		}

		err = s.intents.SetStatus(ctx, tx, intent.SessionID, status)
		if err != nil {
			return fmt.Errorf("set status %s: %w", status, err)
		}

		outcome = OutcomeStatusUpdated

		return nil
	})
	if err != nil {
		return "", fmt.Errorf("reconcile %s: %w", ev.SessionID, err)
	}

	slog.Info("checkout session closed",
		"event_id", ev.ID, "session_id", ev.SessionID, "status", status, "outcome", outcome)

	return outcome, nil
}
