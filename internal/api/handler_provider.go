package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/fastprodman/luxwallet/internal/auth"
	"github.com/fastprodman/luxwallet/internal/payments"
	paystripe "github.com/fastprodman/luxwallet/internal/payments/stripe"
	"github.com/fastprodman/luxwallet/internal/repos/intents"
	"github.com/fastprodman/luxwallet/internal/services/wallet"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

const (
	maxJSONBody    = 1 << 20
	maxIdemKeyLen  = 255
	maxWebhookBody = 64 << 10
	readyTimeout   = 2 * time.Second
	retryAfterSecs = "1"
)

// WalletService is what the HTTP layer needs from the wallet.
type WalletService interface {
	Currency() string
	Ping(ctx context.Context) error
	GetBalance(ctx context.Context, accountID string) (int64, error)
	DebitClick(ctx context.Context, accountID string) (int64, error)
	CreateTopUp(ctx context.Context, accountID string, amount int64, clientKey string) (wallet.TopUp, error)
	ReconcileWebhook(ctx context.Context, payload []byte, signatureHeader string) (wallet.Outcome, error)
	OpenAccount(ctx context.Context, accountID string) (bool, error)
	ListTopUps(ctx context.Context, accountID string, limit int) ([]intents.Intent, error)
	GetTopUp(ctx context.Context, accountID, sessionID string) (intents.Intent, error)
}

// HandlerProvider wraps a WalletService and exposes HTTP handlers.
type HandlerProvider struct {
	svc WalletService
}

// NewHandler returns a new Handler provider.
func NewHandler(svc WalletService) *HandlerProvider {
	return &HandlerProvider{svc: svc}
}

// --- Helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	if status == http.StatusServiceUnavailable {
		w.Header().Set("Retry-After", retryAfterSecs)
	}

	writeJSON(w, status, map[string]string{"error": msg})
}

// writeServiceError maps wallet errors to status codes. Unmapped errors are
// logged and reported as 500 without detail.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, wallet.ErrInvalidAmount):
		writeError(w, http.StatusBadRequest, "invalid amount")
	case errors.Is(err, wallet.ErrAccountNotFound):
		writeError(w, http.StatusNotFound, "account not found")
	case errors.Is(err, wallet.ErrInsufficientFunds):
		writeError(w, http.StatusPaymentRequired, "insufficient funds")
	case errors.Is(err, wallet.ErrIntentNotFound):
		writeError(w, http.StatusNotFound, "top-up not found")
	case errors.Is(err, wallet.ErrDuplicateIntent):
		writeError(w, http.StatusConflict, "duplicate payment session")
	case errors.Is(err, wallet.ErrProviderUnavailable):
		slog.Warn("payment provider failed", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusBadGateway, "cannot start payment")
	case errors.Is(err, wallet.ErrBusy):
		slog.Warn("wallet busy", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusServiceUnavailable, "busy, retry later")
	default:
		slog.Error("request failed", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// formatMinor renders minor units as a two-decimal string, e.g. 1015 -> "10.15".
func formatMinor(amount int64) string {
	return decimal.New(amount, -2).StringFixed(2)
}

func accountFromRequest(w http.ResponseWriter, r *http.Request) (string, bool) {
	accountID, ok := auth.AccountIDFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthenticated")
		return "", false
	}

	return accountID, true
}

type balanceResponse struct {
	BalanceMinorUnits int64  `json:"balanceMinorUnits"`
	Balance           string `json:"balance"`
	Currency          string `json:"currency,omitempty"`
}

type topUpRequest struct {
	AmountMinorUnits int64 `json:"amountMinorUnits"`
}

type topUpResponse struct {
	RedirectURL string `json:"redirectUrl"`
	SessionID   string `json:"sessionId"`
}

type topUpRecord struct {
	SessionID        string    `json:"sessionId"`
	AmountMinorUnits int64     `json:"amountMinorUnits"`
	Amount           string    `json:"amount"`
	Currency         string    `json:"currency"`
	Status           string    `json:"status"`
	Credited         bool      `json:"credited"`
	CreatedAt        time.Time `json:"createdAt"`
}

func newTopUpRecord(in intents.Intent) topUpRecord {
	return topUpRecord{
		SessionID:        in.SessionID,
		AmountMinorUnits: in.Amount,
		Amount:           formatMinor(in.Amount),
		Currency:         in.Currency,
		Status:           string(in.Status),
		Credited:         in.Credited,
		CreatedAt:        in.CreatedAt,
	}
}

// --- Handlers ---

// GetBalanceHandler handles GET /wallet
func (h *HandlerProvider) GetBalanceHandler(w http.ResponseWriter, r *http.Request) {
	accountID, ok := accountFromRequest(w, r)
	if !ok {
		return
	}

	bal, err := h.svc.GetBalance(r.Context(), accountID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, balanceResponse{
		BalanceMinorUnits: bal,
		Balance:           formatMinor(bal),
		Currency:          h.svc.Currency(),
	})
}

// DebitClickHandler handles POST /wallet/debit-click
func (h *HandlerProvider) DebitClickHandler(w http.ResponseWriter, r *http.Request) {
	accountID, ok := accountFromRequest(w, r)
	if !ok {
		return
	}

	bal, err := h.svc.DebitClick(r.Context(), accountID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, balanceResponse{
		BalanceMinorUnits: bal,
		Balance:           formatMinor(bal),
	})
}

// CreateTopUpHandler handles POST /wallet/topup/session
func (h *HandlerProvider) CreateTopUpHandler(w http.ResponseWriter, r *http.Request) {
	accountID, ok := accountFromRequest(w, r)
	if !ok {
		return
	}

	// Optional; a retry carrying the same key gets the same session back
	clientKey := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
	if len(clientKey) > maxIdemKeyLen {
		writeError(w, http.StatusBadRequest, "Idempotency-Key too long")
		return
	}

	// Limit body size; disallow unknown fields
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	defer r.Body.Close()

	var req topUpRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	err := dec.Decode(&req)
	if err != nil {
		if errors.Is(err, io.EOF) {
			writeError(w, http.StatusBadRequest, "empty body")
			return
		}

		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	top, err := h.svc.CreateTopUp(r.Context(), accountID, req.AmountMinorUnits, clientKey)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, topUpResponse{RedirectURL: top.RedirectURL, SessionID: top.SessionID})
}

// OpenAccountHandler handles POST /wallet/account
func (h *HandlerProvider) OpenAccountHandler(w http.ResponseWriter, r *http.Request) {
	accountID, ok := accountFromRequest(w, r)
	if !ok {
		return
	}

	created, err := h.svc.OpenAccount(r.Context(), accountID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}

	writeJSON(w, status, map[string]any{"accountId": accountID, "created": created})
}

// ListTopUpsHandler handles GET /wallet/topups?limit=N
func (h *HandlerProvider) ListTopUpsHandler(w http.ResponseWriter, r *http.Request) {
	accountID, ok := accountFromRequest(w, r)
	if !ok {
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	list, err := h.svc.ListTopUps(r.Context(), accountID, limit)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make([]topUpRecord, 0, len(list))
	for _, in := range list {
		out = append(out, newTopUpRecord(in))
	}

	writeJSON(w, http.StatusOK, map[string]any{"topUps": out})
}

// GetTopUpHandler handles GET /wallet/topups/{sessionId}
func (h *HandlerProvider) GetTopUpHandler(w http.ResponseWriter, r *http.Request) {
	accountID, ok := accountFromRequest(w, r)
	if !ok {
		return
	}

	sessionID := chi.URLParam(r, "sessionId")
	if sessionID == "" {
		writeError(w, http.StatusBadRequest, "missing sessionId")
		return
	}

	in, err := h.svc.GetTopUp(r.Context(), accountID, sessionID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, newTopUpRecord(in))
}

// WebhookHandler handles POST /wallet/webhook. Any logical outcome,
// including unknown or already credited sessions, is acknowledged with 200
// so the provider stops redelivering. Transient failures answer 5xx so it
// retries.
func (h *HandlerProvider) WebhookHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxWebhookBody)
	defer r.Body.Close()

	payload, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "payload too large")
			return
		}

		writeError(w, http.StatusBadRequest, "cannot read body")
		return
	}

	outcome, err := h.svc.ReconcileWebhook(r.Context(), payload, r.Header.Get(paystripe.SignatureHeader))
	if err != nil {
		switch {
		case errors.Is(err, wallet.ErrInvalidSignature):
			slog.Warn("webhook signature rejected", "error", err)
			writeError(w, http.StatusBadRequest, "invalid signature")
		case errors.Is(err, payments.ErrMalformedEvent):
			slog.Warn("malformed webhook event", "error", err)
			writeError(w, http.StatusBadRequest, "malformed event")
		default:
			writeServiceError(w, r, err)
		}

		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"received": true, "outcome": outcome})
}

// ReadyHandler handles GET /readyz
func (h *HandlerProvider) ReadyHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	err := h.svc.Ping(ctx)
	if err != nil {
		slog.Warn("readiness check failed", "error", err)
		writeError(w, http.StatusServiceUnavailable, "not ready")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
