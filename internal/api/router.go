package api

import (
	"net/http"

	"github.com/fastprodman/luxwallet/internal/services/wallet"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

var _ WalletService = (*wallet.Service)(nil)

// NewRouter constructs a chi router with all API endpoints registered.
func NewRouter(svc WalletService, verifier TokenVerifier) http.Handler {
	h := NewHandler(svc)
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/readyz", h.ReadyHandler)

	r.Route("/wallet", func(r chi.Router) {
		// Authenticated by the provider signature, not a bearer token.
		r.Post("/webhook", h.WebhookHandler)

		r.Group(func(r chi.Router) {
			r.Use(requireAccount(verifier))

			r.Get("/", h.GetBalanceHandler)
			r.Post("/debit-click", h.DebitClickHandler)
			r.Post("/topup/session", h.CreateTopUpHandler)
			r.Post("/account", h.OpenAccountHandler)
			r.Get("/topups", h.ListTopUpsHandler)
			r.Get("/topups/{sessionId}", h.GetTopUpHandler)
		})
	})

	return r
}
