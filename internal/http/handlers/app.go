package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/stripe/stripe-go/v74"

	"bloodlink/internal/infra"
	"bloodlink/internal/middleware"
	"bloodlink/internal/providers/stripepay"
)

// IDTokenVerifier validates a federated identity token and returns its
// claims. The Google JWKS verifier satisfies it in production.
type IDTokenVerifier interface {
	VerifyIDToken(ctx context.Context, token string) (map[string]any, error)
}

// WebhookVerifier checks a processor webhook signature and parses the event.
type WebhookVerifier interface {
	VerifyWebhook(payload []byte, signatureHeader string) (*stripe.Event, error)
}

// App carries the dependencies shared by all HTTP handlers.
type App struct {
	SQL            infra.SQLExecutor
	Logger         infra.Logger
	JWTSecret      string
	Processor      stripepay.Processor
	Webhooks       WebhookVerifier
	GoogleVerifier IDTokenVerifier
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, errCode, message string) {
	a.json(w, code, map[string]any{
		"error": map[string]string{"code": errCode, "message": message},
	})
}

func (a *App) currentUserID(r *http.Request) string {
	return middleware.UserIDFromContext(r.Context())
}
