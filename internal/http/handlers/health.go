package handlers

import (
	"net/http"
)

// Health reports liveness plus whether the payment processor is usable, so
// operators can tell a dead service apart from one running without Stripe
// credentials.
func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	payments := "unconfigured"
	if a.Processor != nil && a.Processor.Ready() {
		payments = "ready"
	}
	a.json(w, http.StatusOK, map[string]string{
		"status":   "ok",
		"payments": payments,
	})
}
