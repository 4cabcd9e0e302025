package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/stripe/stripe-go/v74"

	"bloodlink/internal/domain"
	"bloodlink/internal/middleware"
	"bloodlink/internal/sqlinline"
)

const maxWebhookBody = 64 << 10

type createIntentRequest struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// PaymentsCreateIntent asks the processor for a new PaymentIntent and hands
// the one-time client secret back to the browser. Amounts are minor units;
// the platform minimum is 1.00.
func (a *App) PaymentsCreateIntent(w http.ResponseWriter, r *http.Request) {
	var req createIntentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if req.Amount < 100 {
		a.error(w, http.StatusBadRequest, "bad_request", "amount must be at least 1.00")
		return
	}
	if req.Currency == "" {
		req.Currency = "usd"
	}
	if a.Processor == nil || !a.Processor.Ready() {
		a.error(w, http.StatusServiceUnavailable, "not_ready", "payment system is not ready")
		return
	}

	metadata := map[string]string{"platform": "bloodlink"}
	if country := middleware.CountryFromContext(r.Context()); country != "" {
		metadata["donor_country"] = country
	}
	if userID := a.currentUserID(r); userID != "" {
		metadata["user_id"] = userID
	}

	intent, err := a.Processor.CreateIntent(r.Context(), req.Amount, req.Currency, metadata)
	if err != nil {
		a.Logger.Error().Err(err).Int64("amount", req.Amount).Msg("create intent failed")
		if errors.Is(err, domain.ErrPaymentSystemNotReady) {
			a.error(w, http.StatusServiceUnavailable, "not_ready", "payment system is not ready")
			return
		}
		a.error(w, http.StatusBadGateway, "payment_setup", "could not set up payment")
		return
	}

	a.json(w, http.StatusOK, map[string]string{"clientSecret": intent.ClientSecret})
}

// PaymentsWebhook stores verified processor events so the reconciler can
// backfill ledger rows for charges the browser never managed to record.
func (a *App) PaymentsWebhook(w http.ResponseWriter, r *http.Request) {
	if a.Webhooks == nil {
		a.error(w, http.StatusServiceUnavailable, "not_ready", "webhook intake is not configured")
		return
	}
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "could not read payload")
		return
	}
	event, err := a.Webhooks.VerifyWebhook(payload, r.Header.Get("Stripe-Signature"))
	if err != nil {
		a.Logger.Warn().Err(err).Msg("webhook signature rejected")
		a.error(w, http.StatusBadRequest, "bad_request", "invalid signature")
		return
	}

	if !strings.HasPrefix(string(event.Type), "payment_intent.") {
		// Other event families are acknowledged and dropped.
		a.json(w, http.StatusOK, map[string]bool{"received": true})
		return
	}

	var intent stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "malformed event payload")
		return
	}

	_, err = a.SQL.Exec(r.Context(), sqlinline.QInsertWebhookEvent,
		event.ID, string(event.Type), intent.ID, intent.Amount, string(intent.Currency), payload)
	if err != nil {
		a.Logger.Error().Err(err).Str("event", event.ID).Msg("store webhook event failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to store event")
		return
	}

	a.json(w, http.StatusOK, map[string]bool{"received": true})
}
