package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"bloodlink/internal/domain"
	"bloodlink/internal/infra"
	"bloodlink/internal/middleware"
	"bloodlink/internal/sqlinline"
)

type fundRequest struct {
	UserEmail       string         `json:"userEmail"`
	UserName        string         `json:"userName"`
	Amount          int64          `json:"amount"`
	Currency        string         `json:"currency"`
	PaymentIntentID string         `json:"paymentIntentId"`
	Status          string         `json:"status"`
	Metadata        map[string]any `json:"metadata"`
}

type fundDTO struct {
	ID              string          `json:"id"`
	UserEmail       string          `json:"userEmail"`
	UserName        string          `json:"userName"`
	Amount          int64           `json:"amount"`
	Currency        string          `json:"currency"`
	PaymentIntentID string          `json:"paymentIntentId"`
	Status          string          `json:"status"`
	Metadata        json.RawMessage `json:"metadata"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// FundsCreate records one donation in the ledger. The payment intent id is
// the idempotency key: a duplicate submission gets a 409 so the client can
// treat "already recorded" as success instead of double-counting.
func (a *App) FundsCreate(w http.ResponseWriter, r *http.Request) {
	var req fundRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if req.PaymentIntentID == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "paymentIntentId is required")
		return
	}
	if req.Status != domain.OutcomeSucceeded {
		a.error(w, http.StatusBadRequest, "bad_request", "donation requires a succeeded payment")
		return
	}
	if req.Amount < 100 {
		a.error(w, http.StatusBadRequest, "bad_request", "amount must be at least 1.00")
		return
	}
	if req.Currency == "" {
		req.Currency = "usd"
	}
	if req.UserName == "" {
		req.UserName = domain.AnonymousDonorName
	}

	// The ledger amount must equal the charged amount. When the processor
	// is configured, verify against the intent before writing.
	if a.Processor != nil && a.Processor.Ready() {
		intent, status, err := a.Processor.GetIntent(r.Context(), req.PaymentIntentID)
		if err != nil {
			a.Logger.Error().Err(err).Str("payment_intent", req.PaymentIntentID).Msg("intent lookup failed")
			a.error(w, http.StatusBadGateway, "processor_unavailable", "could not verify payment")
			return
		}
		if status != domain.OutcomeSucceeded {
			a.error(w, http.StatusBadRequest, "bad_request", "payment has not succeeded")
			return
		}
		if intent.AmountMinor != req.Amount {
			a.error(w, http.StatusBadRequest, "bad_request", "amount does not match the charged amount")
			return
		}
	}

	metadata := req.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}
	if country := middleware.CountryFromContext(r.Context()); country != "" {
		metadata["donor_country"] = country
	}
	metadataRaw, err := json.Marshal(metadata)
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid metadata")
		return
	}

	row := a.SQL.QueryRow(r.Context(), sqlinline.QInsertFund,
		req.UserEmail, req.UserName, req.Amount, req.Currency,
		req.PaymentIntentID, req.Status, metadataRaw)
	var fundID string
	var createdAt time.Time
	if err := row.Scan(&fundID, &createdAt); err != nil {
		if infra.IsUniqueViolation(err) {
			a.json(w, http.StatusConflict, map[string]any{
				"message": "donation already recorded for this payment",
			})
			return
		}
		a.Logger.Error().Err(err).Str("payment_intent", req.PaymentIntentID).Msg("insert fund failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to record donation")
		return
	}

	a.json(w, http.StatusCreated, map[string]any{
		"success": true,
		"data": fundDTO{
			ID:              fundID,
			UserEmail:       req.UserEmail,
			UserName:        req.UserName,
			Amount:          req.Amount,
			Currency:        req.Currency,
			PaymentIntentID: req.PaymentIntentID,
			Status:          req.Status,
			Metadata:        metadataRaw,
			CreatedAt:       createdAt,
		},
	})
}

// FundsList returns recent ledger entries plus the aggregate the dashboards
// refresh after a successful donation.
func (a *App) FundsList(w http.ResponseWriter, r *http.Request) {
	rows, err := a.SQL.Query(r.Context(), sqlinline.QListFunds, 20)
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to load donations")
		return
	}
	defer rows.Close()

	var items []fundDTO
	for rows.Next() {
		var f fundDTO
		var metadata []byte
		if err := rows.Scan(&f.ID, &f.UserEmail, &f.UserName, &f.Amount, &f.Currency,
			&f.PaymentIntentID, &f.Status, &metadata, &f.CreatedAt); err != nil {
			a.error(w, http.StatusInternalServerError, "internal", "failed to load donations")
			return
		}
		f.Metadata = json.RawMessage(metadata)
		items = append(items, f)
	}
	if err := rows.Err(); err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to load donations")
		return
	}

	var count, total int64
	if err := a.SQL.QueryRow(r.Context(), sqlinline.QFundsTotal).Scan(&count, &total); err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to load donation totals")
		return
	}

	a.json(w, http.StatusOK, map[string]any{
		"success": true,
		"data": map[string]any{
			"items":       items,
			"count":       count,
			"totalAmount": total,
		},
	})
}
