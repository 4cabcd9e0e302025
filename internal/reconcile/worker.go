package reconcile

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"

	"bloodlink/internal/domain"
	"bloodlink/internal/infra"
	"bloodlink/internal/sqlinline"
)

const defaultBatchSize = 50

// Worker backfills ledger rows from stored processor webhook events. It
// covers the case where a charge succeeded but the browser never managed to
// record the donation: the webhook is the processor's authoritative word
// that money moved, so a missing fund row is created from it.
type Worker struct {
	sql       infra.SQLExecutor
	logger    zerolog.Logger
	interval  time.Duration
	batchSize int
}

func NewWorker(sql infra.SQLExecutor, logger zerolog.Logger, interval time.Duration) *Worker {
	return &Worker{
		sql:       sql,
		logger:    logger,
		interval:  interval,
		batchSize: defaultBatchSize,
	}
}

// Run sweeps pending events until the context is cancelled.
func (w *Worker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		backfilled, err := w.Sweep(ctx)
		if err != nil {
			w.logger.Error().Err(err).Msg("reconcile sweep failed")
		} else if backfilled > 0 {
			w.logger.Info().Int("backfilled", backfilled).Msg("reconciled missing donations")
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

type pendingEvent struct {
	id        string
	eventType string
	intentID  string
	amount    int64
	currency  string
}

// Sweep processes one batch of pending webhook events and returns how many
// fund rows were backfilled. Events that fail to reconcile stay pending and
// are retried on the next sweep.
func (w *Worker) Sweep(ctx context.Context) (int, error) {
	rows, err := w.sql.Query(ctx, sqlinline.QSelectPendingWebhookEvents, w.batchSize)
	if err != nil {
		return 0, err
	}
	var events []pendingEvent
	for rows.Next() {
		var ev pendingEvent
		if err := rows.Scan(&ev.id, &ev.eventType, &ev.intentID, &ev.amount, &ev.currency); err != nil {
			rows.Close()
			return 0, err
		}
		events = append(events, ev)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, err
	}

	backfilled := 0
	for _, ev := range events {
		if ev.eventType == "payment_intent.succeeded" && ev.intentID != "" && ev.amount > 0 {
			metadata, _ := json.Marshal(map[string]string{
				"source":   "webhook-reconciliation",
				"event_id": ev.id,
			})
			tag, err := w.sql.Exec(ctx, sqlinline.QInsertReconciledFund,
				domain.AnonymousDonorName, ev.amount, ev.currency, ev.intentID, metadata)
			if err != nil {
				w.logger.Error().Err(err).Str("event", ev.id).Msg("backfill fund failed")
				continue
			}
			// RowsAffected is zero when the browser already recorded the
			// donation; nothing was double-counted.
			if tag.RowsAffected() > 0 {
				backfilled++
				w.logger.Info().
					Str("payment_intent", ev.intentID).
					Int64("amount", ev.amount).
					Msg("backfilled donation from webhook")
			}
		}

		if _, err := w.sql.Exec(ctx, sqlinline.QMarkWebhookEventProcessed, ev.id); err != nil {
			w.logger.Error().Err(err).Str("event", ev.id).Msg("mark event processed failed")
		}
	}
	return backfilled, nil
}
