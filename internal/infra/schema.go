package infra

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/rs/zerolog"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
	id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
	google_sub text UNIQUE NOT NULL,
	email text NOT NULL DEFAULT '',
	name text NOT NULL DEFAULT '',
	picture text NOT NULL DEFAULT '',
	locale text NOT NULL DEFAULT 'en',
	role text NOT NULL DEFAULT 'donor',
	created_at timestamptz NOT NULL DEFAULT now(),
	updated_at timestamptz NOT NULL DEFAULT now()
)`,
	`CREATE TABLE IF NOT EXISTS funds (
	id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
	user_email text NOT NULL DEFAULT '',
	user_name text NOT NULL DEFAULT '',
	amount_minor bigint NOT NULL,
	currency text NOT NULL DEFAULT 'usd',
	payment_intent_id text UNIQUE NOT NULL,
	status text NOT NULL,
	metadata jsonb NOT NULL DEFAULT '{}'::jsonb,
	created_at timestamptz NOT NULL DEFAULT now()
)`,
	`CREATE TABLE IF NOT EXISTS webhook_events (
	id text PRIMARY KEY,
	event_type text NOT NULL,
	payment_intent_id text NOT NULL DEFAULT '',
	amount_minor bigint NOT NULL DEFAULT 0,
	currency text NOT NULL DEFAULT '',
	payload jsonb NOT NULL DEFAULT '{}'::jsonb,
	processed_at timestamptz,
	received_at timestamptz NOT NULL DEFAULT now()
)`,
	`CREATE INDEX IF NOT EXISTS idx_funds_created_at ON funds (created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_webhook_events_pending ON webhook_events (received_at) WHERE processed_at IS NULL`,
}

// EnsureSchema creates the tables the service needs when they do not exist
// yet. It runs over database/sql with the pq driver so it can execute before
// the pgx pool is up, and is safe to re-run.
func EnsureSchema(ctx context.Context, databaseURL string, logger zerolog.Logger) error {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	logger.Info().Msg("database schema ensured")
	return nil
}
