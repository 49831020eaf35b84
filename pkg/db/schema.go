package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS contacts (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL,
		dob TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS send_logs (
		id BIGSERIAL PRIMARY KEY,
		contact_id BIGINT NOT NULL,
		contact_name TEXT NOT NULL,
		contact_email TEXT NOT NULL,
		status TEXT NOT NULL,
		sent_at TIMESTAMPTZ NOT NULL,
		error_message TEXT
	)`,
}

// The partial unique index is the authoritative backstop against double sends:
// no two rows with status 'sent' may share a contact and a calendar day, no
// matter how many processes run the check concurrently. The day is computed in
// the same zone the ledger uses, so index days and ledger days line up.
const sentPerDayIndex = `CREATE UNIQUE INDEX IF NOT EXISTS send_logs_one_sent_per_day
	ON send_logs (contact_id, ((sent_at AT TIME ZONE '%s')::date))
	WHERE status = 'sent'`

// EnsureSchema creates the tables and indexes the service owns. Statements are
// idempotent so it runs on every start.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool, timezone string) error {
	for _, stmt := range schemaStatements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}

	// Zone names are config-supplied, not user input; escaping single quotes
	// still keeps the interpolation well-formed.
	tz := strings.ReplaceAll(timezone, "'", "''")
	if _, err := pool.Exec(ctx, fmt.Sprintf(sentPerDayIndex, tz)); err != nil {
		return fmt.Errorf("failed to create dedup index: %w", err)
	}
	return nil
}
