package ledger

import (
	"database/sql"
	"errors"
	"fmt"
)

// InitSchema creates the Postgres tables shared by server replicas:
// the delivery status ledger and the road distance cache.
func InitSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init ledger schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init ledger schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	statements := []string{
		`
		CREATE TABLE IF NOT EXISTS delivery_status (
			id BIGSERIAL PRIMARY KEY,
			transaction_ref UUID NOT NULL UNIQUE,
			request_id TEXT NOT NULL,
			stop_id TEXT NOT NULL,
			status TEXT NOT NULL,
			recorded_at TIMESTAMPTZ NOT NULL
		);
		`,
		`
		CREATE INDEX IF NOT EXISTS idx_delivery_status_request
		ON delivery_status(request_id, recorded_at);
		`,
		`
		CREATE TABLE IF NOT EXISTS distance_cache (
			origin TEXT NOT NULL,
			destination TEXT NOT NULL,
			distance_km DOUBLE PRECISION NOT NULL,
			PRIMARY KEY (origin, destination)
		);
		`,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init ledger schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init ledger schema: commit tx: %w", err)
	}

	return nil
}
