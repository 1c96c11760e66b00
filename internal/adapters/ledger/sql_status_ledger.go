package ledger

import (
	"context"
	"database/sql"
	"dynamic-route-service/internal/domain"
	"dynamic-route-service/internal/platform/obs"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SQLStatusLedger appends delivery status entries to Postgres.
type SQLStatusLedger struct {
	DB    *sql.DB
	NewID func() string
	Now   func() time.Time
}

func NewSQLStatusLedger(db *sql.DB) *SQLStatusLedger {
	return &SQLStatusLedger{DB: db, NewID: uuid.NewString, Now: time.Now}
}

func (l *SQLStatusLedger) RecordStatus(ctx context.Context, e domain.StatusEntry) (_ string, err error) {
	defer obs.Time(ctx, "ledger.RecordStatus")(&err)

	if l.DB == nil {
		return "", errors.New("status ledger: DB is nil")
	}
	if e.RequestID == "" || e.StopID == "" {
		return "", errors.New("record status: request id and stop id must not be empty")
	}
	if !e.Status.Valid() {
		return "", fmt.Errorf("record status: unknown status %q", e.Status)
	}

	ref := l.NewID()
	at := e.RecordedAt
	if at.IsZero() {
		at = l.Now()
	}

	_, err = l.DB.ExecContext(ctx, `
	INSERT INTO delivery_status (transaction_ref, request_id, stop_id, status, recorded_at)
	VALUES ($1, $2, $3, $4, $5);
	`, ref, e.RequestID, e.StopID, string(e.Status), at.UTC())
	if err != nil {
		return "", fmt.Errorf("record status %s/%s: %w", e.RequestID, e.StopID, err)
	}

	return ref, nil
}

func (l *SQLStatusLedger) ListStatuses(ctx context.Context, requestID string) (_ []domain.StatusEntry, err error) {
	defer obs.Time(ctx, "ledger.ListStatuses")(&err)

	if l.DB == nil {
		return nil, errors.New("status ledger: DB is nil")
	}

	rows, err := l.DB.QueryContext(ctx, `
	SELECT transaction_ref, stop_id, status, recorded_at
	FROM delivery_status
	WHERE request_id = $1
	ORDER BY recorded_at, id;
	`, requestID)
	if err != nil {
		return nil, fmt.Errorf("list statuses %q: %w", requestID, err)
	}
	defer rows.Close()

	out := make([]domain.StatusEntry, 0, 16)
	for rows.Next() {
		var ref, stopID, status string
		var at time.Time
		if err := rows.Scan(&ref, &stopID, &status, &at); err != nil {
			return nil, fmt.Errorf("list statuses %q: scan row: %w", requestID, err)
		}
		out = append(out, domain.StatusEntry{
			RequestID:      requestID,
			StopID:         stopID,
			Status:         domain.DeliveryStatus(status),
			RecordedAt:     at,
			TransactionRef: ref,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list statuses %q: row iteration: %w", requestID, err)
	}

	return out, nil
}
