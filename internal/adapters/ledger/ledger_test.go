package ledger

import (
	"context"
	"database/sql"
	"dynamic-route-service/internal/domain"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

// The ledger queries only use portable SQL, so SQLite stands in for Postgres here.
func newSqliteLedger(t *testing.T) *SQLStatusLedger {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
	CREATE TABLE delivery_status (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		transaction_ref TEXT NOT NULL UNIQUE,
		request_id TEXT NOT NULL,
		stop_id TEXT NOT NULL,
		status TEXT NOT NULL,
		recorded_at TIMESTAMP NOT NULL
	);`)
	require.NoError(t, err)

	l := NewSQLStatusLedger(db)
	n := 0
	l.NewID = func() string { n++; return fmt.Sprintf("tx-%d", n) }
	return l
}

func TestSQLStatusLedgerRecordAndList(t *testing.T) {
	l := newSqliteLedger(t)
	ctx := context.Background()
	base := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

	ref, err := l.RecordStatus(ctx, domain.StatusEntry{
		RequestID: "r1", StopID: "A", Status: domain.StatusInTransit, RecordedAt: base,
	})
	require.NoError(t, err)
	require.Equal(t, "tx-1", ref)

	_, err = l.RecordStatus(ctx, domain.StatusEntry{
		RequestID: "r1", StopID: "A", Status: domain.StatusDelivered, RecordedAt: base.Add(time.Minute),
	})
	require.NoError(t, err)

	_, err = l.RecordStatus(ctx, domain.StatusEntry{
		RequestID: "r2", StopID: "B", Status: domain.StatusPending, RecordedAt: base,
	})
	require.NoError(t, err)

	got, err := l.ListStatuses(ctx, "r1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, domain.StatusInTransit, got[0].Status)
	require.Equal(t, domain.StatusDelivered, got[1].Status)
	require.Equal(t, "tx-2", got[1].TransactionRef)
	require.True(t, got[1].RecordedAt.Equal(base.Add(time.Minute)))
}

func TestSQLStatusLedgerRejectsUnknownStatus(t *testing.T) {
	l := newSqliteLedger(t)

	_, err := l.RecordStatus(context.Background(), domain.StatusEntry{
		RequestID: "r1", StopID: "A", Status: "Lost",
	})
	require.Error(t, err)
}

func TestMemoryStatusLedger(t *testing.T) {
	l := NewMemoryStatusLedger()
	ctx := context.Background()

	ref, err := l.RecordStatus(ctx, domain.StatusEntry{RequestID: "r1", StopID: "A", Status: domain.StatusFailedNoAnswer})
	require.NoError(t, err)
	require.NotEmpty(t, ref)

	got, err := l.ListStatuses(ctx, "r1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, ref, got[0].TransactionRef)
	require.False(t, got[0].RecordedAt.IsZero())

	_, err = l.RecordStatus(ctx, domain.StatusEntry{RequestID: "r1", StopID: "A", Status: "Lost"})
	require.Error(t, err)
}
