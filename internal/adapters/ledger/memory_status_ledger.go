package ledger

import (
	"context"
	"dynamic-route-service/internal/domain"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStatusLedger keeps entries in process memory.
// The server uses it when no DATABASE_URL is configured.
type MemoryStatusLedger struct {
	mu      sync.Mutex
	entries map[string][]domain.StatusEntry
}

func NewMemoryStatusLedger() *MemoryStatusLedger {
	return &MemoryStatusLedger{entries: make(map[string][]domain.StatusEntry)}
}

func (l *MemoryStatusLedger) RecordStatus(ctx context.Context, e domain.StatusEntry) (string, error) {
	if !e.Status.Valid() {
		return "", fmt.Errorf("record status: unknown status %q", e.Status)
	}
	if e.RecordedAt.IsZero() {
		e.RecordedAt = time.Now()
	}
	e.TransactionRef = uuid.NewString()

	l.mu.Lock()
	l.entries[e.RequestID] = append(l.entries[e.RequestID], e)
	l.mu.Unlock()

	return e.TransactionRef, nil
}

func (l *MemoryStatusLedger) ListStatuses(ctx context.Context, requestID string) ([]domain.StatusEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]domain.StatusEntry(nil), l.entries[requestID]...), nil
}
