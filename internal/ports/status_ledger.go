package ports

import (
	"context"
	"dynamic-route-service/internal/domain"
)

// Port: an append-only sink for delivery status transitions.
type StatusLedger interface {
	// Record one entry and return the ledger's opaque transaction reference.
	RecordStatus(ctx context.Context, entry domain.StatusEntry) (string, error)
	// List entries for a solved request, oldest first.
	ListStatuses(ctx context.Context, requestID string) ([]domain.StatusEntry, error)
}
