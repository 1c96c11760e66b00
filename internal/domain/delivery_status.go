package domain

import "time"

// Delivery state of a stop, as recorded on the status ledger.
type DeliveryStatus string

const (
	StatusPending        DeliveryStatus = "Pending"
	StatusInTransit      DeliveryStatus = "In Transit"
	StatusDelivered      DeliveryStatus = "Delivered"
	StatusFailedNoAnswer DeliveryStatus = "Failed - Customer Absent"
)

// Valid reports whether s is one of the known delivery statuses.
func (s DeliveryStatus) Valid() bool {
	switch s {
	case StatusPending, StatusInTransit, StatusDelivered, StatusFailedNoAnswer:
		return true
	}
	return false
}

// Represents one status transition for a stop of a solved plan.
// TransactionRef is assigned by the ledger when the entry is recorded.
type StatusEntry struct {
	RequestID      string
	StopID         string
	Status         DeliveryStatus
	RecordedAt     time.Time
	TransactionRef string
}
