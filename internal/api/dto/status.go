package dto

import "time"

type StatusRequest struct {
	StopID string `json:"stop_id"`
	Status string `json:"status"`
}

type StatusResponse struct {
	RequestID      string    `json:"request_id"`
	StopID         string    `json:"stop_id"`
	Status         string    `json:"status"`
	RecordedAt     time.Time `json:"recorded_at"`
	TransactionRef string    `json:"transaction_ref"`
}

type ListStatusResponse struct {
	Statuses []StatusResponse `json:"statuses"`
}
