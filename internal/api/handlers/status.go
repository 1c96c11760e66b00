package handlers

import (
	"dynamic-route-service/internal/api/dto"
	"dynamic-route-service/internal/domain"
	"net/http"
	"strings"
)

// StatusHandler exposes the delivery status ledger of solved plans.
type StatusHandler struct {
	Planner RoutePlanner
}

func (h *StatusHandler) Record(w http.ResponseWriter, r *http.Request) {
	var req dto.StatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	stopID := strings.TrimSpace(req.StopID)
	if stopID == "" {
		writeError(w, r, http.StatusBadRequest, "stop_id is required")
		return
	}

	entry, err := h.Planner.RecordStatus(r.Context(), r.PathValue("id"), stopID, domain.DeliveryStatus(req.Status))
	if err != nil {
		writeFailure(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusCreated, toStatusResponse(entry))
}

func (h *StatusHandler) List(w http.ResponseWriter, r *http.Request) {
	entries, err := h.Planner.Statuses(r.Context(), r.PathValue("id"))
	if err != nil {
		writeFailure(w, r, err)
		return
	}

	res := dto.ListStatusResponse{Statuses: make([]dto.StatusResponse, 0, len(entries))}
	for _, e := range entries {
		res.Statuses = append(res.Statuses, toStatusResponse(e))
	}

	writeJSON(w, r, http.StatusOK, res)
}

func toStatusResponse(e domain.StatusEntry) dto.StatusResponse {
	return dto.StatusResponse{
		RequestID:      e.RequestID,
		StopID:         e.StopID,
		Status:         string(e.Status),
		RecordedAt:     e.RecordedAt,
		TransactionRef: e.TransactionRef,
	}
}
