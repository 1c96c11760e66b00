package handlers

import (
	"context"
	"dynamic-route-service/internal/api/dto"
	"dynamic-route-service/internal/domain"
	"dynamic-route-service/internal/platform/obs"
	"dynamic-route-service/internal/ports"
	"dynamic-route-service/internal/services"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"
)

const maxBodyBytes = 8 << 20

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("encode failed")
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, dto.ErrorResponse{Error: msg})
}

// writeFailure maps a planner error onto an HTTP status and a stable error kind.
func writeFailure(w http.ResponseWriter, r *http.Request, err error) {
	status, body := failure(err)
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("req_id", obs.RequestID(r.Context())).Str("path", r.URL.Path).Msg("request failed")
	}
	writeJSON(w, r, status, body)
}

func failure(err error) (int, dto.ErrorResponse) {
	body := dto.ErrorResponse{Error: err.Error(), Kind: domain.ErrorKind(err)}

	switch {
	case domain.IsValidation(err),
		errors.Is(err, domain.ErrNoFeasibleArc),
		errors.Is(err, domain.ErrEmptyProblem):
		return http.StatusUnprocessableEntity, body
	case errors.Is(err, services.ErrMissingMatrix):
		body.Kind = "missing_matrix"
		return http.StatusUnprocessableEntity, body
	case errors.Is(err, services.ErrUnknownStatus):
		body.Kind = "unknown_status"
		return http.StatusUnprocessableEntity, body
	case errors.Is(err, ports.ErrSolutionNotFound):
		body.Kind = "solution_not_found"
		return http.StatusNotFound, body
	case errors.Is(err, services.ErrUnknownStop):
		body.Kind = "unknown_stop"
		return http.StatusNotFound, body
	case errors.Is(err, services.ErrBatchTooLarge):
		body.Kind = "batch_too_large"
		return http.StatusRequestEntityTooLarge, body
	case errors.Is(err, services.ErrLedger):
		body.Kind = "ledger_unavailable"
		return http.StatusBadGateway, body
	case errors.Is(err, services.ErrNoStatusLedger):
		body.Kind = "ledger_not_configured"
		return http.StatusServiceUnavailable, body
	case errors.Is(err, context.DeadlineExceeded):
		body.Kind = "budget_exceeded"
		return http.StatusGatewayTimeout, body
	case errors.Is(err, context.Canceled):
		body.Kind = "canceled"
		return http.StatusServiceUnavailable, body
	default:
		return http.StatusInternalServerError, dto.ErrorResponse{Error: "internal server error", Kind: "internal"}
	}
}

// decodeJSON reads exactly one JSON object into v and rejects unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return false
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, r, http.StatusBadRequest, "body must contain only one JSON object")
		return false
	}
	return true
}
