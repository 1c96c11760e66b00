package handlers

import (
	"context"
	"dynamic-route-service/internal/api/dto"
	"dynamic-route-service/internal/domain"
	"dynamic-route-service/internal/platform/obs"
	"dynamic-route-service/internal/services"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// RoutePlanner is the part of *services.Planner the HTTP layer depends on.
type RoutePlanner interface {
	Plan(ctx context.Context, req services.PlanRequest) (*domain.Solution, error)
	SolveBatch(ctx context.Context, reqs []services.PlanRequest) ([]services.BatchResult, error)
	Solution(ctx context.Context, requestID string) (*domain.Solution, error)
	RecordStatus(ctx context.Context, requestID, stopID string, status domain.DeliveryStatus) (domain.StatusEntry, error)
	Statuses(ctx context.Context, requestID string) ([]domain.StatusEntry, error)
}

type SolveHandler struct {
	Planner RoutePlanner
}

// Solve plans a single request. The body's request_id wins over the X-Request-ID header.
func (h *SolveHandler) Solve(w http.ResponseWriter, r *http.Request) {
	var req dto.SolveRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	planReq, err := toPlanRequest(req)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if planReq.RequestID == "" {
		planReq.RequestID = obs.RequestID(r.Context())
	}

	sol, err := h.Planner.Plan(r.Context(), planReq)
	if err != nil {
		writeFailure(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, toSolutionResponse(sol))
}

// Batch plans independent requests concurrently. Per-request failures are
// reported inline; the response is 200 unless the batch itself is rejected.
func (h *SolveHandler) Batch(w http.ResponseWriter, r *http.Request) {
	var req dto.BatchRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if len(req.Requests) == 0 {
		writeError(w, r, http.StatusBadRequest, "requests must not be empty")
		return
	}

	planReqs := make([]services.PlanRequest, 0, len(req.Requests))
	for i, item := range req.Requests {
		pr, err := toPlanRequest(item)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, fmt.Sprintf("requests[%d]: %v", i, err))
			return
		}
		planReqs = append(planReqs, pr)
	}

	results, err := h.Planner.SolveBatch(r.Context(), planReqs)
	if err != nil {
		writeFailure(w, r, err)
		return
	}

	res := dto.BatchResponse{Results: make([]dto.BatchItemResponse, 0, len(results))}
	for _, br := range results {
		item := dto.BatchItemResponse{RequestID: br.RequestID}
		if br.Err != nil {
			_, body := failure(br.Err)
			item.Error = &body
		} else {
			sr := toSolutionResponse(br.Solution)
			item.Solution = &sr
		}
		res.Results = append(res.Results, item)
	}

	writeJSON(w, r, http.StatusOK, res)
}

func (h *SolveHandler) Get(w http.ResponseWriter, r *http.Request) {
	sol, err := h.Planner.Solution(r.Context(), r.PathValue("id"))
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toSolutionResponse(sol))
}

func toPlanRequest(req dto.SolveRequest) (services.PlanRequest, error) {
	out := services.PlanRequest{
		RequestID:      strings.TrimSpace(req.RequestID),
		Stops:          make([]domain.Stop, 0, len(req.Stops)),
		Matrix:         req.Matrix,
		VehicleCount:   req.VehicleCount,
		DepotIndex:     req.DepotIndex,
		Region:         strings.TrimSpace(req.Region),
		Seed:           req.Seed,
		JamProbability: req.JamProbability,
	}

	if name := strings.TrimSpace(req.Weather); name != "" {
		w, ok := domain.ParseWeather(name)
		if !ok {
			return services.PlanRequest{}, fmt.Errorf("weather must be Sunny or Rainy, got %q", name)
		}
		out.Weather = &w
	}

	if p := req.JamProbability; p != nil && (*p < 0 || *p > 1) {
		return services.PlanRequest{}, errors.New("jam_probability must be between 0 and 1")
	}

	for _, s := range req.Stops {
		name := s.Name
		if name == "" {
			name = s.ID
		}
		out.Stops = append(out.Stops, domain.Stop{
			ID:          s.ID,
			Name:        name,
			Coordinates: domain.Coordinates{Lat: s.Lat, Lon: s.Lon},
		})
	}

	return out, nil
}

func toSolutionResponse(s *domain.Solution) dto.SolutionResponse {
	res := dto.SolutionResponse{
		RequestID:       s.RequestID,
		Success:         s.Success,
		Weather:         string(s.Weather.Condition),
		AverageSpeedKmh: s.AverageSpeedKmh,
		TotalDistanceKm: s.TotalDistanceKm,
		SolvedAt:        s.SolvedAt,
		Routes:          make([]dto.RouteResponse, 0, len(s.Routes)),
	}

	for _, rt := range s.Routes {
		visits := make([]dto.VisitResponse, 0, len(rt.Visits))
		for _, v := range rt.Visits {
			visits = append(visits, dto.VisitResponse{
				StopIndex:         v.StopIndex,
				StopID:            v.StopID,
				Name:              v.Name,
				Lat:               v.Coordinates.Lat,
				Lon:               v.Coordinates.Lon,
				SegmentDistanceKm: v.SegmentDistanceKm,
				Traffic:           string(v.Traffic),
				ElapsedMinutes:    v.ElapsedMinutes,
			})
		}

		res.Routes = append(res.Routes, dto.RouteResponse{
			VehicleID:       rt.VehicleID,
			Sequence:        rt.Sequence(),
			DistanceKm:      rt.DistanceKm,
			DurationMinutes: rt.DurationMinutes,
			Visits:          visits,
		})
	}

	return res
}
