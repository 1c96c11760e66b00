package services

import (
	"dynamic-route-service/internal/domain"
)

type ExtractOptions struct {
	AverageSpeedKmh float64
	RequestID       string
}

// ExtractSolution turns closed vehicle sequences into a Solution.
//
// Segment distances come from the cost model's memoized conditions, so every arc
// reports the same distance that was used while the routes were built. Elapsed
// time at each visit is the running sum of segmentKm / speed × 60 × weather.
// Sums saturate at math.MaxFloat64 so a solution always encodes as JSON.
func ExtractSolution(
	problem *domain.RoutingProblem,
	costModel *CostModel,
	vehicles []*domain.Vehicle,
	opts ExtractOptions,
) *domain.Solution {
	speed := opts.AverageSpeedKmh
	if speed <= 0 {
		speed = DefaultAverageSpeedKmh
	}

	weather := costModel.Weather()

	solution := &domain.Solution{
		RequestID:       opts.RequestID,
		Routes:          make([]domain.Route, 0, len(vehicles)),
		Weather:         weather,
		AverageSpeedKmh: speed,
	}

	if len(vehicles) == 0 {
		return solution
	}

	for _, v := range vehicles {
		route := domain.Route{
			VehicleID: v.VehicleID,
			Visits:    make([]domain.Visit, 0, len(v.Sequence)),
		}

		elapsed := 0.0
		for i, idx := range v.Sequence {
			stop := problem.Stop(idx)
			visit := domain.Visit{
				StopIndex:   idx,
				StopID:      stop.ID,
				Name:        stop.Name,
				Coordinates: stop.Coordinates,
			}

			if i > 0 {
				prev := v.Sequence[i-1]
				dist := costModel.AdjustedDistance(prev, idx)
				_, status := costModel.Traffic(prev, idx)

				elapsed = saturate(elapsed + saturate(dist/speed*60*weather.Multiplier))

				visit.SegmentDistanceKm = dist
				visit.Traffic = status
				route.DistanceKm = saturate(route.DistanceKm + dist)
			}
			visit.ElapsedMinutes = elapsed

			route.Visits = append(route.Visits, visit)
		}
		route.DurationMinutes = elapsed

		solution.TotalDistanceKm = saturate(solution.TotalDistanceKm + route.DistanceKm)
		solution.Routes = append(solution.Routes, route)
	}

	solution.Success = true
	return solution
}
