package services

import (
	"context"
	"dynamic-route-service/internal/domain"
	"fmt"
	"time"
)

// DefaultAverageSpeedKmh is the planning speed of a delivery scooter in city traffic.
const DefaultAverageSpeedKmh = 20.0

// RouteConstructor builds multi-vehicle routes with a greedy cheapest-arc heuristic.
type RouteConstructor struct {
	AverageSpeedKmh float64
	Now             func() time.Time
}

func NewRouteConstructor(averageSpeedKmh float64) *RouteConstructor {
	if averageSpeedKmh <= 0 {
		averageSpeedKmh = DefaultAverageSpeedKmh
	}
	return &RouteConstructor{AverageSpeedKmh: averageSpeedKmh, Now: time.Now}
}

// Solve assigns every non-depot stop to exactly one vehicle and orders the visits.
//
// Each step evaluates the arc from every vehicle's current position to every
// unvisited stop and extends the single globally cheapest one. There is no
// improvement phase. Ties go to the lowest vehicle index, then the lowest stop
// index, so route structure depends only on the arc costs.
func (rc *RouteConstructor) Solve(
	ctx context.Context,
	problem *domain.RoutingProblem,
	costModel *CostModel,
) (*domain.Solution, error) {
	if problem == nil || problem.Len() < 2 {
		return nil, &domain.SolveError{Kind: domain.ErrEmptyProblem, Detail: "need a depot and at least one stop"}
	}
	if costModel == nil || costModel.Size() != problem.Len() {
		return nil, fmt.Errorf("solve: cost model does not match problem with %d stops", problem.Len())
	}

	n := problem.Len()
	depot := problem.DepotIndex()

	vehicles := make([]*domain.Vehicle, problem.VehicleCount())
	for i := range vehicles {
		vehicles[i] = domain.NewVehicle(i+1, depot)
	}

	visited := make([]bool, n)
	visited[depot] = true
	remaining := n - 1

	for remaining > 0 {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("solve: %d stops left unassigned: %w", remaining, err)
		}

		bestVehicle := -1
		bestStop := -1
		bestCost := InfeasibleArcCost

		// Strict comparison in ascending order implements the tie-break.
		for vi, v := range vehicles {
			from := v.Current()
			for to := 0; to < n; to++ {
				if visited[to] {
					continue
				}
				cost := costModel.AdjustedCost(from, to)
				if cost < bestCost {
					bestCost = cost
					bestVehicle = vi
					bestStop = to
				}
			}
		}

		if bestVehicle < 0 {
			return nil, &domain.SolveError{
				Kind:   domain.ErrNoFeasibleArc,
				Detail: fmt.Sprintf("%d stops unreachable from every vehicle", remaining),
			}
		}

		if err := vehicles[bestVehicle].Visit(bestStop); err != nil {
			return nil, fmt.Errorf("solve: %w", err)
		}
		visited[bestStop] = true
		remaining--
	}

	for _, v := range vehicles {
		v.Close()
	}

	solution := ExtractSolution(problem, costModel, vehicles, ExtractOptions{
		AverageSpeedKmh: rc.AverageSpeedKmh,
	})
	if rc.Now != nil {
		solution.SolvedAt = rc.Now()
	}

	return solution, nil
}
