package services

import (
	"dynamic-route-service/internal/domain"
	"errors"
	"fmt"
	"math"
)

// CostScale converts adjusted kilometres into integral cost units (metres).
const CostScale = 1000.0

// MinArcCost is the floor applied to every arc so the search graph has no zero-cost cycles.
const MinArcCost int64 = 1

// MaxArcCost is the ceiling for arcs whose adjusted cost does not fit the cost unit.
// Such arcs stay selectable; they only lose every comparison against a shorter arc.
const MaxArcCost int64 = math.MaxInt64 - 1

// InfeasibleArcCost is the constructor's starting bound. AdjustedCost never returns it,
// so every unvisited stop is always selectable.
const InfeasibleArcCost int64 = math.MaxInt64

// CostModel prices arcs of one RoutingProblem under one Conditions snapshot.
// It is a pure function of state fixed at construction time.
type CostModel struct {
	problem    *domain.RoutingProblem
	conditions *Conditions
}

func NewCostModel(problem *domain.RoutingProblem, conditions *Conditions) (*CostModel, error) {
	if problem == nil {
		return nil, errors.New("new cost model: problem must be non-nil")
	}
	if conditions == nil {
		return nil, errors.New("new cost model: conditions must be non-nil")
	}
	if conditions.Size() != problem.Len() {
		return nil, fmt.Errorf(
			"new cost model: conditions cover %d stops, problem has %d",
			conditions.Size(), problem.Len(),
		)
	}
	return &CostModel{problem: problem, conditions: conditions}, nil
}

// Size returns the number of stops the model prices.
func (c *CostModel) Size() int { return c.problem.Len() }

func (c *CostModel) Weather() domain.Weather { return c.conditions.Weather() }

func (c *CostModel) Traffic(from, to int) (float64, domain.TrafficStatus) {
	return c.conditions.Traffic(from, to)
}

// AdjustedCost returns the integral search cost of the arc from -> to.
//
// Degenerate arcs (base <= 0, including self-arcs) cost MinArcCost. Otherwise the
// cost is base × traffic × weather × CostScale truncated toward zero, clamped to
// [MinArcCost, MaxArcCost].
func (c *CostModel) AdjustedCost(from, to int) int64 {
	base := c.problem.BaseDistance(from, to)
	if base <= 0 {
		return MinArcCost
	}

	traffic, _ := c.conditions.Traffic(from, to)
	adjusted := base * traffic * c.conditions.Weather().Multiplier * CostScale
	if adjusted >= float64(MaxArcCost) {
		return MaxArcCost
	}

	cost := int64(math.Trunc(adjusted))
	if cost < MinArcCost {
		return MinArcCost
	}
	return cost
}

// AdjustedDistance returns the traffic-adjusted distance of the arc in kilometres.
// Weather changes travel time, not distance, so it is not applied here.
// The result saturates at math.MaxFloat64 instead of overflowing to +Inf.
func (c *CostModel) AdjustedDistance(from, to int) float64 {
	base := c.problem.BaseDistance(from, to)
	if base <= 0 {
		return 0
	}
	traffic, _ := c.conditions.Traffic(from, to)
	return saturate(base * traffic)
}

// saturate caps an overflowed non-negative quantity at the largest finite float64.
func saturate(v float64) float64 {
	if math.IsInf(v, 1) {
		return math.MaxFloat64
	}
	return v
}
