package services

import (
	"context"
	"dynamic-route-service/internal/domain"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"slices"
	"testing"
	"time"
)

func mustProblem(t *testing.T, stops []domain.Stop, matrix [][]float64, vehicles, depot int) *domain.RoutingProblem {
	t.Helper()
	p, err := domain.NewRoutingProblem(stops, matrix, vehicles, depot)
	if err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}
	return p
}

func mustCostModel(t *testing.T, p *domain.RoutingProblem, c *Conditions) *CostModel {
	t.Helper()
	cm, err := NewCostModel(p, c)
	if err != nil {
		t.Fatalf("unexpected cost model error: %v", err)
	}
	return cm
}

func namedStops(names ...string) []domain.Stop {
	stops := make([]domain.Stop, len(names))
	for i, n := range names {
		stops[i] = domain.Stop{ID: n, Name: n}
	}
	return stops
}

// gridProblem builds n stops on a line with |i-j| km between them.
func gridProblem(t *testing.T, n, vehicles int) *domain.RoutingProblem {
	t.Helper()
	names := make([]string, n)
	matrix := make([][]float64, n)
	for i := range matrix {
		names[i] = fmt.Sprintf("S%d", i)
		matrix[i] = make([]float64, n)
		for j := range matrix[i] {
			d := i - j
			if d < 0 {
				d = -d
			}
			matrix[i][j] = float64(d)
		}
	}
	return mustProblem(t, namedStops(names...), matrix, vehicles, 0)
}

func TestRouteConstructorEndToEnd(t *testing.T) {
	p := mustProblem(t,
		namedStops("Depot", "A", "B"),
		[][]float64{{0, 2, 5}, {2, 0, 3}, {5, 3, 0}},
		1, 0,
	)
	cm := mustCostModel(t, p, FixedConditions(p.Len(), 1.0, domain.DefaultWeather()))

	sol, err := NewRouteConstructor(20).Solve(context.Background(), p, cm)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !sol.Success {
		t.Fatalf("expected success")
	}
	if len(sol.Routes) != 1 {
		t.Fatalf("expected 1 route, got %d", len(sol.Routes))
	}

	got := sol.Routes[0].Sequence()
	want := []int{0, 1, 2, 0}
	if !slices.Equal(got, want) {
		t.Fatalf("sequence = %v, want %v", got, want)
	}

	if sol.TotalDistanceKm != 10 {
		t.Fatalf("total distance = %v, want 10", sol.TotalDistanceKm)
	}
	if sol.Routes[0].Visits[1].StopID != "A" {
		t.Fatalf("expected first stop A, got %q", sol.Routes[0].Visits[1].StopID)
	}
}

func TestRouteConstructorSingleStop(t *testing.T) {
	p := mustProblem(t, namedStops("Depot", "A"), [][]float64{{0, 4}, {4, 0}}, 1, 0)
	cm := mustCostModel(t, p, FixedConditions(p.Len(), 1.0, domain.DefaultWeather()))

	sol, err := NewRouteConstructor(0).Solve(context.Background(), p, cm)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := sol.Routes[0].Sequence(); !slices.Equal(got, []int{0, 1, 0}) {
		t.Fatalf("sequence = %v, want [0 1 0]", got)
	}
	if sol.TotalDistanceKm != 8 {
		t.Fatalf("total distance = %v, want 8", sol.TotalDistanceKm)
	}
}

func TestRouteConstructorCoverageAndAnchoring(t *testing.T) {
	for _, vehicles := range []int{1, 2, 3, 5} {
		p := gridProblem(t, 9, vehicles)
		rng := NewRand(42)
		cm := mustCostModel(t, p, SampleConditions(rng, p.Len(), domain.DefaultWeather(), DefaultJamProbability))

		sol, err := NewRouteConstructor(DefaultAverageSpeedKmh).Solve(context.Background(), p, cm)
		if err != nil {
			t.Fatalf("vehicles=%d: unexpected error: %v", vehicles, err)
		}
		if len(sol.Routes) != vehicles {
			t.Fatalf("vehicles=%d: got %d routes", vehicles, len(sol.Routes))
		}

		seen := make(map[int]int)
		for _, r := range sol.Routes {
			seq := r.Sequence()
			if seq[0] != p.DepotIndex() || seq[len(seq)-1] != p.DepotIndex() {
				t.Fatalf("vehicles=%d: route %v not anchored at depot", vehicles, seq)
			}
			for _, idx := range seq[1 : len(seq)-1] {
				seen[idx]++
			}
		}

		for idx := 1; idx < p.Len(); idx++ {
			if seen[idx] != 1 {
				t.Fatalf("vehicles=%d: stop %d visited %d times", vehicles, idx, seen[idx])
			}
		}
		if _, ok := seen[p.DepotIndex()]; ok {
			t.Fatalf("vehicles=%d: depot visited mid-route", vehicles)
		}
	}
}

func TestRouteConstructorDeterministicStructure(t *testing.T) {
	p := gridProblem(t, 12, 3)
	cond := SampleConditions(NewRand(7), p.Len(), domain.DefaultWeather(), DefaultJamProbability)
	cm := mustCostModel(t, p, cond)
	rc := NewRouteConstructor(DefaultAverageSpeedKmh)

	first, err := rc.Solve(context.Background(), p, cm)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := rc.Solve(context.Background(), p, cm)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i := range first.Routes {
		if !slices.Equal(first.Routes[i].Sequence(), second.Routes[i].Sequence()) {
			t.Fatalf("route %d differs: %v vs %v", i, first.Routes[i].Sequence(), second.Routes[i].Sequence())
		}
	}
	if first.TotalDistanceKm != second.TotalDistanceKm {
		t.Fatalf("total distance differs: %v vs %v", first.TotalDistanceKm, second.TotalDistanceKm)
	}
}

func TestRouteConstructorTieBreak(t *testing.T) {
	// Every arc costs the same, so the lowest vehicle takes the lowest stop each step.
	matrix := [][]float64{
		{0, 1, 1, 1},
		{1, 0, 1, 1},
		{1, 1, 0, 1},
		{1, 1, 1, 0},
	}
	p := mustProblem(t, namedStops("D", "A", "B", "C"), matrix, 2, 0)
	cm := mustCostModel(t, p, FixedConditions(p.Len(), 1.0, domain.DefaultWeather()))

	sol, err := NewRouteConstructor(DefaultAverageSpeedKmh).Solve(context.Background(), p, cm)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := sol.Routes[0].Sequence(); !slices.Equal(got, []int{0, 1, 2, 3, 0}) {
		t.Fatalf("vehicle 1 sequence = %v, want [0 1 2 3 0]", got)
	}
	if got := sol.Routes[1].Sequence(); !slices.Equal(got, []int{0, 0}) {
		t.Fatalf("vehicle 2 sequence = %v, want [0 0]", got)
	}
	if sol.Routes[1].StopCount() != 0 || sol.Routes[1].DistanceKm != 0 {
		t.Fatalf("idle vehicle should have no stops and no distance, got %+v", sol.Routes[1])
	}
}

func TestRouteConstructorSplitsAcrossVehicles(t *testing.T) {
	// A and B sit on opposite sides of the depot and far from each other.
	matrix := [][]float64{
		{0, 2, 3},
		{2, 0, 9},
		{3, 9, 0},
	}
	p := mustProblem(t, namedStops("D", "A", "B"), matrix, 2, 0)
	cm := mustCostModel(t, p, FixedConditions(p.Len(), 1.0, domain.DefaultWeather()))

	sol, err := NewRouteConstructor(DefaultAverageSpeedKmh).Solve(context.Background(), p, cm)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := sol.Routes[0].Sequence(); !slices.Equal(got, []int{0, 1, 0}) {
		t.Fatalf("vehicle 1 sequence = %v, want [0 1 0]", got)
	}
	if got := sol.Routes[1].Sequence(); !slices.Equal(got, []int{0, 2, 0}) {
		t.Fatalf("vehicle 2 sequence = %v, want [0 2 0]", got)
	}
	if sol.TotalDistanceKm != 10 {
		t.Fatalf("total distance = %v, want 10", sol.TotalDistanceKm)
	}
}

func TestRouteConstructorNonZeroDepot(t *testing.T) {
	matrix := [][]float64{
		{0, 4, 1},
		{4, 0, 3},
		{1, 3, 0},
	}
	p := mustProblem(t, namedStops("A", "B", "D"), matrix, 1, 2)
	cm := mustCostModel(t, p, FixedConditions(p.Len(), 1.0, domain.DefaultWeather()))

	sol, err := NewRouteConstructor(DefaultAverageSpeedKmh).Solve(context.Background(), p, cm)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := sol.Routes[0].Sequence(); !slices.Equal(got, []int{2, 0, 1, 2}) {
		t.Fatalf("sequence = %v, want [2 0 1 2]", got)
	}
}

func TestRouteConstructorHugeDistancesCoverEveryStop(t *testing.T) {
	matrix := [][]float64{
		{0, 1, 1e16},
		{1, 0, 1e16},
		{1e16, 1e16, 0},
	}
	p := mustProblem(t, namedStops("D", "A", "B"), matrix, 1, 0)
	cm := mustCostModel(t, p, FixedConditions(p.Len(), 1.0, domain.DefaultWeather()))

	sol, err := NewRouteConstructor(DefaultAverageSpeedKmh).Solve(context.Background(), p, cm)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := sol.Routes[0].Sequence(); !slices.Equal(got, []int{0, 1, 2, 0}) {
		t.Fatalf("sequence = %v, want [0 1 2 0]", got)
	}
}

func TestRouteConstructorNearMaxFloatDistancesStayFinite(t *testing.T) {
	huge := 1e308
	matrix := [][]float64{
		{0, huge, huge},
		{huge, 0, huge},
		{huge, huge, 0},
	}
	p := mustProblem(t, namedStops("D", "A", "B"), matrix, 2, 0)
	cm := mustCostModel(t, p, FixedConditions(p.Len(), domain.JamTrafficMultiplier, rainy()))

	sol, err := NewRouteConstructor(DefaultAverageSpeedKmh).Solve(context.Background(), p, cm)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	served := 0
	for _, r := range sol.Routes {
		served += r.StopCount()
		if math.IsInf(r.DistanceKm, 0) || math.IsInf(r.DurationMinutes, 0) {
			t.Fatalf("route %d has non-finite totals: %v km, %v min", r.VehicleID, r.DistanceKm, r.DurationMinutes)
		}
	}
	if served != 2 {
		t.Fatalf("served = %d, want 2", served)
	}
	if math.IsInf(sol.TotalDistanceKm, 0) {
		t.Fatalf("total distance is not finite")
	}
	if _, err := json.Marshal(sol); err != nil {
		t.Fatalf("solution does not encode: %v", err)
	}
}

func TestRouteConstructorEmptyProblem(t *testing.T) {
	_, err := NewRouteConstructor(DefaultAverageSpeedKmh).Solve(context.Background(), nil, nil)
	if !errors.Is(err, domain.ErrEmptyProblem) {
		t.Fatalf("err = %v, want ErrEmptyProblem", err)
	}
}

func TestRouteConstructorMismatchedCostModel(t *testing.T) {
	p := gridProblem(t, 4, 1)
	other := gridProblem(t, 5, 1)
	cm := mustCostModel(t, other, FixedConditions(other.Len(), 1.0, domain.DefaultWeather()))

	if _, err := NewRouteConstructor(DefaultAverageSpeedKmh).Solve(context.Background(), p, cm); err == nil {
		t.Fatalf("expected error for mismatched cost model")
	}
}

func TestRouteConstructorCancelled(t *testing.T) {
	p := gridProblem(t, 6, 2)
	cm := mustCostModel(t, p, FixedConditions(p.Len(), 1.0, domain.DefaultWeather()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewRouteConstructor(DefaultAverageSpeedKmh).Solve(ctx, p, cm)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestRouteConstructorStampsSolvedAt(t *testing.T) {
	p := gridProblem(t, 3, 1)
	cm := mustCostModel(t, p, FixedConditions(p.Len(), 1.0, domain.DefaultWeather()))

	at := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	rc := NewRouteConstructor(DefaultAverageSpeedKmh)
	rc.Now = func() time.Time { return at }

	sol, err := rc.Solve(context.Background(), p, cm)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !sol.SolvedAt.Equal(at) {
		t.Fatalf("solved at = %v, want %v", sol.SolvedAt, at)
	}
}
