package services

import (
	"context"
	"dynamic-route-service/internal/domain"
	"dynamic-route-service/internal/ports"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type memStore struct {
	mu sync.Mutex
	m  map[string]*domain.Solution
}

func (s *memStore) Save(ctx context.Context, sol *domain.Solution) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.m == nil {
		s.m = map[string]*domain.Solution{}
	}
	s.m[sol.RequestID] = sol
	return nil
}

func (s *memStore) Get(ctx context.Context, id string) (*domain.Solution, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sol, ok := s.m[id]
	if !ok {
		return nil, ports.ErrSolutionNotFound
	}
	return sol, nil
}

type recordingEvents struct {
	mu       sync.Mutex
	solved   []string
	statuses []domain.StatusEntry
	err      error
}

func (e *recordingEvents) PublishSolution(ctx context.Context, s *domain.Solution) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.solved = append(e.solved, s.RequestID)
	return e.err
}

func (e *recordingEvents) PublishStatus(ctx context.Context, s domain.StatusEntry) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.statuses = append(e.statuses, s)
	return e.err
}

type fakeLedger struct {
	entries []domain.StatusEntry
	err     error
}

func (l *fakeLedger) RecordStatus(ctx context.Context, e domain.StatusEntry) (string, error) {
	if l.err != nil {
		return "", l.err
	}
	l.entries = append(l.entries, e)
	return fmt.Sprintf("tx-%d", len(l.entries)), nil
}

func (l *fakeLedger) ListStatuses(ctx context.Context, requestID string) ([]domain.StatusEntry, error) {
	if l.err != nil {
		return nil, l.err
	}
	return l.entries, nil
}

type fakeWeather struct {
	w     domain.Weather
	err   error
	calls int
}

func (f *fakeWeather) CurrentWeather(ctx context.Context, region string) (domain.Weather, error) {
	f.calls++
	return f.w, f.err
}

type fakeMatrices struct{ m [][]float64 }

func (f fakeMatrices) BuildMatrix(ctx context.Context, stops []domain.Stop) ([][]float64, error) {
	return f.m, nil
}

type countingMetrics struct {
	mu       sync.Mutex
	outcomes []string
	weather  []string
	statuses []string
}

func (m *countingMetrics) SolveObserve(outcome string, stops int, d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outcomes = append(m.outcomes, outcome)
}

func (m *countingMetrics) WeatherObserve(c string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.weather = append(m.weather, c)
}

func (m *countingMetrics) StatusObserve(s string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statuses = append(m.statuses, s)
}

var (
	threeStops  = namedStops("Depot", "A", "B")
	threeMatrix = [][]float64{{0, 2, 5}, {2, 0, 3}, {5, 3, 0}}
	noJam       = 0.0
)

func testPlanner() *Planner {
	p := NewPlanner(DefaultPlannerConfig())
	p.Now = func() time.Time { return time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC) }
	return p
}

func TestPlanEndToEnd(t *testing.T) {
	p := testPlanner()
	store := &memStore{}
	events := &recordingEvents{}
	metrics := &countingMetrics{}
	p.Store, p.Events, p.Metrics = store, events, metrics

	sol, err := p.Plan(context.Background(), PlanRequest{
		RequestID:      "r1",
		Stops:          threeStops,
		Matrix:         threeMatrix,
		VehicleCount:   1,
		JamProbability: &noJam,
	})
	require.NoError(t, err)
	require.Equal(t, "r1", sol.RequestID)
	require.Equal(t, []int{0, 1, 2, 0}, sol.Routes[0].Sequence())
	require.InDelta(t, 10.0, sol.TotalDistanceKm, 1e-9)

	stored, err := store.Get(context.Background(), "r1")
	require.NoError(t, err)
	require.Same(t, sol, stored)
	require.Equal(t, []string{"r1"}, events.solved)
	require.Equal(t, []string{"ok"}, metrics.outcomes)
	require.Equal(t, []string{"Sunny"}, metrics.weather)
}

func TestPlanAssignsRequestID(t *testing.T) {
	p := testPlanner()
	p.NewID = func() string { return "generated" }

	sol, err := p.Plan(context.Background(), PlanRequest{Stops: threeStops, Matrix: threeMatrix, VehicleCount: 1})
	require.NoError(t, err)
	require.Equal(t, "generated", sol.RequestID)
}

func TestPlanWeatherResolution(t *testing.T) {
	rainy := domain.Weather{Condition: domain.WeatherRainy, Multiplier: domain.RainyMultiplier}

	t.Run("override wins over provider", func(t *testing.T) {
		p := testPlanner()
		fw := &fakeWeather{w: domain.DefaultWeather()}
		p.Weather = fw

		sol, err := p.Plan(context.Background(), PlanRequest{
			Stops: threeStops, Matrix: threeMatrix, VehicleCount: 1, Weather: &rainy, JamProbability: &noJam,
		})
		require.NoError(t, err)
		require.Equal(t, rainy, sol.Weather)
		require.Zero(t, fw.calls)
		// 10 km at 20 km/h in the rain.
		require.InDelta(t, 36.0, sol.Routes[0].DurationMinutes, 1e-9)
	})

	t.Run("provider", func(t *testing.T) {
		p := testPlanner()
		p.Weather = &fakeWeather{w: rainy}

		sol, err := p.Plan(context.Background(), PlanRequest{Stops: threeStops, Matrix: threeMatrix, VehicleCount: 1})
		require.NoError(t, err)
		require.Equal(t, rainy, sol.Weather)
	})

	t.Run("provider failure falls back to sunny", func(t *testing.T) {
		p := testPlanner()
		p.Weather = &fakeWeather{err: errors.New("down")}

		sol, err := p.Plan(context.Background(), PlanRequest{Stops: threeStops, Matrix: threeMatrix, VehicleCount: 1})
		require.NoError(t, err)
		require.Equal(t, domain.DefaultWeather(), sol.Weather)
	})

	t.Run("sampled without provider", func(t *testing.T) {
		p := testPlanner()
		p.Config.RainProbability = 1

		sol, err := p.Plan(context.Background(), PlanRequest{Stops: threeStops, Matrix: threeMatrix, VehicleCount: 1})
		require.NoError(t, err)
		require.Equal(t, rainy, sol.Weather)
	})
}

func TestPlanIsReproducibleForSameRequestID(t *testing.T) {
	p := testPlanner()
	prob := gridProblem(t, 10, 3)
	req := PlanRequest{RequestID: "same", Stops: prob.Stops(), Matrix: prob.Matrix().Rows(), VehicleCount: 3}

	a, err := p.Plan(context.Background(), req)
	require.NoError(t, err)
	b, err := p.Plan(context.Background(), req)
	require.NoError(t, err)

	require.Equal(t, a.Routes, b.Routes)
}

func TestPlanBuildsMatrixWhenMissing(t *testing.T) {
	p := testPlanner()
	p.Matrices = fakeMatrices{m: threeMatrix}

	sol, err := p.Plan(context.Background(), PlanRequest{Stops: threeStops, VehicleCount: 1, JamProbability: &noJam})
	require.NoError(t, err)
	require.InDelta(t, 10.0, sol.TotalDistanceKm, 1e-9)
}

func TestPlanErrors(t *testing.T) {
	p := testPlanner()
	metrics := &countingMetrics{}
	p.Metrics = metrics

	_, err := p.Plan(context.Background(), PlanRequest{Stops: threeStops, VehicleCount: 1})
	require.ErrorIs(t, err, ErrMissingMatrix)

	_, err = p.Plan(context.Background(), PlanRequest{Stops: threeStops, Matrix: threeMatrix, VehicleCount: 3})
	require.ErrorIs(t, err, domain.ErrVehicleCountOutOfRange)
	require.True(t, domain.IsValidation(err))

	require.Equal(t, []string{"internal", "validation"}, metrics.outcomes)
}

func TestPlanPublishFailureIsNotFatal(t *testing.T) {
	p := testPlanner()
	p.Events = &recordingEvents{err: errors.New("nats down")}

	_, err := p.Plan(context.Background(), PlanRequest{Stops: threeStops, Matrix: threeMatrix, VehicleCount: 1})
	require.NoError(t, err)
}

func TestPlanBudget(t *testing.T) {
	p := testPlanner()
	p.Config.BudgetBase = time.Second
	p.Config.BudgetPerArc = time.Microsecond

	require.Equal(t, time.Second+200*time.Microsecond, p.Budget(10, 2))
}

func TestSolveBatch(t *testing.T) {
	p := testPlanner()
	p.Store = &memStore{}

	reqs := []PlanRequest{
		{RequestID: "a", Stops: threeStops, Matrix: threeMatrix, VehicleCount: 1},
		{RequestID: "bad", Stops: threeStops, Matrix: threeMatrix, VehicleCount: 5},
		{RequestID: "c", Stops: threeStops, Matrix: threeMatrix, VehicleCount: 2},
	}

	results, err := p.SolveBatch(context.Background(), reqs)
	require.NoError(t, err)
	require.Len(t, results, 3)

	require.Equal(t, "a", results[0].RequestID)
	require.NoError(t, results[0].Err)
	require.NotNil(t, results[0].Solution)

	require.Equal(t, "bad", results[1].RequestID)
	require.ErrorIs(t, results[1].Err, domain.ErrVehicleCountOutOfRange)
	require.Nil(t, results[1].Solution)

	require.Equal(t, "c", results[2].RequestID)
	require.Len(t, results[2].Solution.Routes, 2)
}

func TestSolveBatchTooLarge(t *testing.T) {
	p := testPlanner()
	p.Config.MaxBatchSize = 1

	_, err := p.SolveBatch(context.Background(), make([]PlanRequest, 2))
	require.ErrorIs(t, err, ErrBatchTooLarge)
}

func solvedPlanner(t *testing.T) (*Planner, *fakeLedger, *recordingEvents) {
	t.Helper()
	p := testPlanner()
	ledger := &fakeLedger{}
	events := &recordingEvents{}
	p.Store, p.Ledger, p.Events = &memStore{}, ledger, events

	_, err := p.Plan(context.Background(), PlanRequest{RequestID: "r1", Stops: threeStops, Matrix: threeMatrix, VehicleCount: 1})
	require.NoError(t, err)
	return p, ledger, events
}

func TestRecordStatus(t *testing.T) {
	p, ledger, events := solvedPlanner(t)

	entry, err := p.RecordStatus(context.Background(), "r1", "A", domain.StatusDelivered)
	require.NoError(t, err)
	require.Equal(t, "tx-1", entry.TransactionRef)
	require.Equal(t, domain.StatusDelivered, entry.Status)
	require.Len(t, ledger.entries, 1)
	require.Len(t, events.statuses, 1)

	list, err := p.Statuses(context.Background(), "r1")
	require.NoError(t, err)
	require.Len(t, list, 1)
}

func TestRecordStatusErrors(t *testing.T) {
	p, ledger, _ := solvedPlanner(t)
	ctx := context.Background()

	_, err := p.RecordStatus(ctx, "r1", "A", "Lost")
	require.ErrorIs(t, err, ErrUnknownStatus)

	_, err = p.RecordStatus(ctx, "r1", "Z", domain.StatusDelivered)
	require.ErrorIs(t, err, ErrUnknownStop)

	// The depot is on every route but is never delivered to.
	_, err = p.RecordStatus(ctx, "r1", "Depot", domain.StatusDelivered)
	require.ErrorIs(t, err, ErrUnknownStop)
	require.Empty(t, ledger.entries)

	_, err = p.RecordStatus(ctx, "missing", "A", domain.StatusDelivered)
	require.ErrorIs(t, err, ports.ErrSolutionNotFound)

	ledger.err = errors.New("connection refused")
	_, err = p.RecordStatus(ctx, "r1", "A", domain.StatusDelivered)
	require.ErrorIs(t, err, ErrLedger)

	p.Ledger = nil
	_, err = p.RecordStatus(ctx, "r1", "A", domain.StatusDelivered)
	require.ErrorIs(t, err, ErrNoStatusLedger)
}
