package services

import (
	"context"
	"dynamic-route-service/internal/domain"
	"dynamic-route-service/internal/platform/obs"
	"dynamic-route-service/internal/ports"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

var (
	ErrMissingMatrix  = errors.New("no distance matrix and no matrix provider")
	ErrUnknownStop    = errors.New("stop is not part of the solution")
	ErrUnknownStatus  = errors.New("unknown delivery status")
	ErrLedger         = errors.New("status ledger unavailable")
	ErrBatchTooLarge  = errors.New("batch exceeds the configured maximum")
	ErrNoStatusLedger = errors.New("no status ledger configured")
)

// Metrics receives planner outcomes. *metrics.Collector satisfies it.
type Metrics interface {
	SolveObserve(outcome string, stops int, d time.Duration)
	WeatherObserve(condition string)
	StatusObserve(status string)
}

type PlannerConfig struct {
	AverageSpeedKmh float64
	JamProbability  float64
	RainProbability float64
	Region          string

	// Each solve runs under BudgetBase + V·N²·BudgetPerArc.
	BudgetBase   time.Duration
	BudgetPerArc time.Duration

	MaxBatchSize     int
	BatchConcurrency int
}

func DefaultPlannerConfig() PlannerConfig {
	return PlannerConfig{
		AverageSpeedKmh:  DefaultAverageSpeedKmh,
		JamProbability:   DefaultJamProbability,
		RainProbability:  DefaultRainProbability,
		BudgetBase:       2 * time.Second,
		BudgetPerArc:     50 * time.Nanosecond,
		MaxBatchSize:     32,
		BatchConcurrency: 4,
	}
}

// PlanRequest is one routing job. Matrix may be nil when a MatrixProvider is set.
type PlanRequest struct {
	RequestID    string
	Stops        []domain.Stop
	Matrix       [][]float64
	VehicleCount int
	DepotIndex   int

	// Optional overrides.
	Region         string
	Weather        *domain.Weather
	Seed           *uint64
	JamProbability *float64
}

// Planner resolves external inputs for a solve, runs the route constructor and
// hands the result to storage and downstream consumers.
// All dependencies except the constructor config are optional.
type Planner struct {
	Weather  ports.WeatherProvider
	Matrices ports.MatrixProvider
	Store    ports.SolutionStore
	Events   ports.EventPublisher
	Ledger   ports.StatusLedger
	Metrics  Metrics

	Config PlannerConfig
	NewID  func() string
	Now    func() time.Time
}

func NewPlanner(cfg PlannerConfig) *Planner {
	return &Planner{Config: cfg, NewID: uuid.NewString, Now: time.Now}
}

// Budget returns the wall-clock allowance for a problem of n stops and v vehicles.
func (p *Planner) Budget(n, v int) time.Duration {
	return p.Config.BudgetBase + time.Duration(v*n*n)*p.Config.BudgetPerArc
}

func (p *Planner) Plan(ctx context.Context, req PlanRequest) (_ *domain.Solution, err error) {
	if req.RequestID == "" {
		req.RequestID = p.newID()
	}
	ctx = obs.WithRequestID(ctx, req.RequestID)
	defer obs.Time(ctx, "planner.Plan")(&err)

	start := time.Now()
	sol, err := p.plan(ctx, req)
	if p.Metrics != nil {
		p.Metrics.SolveObserve(outcome(err), len(req.Stops), time.Since(start))
	}
	return sol, err
}

func (p *Planner) plan(ctx context.Context, req PlanRequest) (*domain.Solution, error) {
	matrix := req.Matrix
	if matrix == nil {
		if p.Matrices == nil {
			return nil, fmt.Errorf("plan %s: %w", req.RequestID, ErrMissingMatrix)
		}
		m, err := p.Matrices.BuildMatrix(ctx, req.Stops)
		if err != nil {
			return nil, fmt.Errorf("plan %s: build matrix: %w", req.RequestID, err)
		}
		matrix = m
	}

	problem, err := domain.NewRoutingProblem(req.Stops, matrix, req.VehicleCount, req.DepotIndex)
	if err != nil {
		return nil, err
	}

	seed := SeedFromRequestID(req.RequestID)
	if req.Seed != nil {
		seed = *req.Seed
	}
	rng := NewRand(seed)

	weather := p.resolveWeather(ctx, req, rng)
	if p.Metrics != nil {
		p.Metrics.WeatherObserve(string(weather.Condition))
	}

	jam := p.Config.JamProbability
	if req.JamProbability != nil {
		jam = *req.JamProbability
	}

	costModel, err := NewCostModel(problem, SampleConditions(rng, problem.Len(), weather, jam))
	if err != nil {
		return nil, fmt.Errorf("plan %s: %w", req.RequestID, err)
	}

	solveCtx, cancel := context.WithTimeout(ctx, p.Budget(problem.Len(), problem.VehicleCount()))
	defer cancel()

	rc := NewRouteConstructor(p.Config.AverageSpeedKmh)
	if p.Now != nil {
		rc.Now = p.Now
	}
	sol, err := rc.Solve(solveCtx, problem, costModel)
	if err != nil {
		return nil, fmt.Errorf("plan %s: %w", req.RequestID, err)
	}
	sol.RequestID = req.RequestID

	if p.Store != nil {
		if err := p.Store.Save(ctx, sol); err != nil {
			return nil, fmt.Errorf("plan %s: %w", req.RequestID, err)
		}
	}

	if p.Events != nil {
		if err := p.Events.PublishSolution(ctx, sol); err != nil {
			log.Warn().Err(err).Str("req_id", req.RequestID).Msg("publish solution failed")
		}
	}

	return sol, nil
}

// resolveWeather applies the request override, then the live provider, then a
// seeded draw. The provider is consulted once per solve, never per arc.
func (p *Planner) resolveWeather(ctx context.Context, req PlanRequest, rng *rand.Rand) domain.Weather {
	if req.Weather != nil {
		return *req.Weather
	}

	if p.Weather != nil {
		region := req.Region
		if region == "" {
			region = p.Config.Region
		}
		w, err := p.Weather.CurrentWeather(ctx, region)
		if err == nil {
			return w
		}
		log.Warn().Err(err).Str("region", region).Msg("weather lookup failed, assuming sunny")
		return domain.DefaultWeather()
	}

	return SampleWeather(rng, p.Config.RainProbability)
}

// BatchResult pairs a request's solution with its error. Exactly one is set.
type BatchResult struct {
	RequestID string
	Solution  *domain.Solution
	Err       error
}

// SolveBatch solves every request independently with bounded concurrency.
// Results are returned in request order; one failing request does not cancel the others.
func (p *Planner) SolveBatch(ctx context.Context, reqs []PlanRequest) ([]BatchResult, error) {
	if limit := p.Config.MaxBatchSize; limit > 0 && len(reqs) > limit {
		return nil, fmt.Errorf("solve batch of %d: %w (%d)", len(reqs), ErrBatchTooLarge, limit)
	}

	results := make([]BatchResult, len(reqs))

	g, gctx := errgroup.WithContext(ctx)
	limit := p.Config.BatchConcurrency
	if limit < 1 {
		limit = 1
	}
	g.SetLimit(limit)

	for i := range reqs {
		req := reqs[i]
		if req.RequestID == "" {
			req.RequestID = p.newID()
		}
		g.Go(func() error {
			sol, err := p.Plan(gctx, req)
			results[i] = BatchResult{RequestID: req.RequestID, Solution: sol, Err: err}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, ctx.Err()
}

// Solution returns a stored plan.
func (p *Planner) Solution(ctx context.Context, requestID string) (*domain.Solution, error) {
	if p.Store == nil {
		return nil, fmt.Errorf("get solution %q: %w", requestID, ports.ErrSolutionNotFound)
	}
	return p.Store.Get(ctx, requestID)
}

// RecordStatus appends a delivery status for a stop of a stored plan.
func (p *Planner) RecordStatus(
	ctx context.Context,
	requestID string,
	stopID string,
	status domain.DeliveryStatus,
) (_ domain.StatusEntry, err error) {
	ctx = obs.WithRequestID(ctx, requestID)
	defer obs.Time(ctx, "planner.RecordStatus")(&err)

	if p.Ledger == nil {
		return domain.StatusEntry{}, ErrNoStatusLedger
	}
	if !status.Valid() {
		return domain.StatusEntry{}, fmt.Errorf("record status %q: %w", status, ErrUnknownStatus)
	}

	sol, err := p.Solution(ctx, requestID)
	if err != nil {
		return domain.StatusEntry{}, fmt.Errorf("record status: %w", err)
	}
	if !sol.HasStop(stopID) {
		return domain.StatusEntry{}, fmt.Errorf("record status for %q: %w", stopID, ErrUnknownStop)
	}

	entry := domain.StatusEntry{
		RequestID:  requestID,
		StopID:     stopID,
		Status:     status,
		RecordedAt: p.now(),
	}
	ref, err := p.Ledger.RecordStatus(ctx, entry)
	if err != nil {
		return domain.StatusEntry{}, fmt.Errorf("record status: %w: %w", ErrLedger, err)
	}
	entry.TransactionRef = ref

	if p.Metrics != nil {
		p.Metrics.StatusObserve(string(status))
	}
	if p.Events != nil {
		if err := p.Events.PublishStatus(ctx, entry); err != nil {
			log.Warn().Err(err).Str("req_id", requestID).Msg("publish status failed")
		}
	}

	return entry, nil
}

// Statuses lists the ledger entries of a stored plan.
func (p *Planner) Statuses(ctx context.Context, requestID string) ([]domain.StatusEntry, error) {
	if p.Ledger == nil {
		return nil, ErrNoStatusLedger
	}
	if _, err := p.Solution(ctx, requestID); err != nil {
		return nil, fmt.Errorf("list statuses: %w", err)
	}
	entries, err := p.Ledger.ListStatuses(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("list statuses: %w: %w", ErrLedger, err)
	}
	return entries, nil
}

func (p *Planner) newID() string {
	if p.NewID != nil {
		return p.NewID()
	}
	return uuid.NewString()
}

func (p *Planner) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, context.DeadlineExceeded):
		return "budget_exceeded"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case domain.IsValidation(err):
		return "validation"
	default:
		return domain.ErrorKind(err)
	}
}
