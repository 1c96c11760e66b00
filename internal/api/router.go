package api

import (
	"dynamic-route-service/internal/api/handlers"
	"net/http"

	"golang.org/x/time/rate"
)

type Options struct {
	// Metrics receives per-request observations; nil disables them.
	Metrics HTTPMetrics
	// MetricsHandler is mounted on GET /metrics when set.
	MetricsHandler http.Handler

	// Rate limit for the solve and status endpoints. RPS <= 0 disables it.
	RateLimitRPS   float64
	RateLimitBurst int
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(planner handlers.RoutePlanner, opts Options) http.Handler {
	mux := http.NewServeMux()

	solveHandler := &handlers.SolveHandler{Planner: planner}
	statusHandler := &handlers.StatusHandler{Planner: planner}

	var limiter *rate.Limiter
	if opts.RateLimitRPS > 0 {
		burst := opts.RateLimitBurst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimitRPS), burst)
	}
	limited := func(h http.HandlerFunc) http.Handler { return rateLimit(limiter, h) }

	mux.HandleFunc("GET /health", handlers.Health)
	mux.Handle("POST /solve", limited(solveHandler.Solve))
	mux.Handle("POST /solve/batch", limited(solveHandler.Batch))
	mux.Handle("GET /solutions/{id}", limited(solveHandler.Get))
	mux.Handle("POST /solutions/{id}/status", limited(statusHandler.Record))
	mux.Handle("GET /solutions/{id}/status", limited(statusHandler.List))
	if opts.MetricsHandler != nil {
		mux.Handle("GET /metrics", opts.MetricsHandler)
	}

	return requestIDMiddleware(loggingMiddleware(opts.Metrics, mux))
}
