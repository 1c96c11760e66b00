package ports

import (
	"context"
	"dynamic-route-service/internal/domain"
	"errors"
)

var ErrSolutionNotFound = errors.New("solution not found")

// Port: request-scoped storage of solved plans so later requests can address them
// without re-solving.
type SolutionStore interface {
	Save(ctx context.Context, s *domain.Solution) error
	// Get returns ErrSolutionNotFound when no solution is stored under requestID.
	Get(ctx context.Context, requestID string) (*domain.Solution, error)
}
