package ports

import (
	"context"
	"dynamic-route-service/internal/domain"
)

// Port: notification sink for downstream consumers (dashboards, rendering).
type EventPublisher interface {
	PublishSolution(ctx context.Context, s *domain.Solution) error
	PublishStatus(ctx context.Context, e domain.StatusEntry) error
}
