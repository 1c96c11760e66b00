package ports

import (
	"context"
	"dynamic-route-service/internal/domain"
)

// Contract for resolving the current region-wide weather before a solve.
type WeatherProvider interface {
	CurrentWeather(ctx context.Context, region string) (domain.Weather, error)
}
