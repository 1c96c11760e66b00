package weather

import (
	"context"
	"dynamic-route-service/internal/domain"
	"dynamic-route-service/internal/ports"

	"github.com/rs/zerolog/log"
)

// Cache is the subset of RedisCache used by Lookup and Scheduler.
type Cache interface {
	Get(ctx context.Context, region string) (domain.Weather, bool, error)
	Set(ctx context.Context, region string, w domain.Weather) error
}

// Lookup resolves weather through an optional cache in front of a live source.
// It never fails: any error degrades to sunny weather and is logged.
type Lookup struct {
	Source ports.WeatherProvider
	Cache  Cache
}

func NewLookup(source ports.WeatherProvider, cache Cache) *Lookup {
	return &Lookup{Source: source, Cache: cache}
}

func (l *Lookup) CurrentWeather(ctx context.Context, region string) (domain.Weather, error) {
	if l.Cache != nil {
		w, ok, err := l.Cache.Get(ctx, region)
		if err != nil {
			log.Warn().Err(err).Str("region", region).Msg("weather cache read failed")
		} else if ok {
			return w, nil
		}
	}

	if l.Source == nil {
		return domain.DefaultWeather(), nil
	}

	w, err := l.Source.CurrentWeather(ctx, region)
	if err != nil {
		log.Warn().Err(err).Str("region", region).Msg("weather lookup failed, assuming sunny")
		return domain.DefaultWeather(), nil
	}

	if l.Cache != nil {
		if err := l.Cache.Set(ctx, region, w); err != nil {
			log.Warn().Err(err).Str("region", region).Msg("weather cache write failed")
		}
	}
	return w, nil
}

// StaticProvider always reports the same weather. Used by the CLI and tests.
type StaticProvider struct {
	Weather domain.Weather
	Err     error
}

func (p StaticProvider) CurrentWeather(ctx context.Context, region string) (domain.Weather, error) {
	if p.Err != nil {
		return domain.Weather{}, p.Err
	}
	return p.Weather, nil
}
