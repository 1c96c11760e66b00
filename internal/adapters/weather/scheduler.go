package weather

import (
	"context"
	"dynamic-route-service/internal/ports"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Scheduler periodically refreshes cached weather for a fixed set of regions
// so solves read a warm cache instead of calling the live API.
type Scheduler struct {
	cron    *cron.Cron
	spec    string
	source  ports.WeatherProvider
	cache   Cache
	regions []string
}

func NewScheduler(spec string, source ports.WeatherProvider, cache Cache, regions ...string) *Scheduler {
	return &Scheduler{
		cron:    cron.New(),
		spec:    spec,
		source:  source,
		cache:   cache,
		regions: regions,
	}
}

func (s *Scheduler) Start() error {
	if s.source == nil || s.cache == nil {
		return errors.New("weather scheduler: source and cache are required")
	}

	_, err := s.cron.AddFunc(s.spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		if err := s.Refresh(ctx); err != nil {
			log.Error().Err(err).Msg("weather refresh failed")
		}
	})
	if err != nil {
		return fmt.Errorf("weather scheduler: schedule %q: %w", s.spec, err)
	}

	s.cron.Start()
	log.Info().Str("spec", s.spec).Strs("regions", s.regions).Msg("weather scheduler started")

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		if err := s.Refresh(ctx); err != nil {
			log.Error().Err(err).Msg("initial weather refresh failed")
		}
	}()

	return nil
}

func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	log.Info().Msg("weather scheduler stopped")
}

// Refresh fetches every region and writes the results to the cache.
// A failing region does not stop the others.
func (s *Scheduler) Refresh(ctx context.Context) error {
	var errs []error
	for _, region := range s.regions {
		w, err := s.source.CurrentWeather(ctx, region)
		if err != nil {
			errs = append(errs, fmt.Errorf("refresh %q: %w", region, err))
			continue
		}
		if err := s.cache.Set(ctx, region, w); err != nil {
			errs = append(errs, fmt.Errorf("refresh %q: %w", region, err))
			continue
		}
		log.Debug().Str("region", region).Str("condition", string(w.Condition)).Msg("weather refreshed")
	}
	return errors.Join(errs...)
}
