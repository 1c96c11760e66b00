package main

import (
	"context"
	"database/sql"
	"dynamic-route-service/internal/adapters/cache"
	"dynamic-route-service/internal/adapters/distance"
	"dynamic-route-service/internal/adapters/ledger"
	"dynamic-route-service/internal/adapters/publisher"
	"dynamic-route-service/internal/adapters/repositories"
	"dynamic-route-service/internal/adapters/weather"
	"dynamic-route-service/internal/api"
	"dynamic-route-service/internal/config"
	"dynamic-route-service/internal/platform/db"
	"dynamic-route-service/internal/platform/metrics"
	"dynamic-route-service/internal/platform/obs"
	"dynamic-route-service/internal/ports"
	"dynamic-route-service/internal/services"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// main is the application composition root.
// It wires concrete adapters behind ports and starts the HTTP server. Every
// external system is optional; missing ones fall back to local implementations.
func main() {
	cfg, err := config.Load()
	if err != nil {
		obs.SetupLogger("info", "json")
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	obs.SetupLogger(cfg.LogLevel, cfg.LogFormat)

	sqlite, err := repositories.OpenSqlite(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Msg("open sqlite")
	}
	defer sqlite.Close()

	if err := repositories.InitSchema(sqlite); err != nil {
		log.Fatal().Err(err).Msg("init sqlite schema")
	}

	var pg *sql.DB
	if strings.TrimSpace(cfg.DatabaseURL) != "" {
		pg, err = db.Open(context.Background(), cfg.DatabaseURL, db.DefaultPool)
		if err != nil {
			log.Fatal().Err(err).Msg("open postgres")
		}
		defer pg.Close()

		if err := ledger.InitSchema(pg); err != nil {
			log.Fatal().Err(err).Msg("init postgres schema")
		}
	}

	m := metrics.NewCollector()

	planner := services.NewPlanner(services.PlannerConfig{
		AverageSpeedKmh:  cfg.AverageSpeedKmh,
		JamProbability:   cfg.JamProbability,
		RainProbability:  cfg.RainProbability,
		Region:           cfg.WeatherRegion,
		BudgetBase:       cfg.SolveBudgetBase,
		BudgetPerArc:     cfg.SolveBudgetPerArc,
		MaxBatchSize:     cfg.MaxBatchSize,
		BatchConcurrency: cfg.BatchConcurrency,
	})
	planner.Store = repositories.NewSqliteSolutionStore(sqlite)
	planner.Metrics = m
	planner.Matrices = matrixProvider(cfg, sqlite, pg)

	if pg != nil {
		planner.Ledger = ledger.NewSQLStatusLedger(pg)
		log.Info().Msg("status ledger: postgres")
	} else {
		planner.Ledger = ledger.NewMemoryStatusLedger()
		log.Warn().Msg("DATABASE_URL not set, status ledger is in-memory")
	}

	lookup, scheduler := weatherLookup(cfg)
	if lookup != nil {
		planner.Weather = lookup
	}
	if scheduler != nil {
		if err := scheduler.Start(); err != nil {
			log.Fatal().Err(err).Msg("start weather scheduler")
		}
		defer scheduler.Stop()
	}

	if strings.TrimSpace(cfg.NATSURL) != "" {
		nc, err := publisher.NewNATSPublisher(cfg.NATSURL, cfg.NATSSubjectPrefix, m)
		if err != nil {
			log.Fatal().Err(err).Msg("connect nats")
		}
		defer nc.Close()
		planner.Events = nc
	} else {
		planner.Events = publisher.NopPublisher{}
	}

	router := api.NewRouter(planner, api.Options{
		Metrics:        m,
		MetricsHandler: m.Handler(),
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
	})

	// WriteTimeout leaves room for cold-cache matrix builds on top of the solve budget.
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
}

// matrixProvider prefers ORS road distances when a key is configured, caching
// cells in Postgres when available and SQLite otherwise.
func matrixProvider(cfg config.Config, sqlite, pg *sql.DB) ports.MatrixProvider {
	if strings.TrimSpace(cfg.ORSAPIKey) == "" {
		log.Warn().Msg("ORS_API_KEY not set, using great-circle distances")
		return distance.HaversineMatrixProvider{}
	}

	var c distance.Cache = cache.NewSqliteDistanceCache(sqlite)
	if pg != nil {
		c = cache.NewSQLDistanceCache(pg)
	}

	p, err := distance.NewORSMatrixProvider(cfg.ORSAPIKey, c)
	if err != nil {
		log.Fatal().Err(err).Msg("ors matrix provider")
	}
	return p
}

// weatherLookup builds the live weather chain. Without an OpenWeather key the
// planner samples weather itself; without Redis the live API is read per solve.
func weatherLookup(cfg config.Config) (*weather.Lookup, *weather.Scheduler) {
	if strings.TrimSpace(cfg.OpenWeatherAPIKey) == "" {
		log.Warn().Msg("OPENWEATHER_API_KEY not set, sampling weather per solve")
		return nil, nil
	}

	client, err := weather.NewOpenWeatherClient(cfg.OpenWeatherAPIKey, cfg.OpenWeatherBaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("openweather client")
	}

	if strings.TrimSpace(cfg.RedisAddr) == "" {
		return weather.NewLookup(client, nil), nil
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
	rc := weather.NewRedisCache(rdb, cfg.WeatherCacheTTL)
	return weather.NewLookup(client, rc), weather.NewScheduler(cfg.WeatherRefreshCron, client, rc, cfg.WeatherRegion)
}
