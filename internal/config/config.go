package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config holds every setting the server and tools read from the environment.
type Config struct {
	Port   string
	DBPath string

	DatabaseURL   string
	RedisAddr     string
	RedisPassword string

	NATSURL           string
	NATSSubjectPrefix string

	OpenWeatherAPIKey  string
	OpenWeatherBaseURL string
	WeatherRegion      string
	WeatherRefreshCron string
	WeatherCacheTTL    time.Duration

	ORSAPIKey string

	AverageSpeedKmh float64
	JamProbability  float64
	RainProbability float64

	SolveBudgetBase   time.Duration
	SolveBudgetPerArc time.Duration
	MaxBatchSize      int
	BatchConcurrency  int

	RateLimitRPS   float64
	RateLimitBurst int

	LogLevel  string
	LogFormat string
}

// Load reads .env if present, then the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file found (using environment variables)")
	}
	return FromEnv()
}

// FromEnv parses the process environment without touching .env.
func FromEnv() (Config, error) {
	p := &parser{}

	cfg := Config{
		Port:   Get("PORT", "8080"),
		DBPath: Get("DB_PATH", "data/app.db"),

		DatabaseURL:   os.Getenv("DATABASE_URL"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		NATSURL:           os.Getenv("NATS_URL"),
		NATSSubjectPrefix: Get("NATS_SUBJECT_PREFIX", "routing"),

		OpenWeatherAPIKey:  os.Getenv("OPENWEATHER_API_KEY"),
		OpenWeatherBaseURL: Get("OPENWEATHER_BASE_URL", "https://api.openweathermap.org/data/2.5"),
		WeatherRegion:      Get("WEATHER_REGION", "Ho Chi Minh City"),
		WeatherRefreshCron: Get("WEATHER_REFRESH_CRON", "*/15 * * * *"),
		WeatherCacheTTL:    p.duration("WEATHER_CACHE_TTL", 30*time.Minute),

		ORSAPIKey: os.Getenv("ORS_API_KEY"),

		AverageSpeedKmh: p.float("AVERAGE_SPEED_KMH", 20),
		JamProbability:  p.float("JAM_PROBABILITY", 0.2),
		RainProbability: p.float("RAIN_PROBABILITY", 0),

		SolveBudgetBase:   time.Duration(p.int("SOLVE_BUDGET_BASE_MS", 2000)) * time.Millisecond,
		SolveBudgetPerArc: p.duration("SOLVE_BUDGET_PER_ARC", 50*time.Nanosecond),
		MaxBatchSize:      p.int("MAX_BATCH_SIZE", 32),
		BatchConcurrency:  p.int("BATCH_CONCURRENCY", 4),

		RateLimitRPS:   p.float("RATE_LIMIT_RPS", 20),
		RateLimitBurst: p.int("RATE_LIMIT_BURST", 40),

		LogLevel:  Get("LOG_LEVEL", "info"),
		LogFormat: Get("LOG_FORMAT", "json"),
	}

	if err := errors.Join(errors.Join(p.errs...), cfg.validate()); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func (c Config) validate() error {
	var errs []error
	if c.AverageSpeedKmh <= 0 {
		errs = append(errs, fmt.Errorf("AVERAGE_SPEED_KMH must be positive, got %v", c.AverageSpeedKmh))
	}
	if c.JamProbability < 0 || c.JamProbability > 1 {
		errs = append(errs, fmt.Errorf("JAM_PROBABILITY must be in [0,1], got %v", c.JamProbability))
	}
	if c.RainProbability < 0 || c.RainProbability > 1 {
		errs = append(errs, fmt.Errorf("RAIN_PROBABILITY must be in [0,1], got %v", c.RainProbability))
	}
	if c.MaxBatchSize < 1 {
		errs = append(errs, fmt.Errorf("MAX_BATCH_SIZE must be at least 1, got %d", c.MaxBatchSize))
	}
	if c.BatchConcurrency < 1 {
		errs = append(errs, fmt.Errorf("BATCH_CONCURRENCY must be at least 1, got %d", c.BatchConcurrency))
	}
	if c.RateLimitRPS < 0 {
		errs = append(errs, fmt.Errorf("RATE_LIMIT_RPS must not be negative, got %v", c.RateLimitRPS))
	}
	return errors.Join(errs...)
}

// Get returns the environment value for key, or fallback when unset or empty.
func Get(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

type parser struct {
	errs []error
}

func (p *parser) float(key string, fallback float64) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return v
}

func (p *parser) int(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return v
}

func (p *parser) duration(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return v
}
