package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "AVERAGE_SPEED_KMH", "JAM_PROBABILITY", "SOLVE_BUDGET_BASE_MS", "LOG_FORMAT"} {
		t.Setenv(k, "")
	}

	cfg, err := FromEnv()
	require.NoError(t, err)
	require.Equal(t, "8080", cfg.Port)
	require.Equal(t, 20.0, cfg.AverageSpeedKmh)
	require.Equal(t, 0.2, cfg.JamProbability)
	require.Equal(t, 2*time.Second, cfg.SolveBudgetBase)
	require.Equal(t, "json", cfg.LogFormat)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("AVERAGE_SPEED_KMH", "35.5")
	t.Setenv("RAIN_PROBABILITY", "0.4")
	t.Setenv("BATCH_CONCURRENCY", "8")
	t.Setenv("WEATHER_CACHE_TTL", "5m")

	cfg, err := FromEnv()
	require.NoError(t, err)
	require.Equal(t, "9090", cfg.Port)
	require.Equal(t, 35.5, cfg.AverageSpeedKmh)
	require.Equal(t, 0.4, cfg.RainProbability)
	require.Equal(t, 8, cfg.BatchConcurrency)
	require.Equal(t, 5*time.Minute, cfg.WeatherCacheTTL)
}

func TestFromEnvRejectsBadValues(t *testing.T) {
	t.Setenv("AVERAGE_SPEED_KMH", "fast")
	t.Setenv("JAM_PROBABILITY", "1.5")

	_, err := FromEnv()
	require.Error(t, err)
	require.Contains(t, err.Error(), "AVERAGE_SPEED_KMH")
	require.Contains(t, err.Error(), "JAM_PROBABILITY")
}

func TestGetFallback(t *testing.T) {
	t.Setenv("SOME_UNSET_KEY", "")
	require.Equal(t, "x", Get("SOME_UNSET_KEY", "x"))

	t.Setenv("SOME_UNSET_KEY", " y ")
	require.Equal(t, "y", Get("SOME_UNSET_KEY", "x"))
}
