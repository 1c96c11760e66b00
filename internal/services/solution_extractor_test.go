package services

import (
	"testing"

	"dynamic-route-service/internal/domain"

	"github.com/stretchr/testify/require"
)

func TestExtractSolutionAppliesWeatherToTime(t *testing.T) {
	p := mustProblem(t, namedStops("D", "A"), [][]float64{{0, 5}, {5, 0}}, 1, 0)
	cm, err := NewCostModel(p, FixedConditions(2, 1.0, rainy()))
	require.NoError(t, err)

	v := domain.NewVehicle(1, 0)
	require.NoError(t, v.Visit(1))
	v.Close()

	sol := ExtractSolution(p, cm, []*domain.Vehicle{v}, ExtractOptions{AverageSpeedKmh: 20, RequestID: "r1"})

	require.True(t, sol.Success)
	require.Equal(t, "r1", sol.RequestID)
	require.Equal(t, domain.WeatherRainy, sol.Weather.Condition)

	route := sol.Routes[0]
	require.InDelta(t, 10.0, route.DistanceKm, 1e-9)
	// 10 km at 20 km/h is 30 minutes, ×1.2 for rain.
	require.InDelta(t, 36.0, route.DurationMinutes, 1e-9)
	require.InDelta(t, 18.0, route.Visits[1].ElapsedMinutes, 1e-9)
	require.Zero(t, route.Visits[0].ElapsedMinutes)
	require.InDelta(t, 10.0, sol.TotalDistanceKm, 1e-9)
}

func TestExtractSolutionReportsJamSegments(t *testing.T) {
	p := mustProblem(t, namedStops("D", "A"), [][]float64{{0, 2}, {2, 0}}, 1, 0)
	cm, err := NewCostModel(p, FixedConditions(2, domain.JamTrafficMultiplier, domain.DefaultWeather()))
	require.NoError(t, err)

	v := domain.NewVehicle(1, 0)
	require.NoError(t, v.Visit(1))
	v.Close()

	sol := ExtractSolution(p, cm, []*domain.Vehicle{v}, ExtractOptions{AverageSpeedKmh: 20})
	visit := sol.Routes[0].Visits[1]
	require.Equal(t, domain.TrafficJam, visit.Traffic)
	require.InDelta(t, 2.6, visit.SegmentDistanceKm, 1e-9)
}

func TestExtractSolutionIdleVehicle(t *testing.T) {
	p := gridProblem(t, 3, 2)
	cm, err := NewCostModel(p, FixedConditions(3, 1.0, domain.DefaultWeather()))
	require.NoError(t, err)

	v := domain.NewVehicle(2, 0)
	v.Close()

	sol := ExtractSolution(p, cm, []*domain.Vehicle{v}, ExtractOptions{})
	route := sol.Routes[0]
	require.Equal(t, []int{0, 0}, route.Sequence())
	require.Zero(t, route.DistanceKm)
	require.Zero(t, route.DurationMinutes)
	require.Equal(t, DefaultAverageSpeedKmh, sol.AverageSpeedKmh)
}

func TestExtractSolutionNoVehicles(t *testing.T) {
	p := gridProblem(t, 3, 1)
	cm, err := NewCostModel(p, FixedConditions(3, 1.0, domain.DefaultWeather()))
	require.NoError(t, err)

	sol := ExtractSolution(p, cm, nil, ExtractOptions{})
	require.False(t, sol.Success)
	require.Empty(t, sol.Routes)
}
