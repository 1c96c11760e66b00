package services

import (
	"dynamic-route-service/internal/domain"
	"hash/fnv"
	"math/rand/v2"
)

// DefaultJamProbability is the chance that any directed arc is congested.
const DefaultJamProbability = 0.2

// DefaultRainProbability is the chance of sampling rain when no live lookup is available.
const DefaultRainProbability = 0.0

// Conditions is an immutable snapshot of traffic and weather for one solve.
//
// Every directed arc is sampled exactly once when the snapshot is built, so the
// cost of an arc does not depend on how many times the search evaluates it.
type Conditions struct {
	n       int
	traffic []float64
	weather domain.Weather
}

// SampleConditions draws a traffic multiplier for every directed arc of an n-stop problem.
func SampleConditions(rng *rand.Rand, n int, weather domain.Weather, jamProbability float64) *Conditions {
	c := &Conditions{
		n:       n,
		traffic: make([]float64, n*n),
		weather: weather,
	}
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			m := domain.NormalTrafficMultiplier
			// Self-arcs consume a draw but are never jammed.
			if rng.Float64() < jamProbability && i != j {
				m = domain.JamTrafficMultiplier
			}
			c.traffic[i*n+j] = m
		}
	}
	return c
}

// FixedConditions returns a snapshot with the same traffic multiplier on every arc.
func FixedConditions(n int, trafficMultiplier float64, weather domain.Weather) *Conditions {
	c := &Conditions{
		n:       n,
		traffic: make([]float64, n*n),
		weather: weather,
	}
	for i := range c.traffic {
		c.traffic[i] = trafficMultiplier
	}
	return c
}

// SampleWeather draws the region-wide weather once per solve.
func SampleWeather(rng *rand.Rand, rainProbability float64) domain.Weather {
	if rng.Float64() < rainProbability {
		return domain.Weather{Condition: domain.WeatherRainy, Multiplier: domain.RainyMultiplier}
	}
	return domain.DefaultWeather()
}

// Size returns the number of stops the snapshot covers.
func (c *Conditions) Size() int { return c.n }

func (c *Conditions) Weather() domain.Weather { return c.weather }

// Traffic returns the multiplier and status of the arc from -> to.
func (c *Conditions) Traffic(from, to int) (float64, domain.TrafficStatus) {
	m := c.traffic[from*c.n+to]
	if m > domain.NormalTrafficMultiplier {
		return m, domain.TrafficJam
	}
	return m, domain.TrafficNormal
}

// NewRand returns a generator owned by a single solve.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// SeedFromRequestID derives a per-solve seed so concurrent solves never share
// generator state and a request can be replayed.
func SeedFromRequestID(requestID string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(requestID))
	return h.Sum64()
}
