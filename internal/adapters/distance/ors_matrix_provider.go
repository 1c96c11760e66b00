package distance

import (
	"context"
	"dynamic-route-service/internal/domain"
	"dynamic-route-service/internal/platform/httpretry"
	"dynamic-route-service/internal/platform/obs"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

// Cache persists road distances between coordinate keys (see Coordinates.Key).
type Cache interface {
	GetMany(ctx context.Context, origin string, destinations []string) (map[string]float64, error)
	PutMany(ctx context.Context, origin string, km map[string]float64) error
}

// ORSMatrixProvider implements MatrixProvider using OpenRouteService.
//
// It coordinates:
//   - Persistent per-cell distance caching
//   - A single full-matrix API call when any cell is missing
//   - Retry with backoff on transient failures
//
// The provider is safe for concurrent use.
type ORSMatrixProvider struct {
	http    *httpretry.Client
	apiKey  string
	baseURL string
	profile string
	cache   Cache
}

func NewORSMatrixProvider(apiKey string, cache Cache) (*ORSMatrixProvider, error) {
	if apiKey == "" {
		return nil, errors.New("ORS api key is empty")
	}

	return &ORSMatrixProvider{
		http:    httpretry.New(10 * time.Second),
		apiKey:  apiKey,
		baseURL: "https://api.openrouteservice.org",
		profile: "driving-car",
		cache:   cache,
	}, nil
}

// WithBaseURL points the provider at another ORS deployment.
func (o *ORSMatrixProvider) WithBaseURL(baseURL string) *ORSMatrixProvider {
	o.baseURL = baseURL
	return o
}

func (o *ORSMatrixProvider) BuildMatrix(ctx context.Context, stops []domain.Stop) (_ [][]float64, err error) {
	defer obs.Time(ctx, "ors.BuildMatrix")(&err)

	n := len(stops)
	if n == 0 {
		return [][]float64{}, nil
	}

	keys := make([]string, n)
	coords := make([]domain.Coordinates, n)
	for i, s := range stops {
		keys[i] = s.Coordinates.Key()
		coords[i] = s.Coordinates
	}

	if m, ok := o.fromCache(ctx, keys); ok {
		return m, nil
	}

	m, err := o.fetchMatrix(ctx, coords)
	if err != nil {
		return nil, fmt.Errorf("build ORS matrix for %d stops: %w", n, err)
	}

	if o.cache != nil {
		for i := range m {
			row := make(map[string]float64, n)
			for j := range m[i] {
				if keys[i] != keys[j] {
					row[keys[j]] = m[i][j]
				}
			}
			if err := o.cache.PutMany(ctx, keys[i], row); err != nil {
				log.Warn().Err(err).Msg("distance cache write failed")
				break
			}
		}
	}

	return m, nil
}

// fromCache assembles the matrix from cached cells. ok is false on any miss.
func (o *ORSMatrixProvider) fromCache(ctx context.Context, keys []string) ([][]float64, bool) {
	if o.cache == nil {
		return nil, false
	}

	n := len(keys)
	m := make([][]float64, n)
	for i, origin := range keys {
		hits, err := o.cache.GetMany(ctx, origin, keys)
		if err != nil {
			log.Warn().Err(err).Msg("distance cache read failed")
			return nil, false
		}
		m[i] = make([]float64, n)
		for j, dest := range keys {
			if origin == dest {
				continue
			}
			km, ok := hits[dest]
			if !ok {
				return nil, false
			}
			m[i][j] = km
		}
	}
	return m, true
}
