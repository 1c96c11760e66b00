package distance

import (
	"context"
	"dynamic-route-service/internal/domain"
	"dynamic-route-service/internal/platform/geo"
)

// HaversineMatrixProvider builds a great-circle distance matrix.
// Factor scales the straight-line distance towards a road distance; zero means 1.
type HaversineMatrixProvider struct {
	Factor float64
}

func (h HaversineMatrixProvider) BuildMatrix(ctx context.Context, stops []domain.Stop) ([][]float64, error) {
	factor := h.Factor
	if factor <= 0 {
		factor = 1
	}

	n := len(stops)
	m := make([][]float64, n)
	for i := range stops {
		m[i] = make([]float64, n)
		a := stops[i].Coordinates
		for j := range stops {
			if i == j {
				continue
			}
			b := stops[j].Coordinates
			m[i][j] = geo.HaversineKm(a.Lat, a.Lon, b.Lat, b.Lon) * factor
		}
	}
	return m, nil
}
