package ports

import (
	"context"
	"dynamic-route-service/internal/domain"
)

// Contract for deriving a base distance matrix (kilometres) from stop coordinates.
// Used when a caller supplies stops without a matrix.
type MatrixProvider interface {
	// Return an N×N matrix where row i, column j is the distance from stops[i] to stops[j].
	BuildMatrix(ctx context.Context, stops []domain.Stop) ([][]float64, error)
}
