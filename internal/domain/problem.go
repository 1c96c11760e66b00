package domain

import (
	"math"
	"strings"
)

// DistanceMatrix is a square table of non-negative base distances in kilometres.
// The diagonal always reads as zero: self-arcs are never traversed.
type DistanceMatrix struct {
	n     int
	cells []float64
}

// Size returns the matrix dimension.
func (m *DistanceMatrix) Size() int { return m.n }

// At returns the base distance from i to j.
func (m *DistanceMatrix) At(i, j int) float64 {
	if i == j {
		return 0
	}
	return m.cells[i*m.n+j]
}

// Rows returns a copy of the matrix as nested slices.
func (m *DistanceMatrix) Rows() [][]float64 {
	out := make([][]float64, m.n)
	for i := range out {
		out[i] = make([]float64, m.n)
		for j := range out[i] {
			out[i][j] = m.At(i, j)
		}
	}
	return out
}

// RoutingProblem is an immutable, validated routing instance.
// Index DepotIndex is the start and end of every vehicle's route.
type RoutingProblem struct {
	stops        []Stop
	matrix       *DistanceMatrix
	vehicleCount int
	depotIndex   int
}

// NewRoutingProblem validates caller-supplied data and returns an owned copy of it.
//
// Checks run in a fixed order and the first failure wins: matrix shape, matrix
// values, vehicle count, depot index, stop identifiers. Failures are *ValidationError.
func NewRoutingProblem(stops []Stop, matrix [][]float64, vehicleCount int, depotIndex int) (*RoutingProblem, error) {
	n := len(stops)

	if len(matrix) != n {
		return nil, validationErrorf(ErrShapeMismatch, "matrix has %d rows, want %d", len(matrix), n)
	}
	for i, row := range matrix {
		if len(row) != n {
			return nil, validationErrorf(ErrShapeMismatch, "matrix row %d has %d columns, want %d", i, len(row), n)
		}
	}

	cells := make([]float64, n*n)
	for i, row := range matrix {
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
				return nil, validationErrorf(ErrNegativeOrNonFiniteDistance, "matrix[%d][%d] = %v", i, j, v)
			}
			cells[i*n+j] = v
		}
	}

	if vehicleCount < 1 || vehicleCount > n-1 {
		return nil, validationErrorf(ErrVehicleCountOutOfRange, "vehicle count %d not in [1, %d]", vehicleCount, n-1)
	}

	if depotIndex < 0 || depotIndex > n-1 {
		return nil, validationErrorf(ErrDepotIndexOutOfRange, "depot index %d not in [0, %d]", depotIndex, n-1)
	}

	seen := make(map[string]struct{}, n)
	for i, s := range stops {
		id := strings.TrimSpace(s.ID)
		if id == "" {
			return nil, validationErrorf(ErrDuplicateStopID, "stop at index %d has an empty id", i)
		}
		if _, ok := seen[id]; ok {
			return nil, validationErrorf(ErrDuplicateStopID, "stop id %q appears more than once", id)
		}
		seen[id] = struct{}{}
	}

	owned := make([]Stop, n)
	copy(owned, stops)

	return &RoutingProblem{
		stops:        owned,
		matrix:       &DistanceMatrix{n: n, cells: cells},
		vehicleCount: vehicleCount,
		depotIndex:   depotIndex,
	}, nil
}

// Len returns the number of stops, depot included.
func (p *RoutingProblem) Len() int { return len(p.stops) }

func (p *RoutingProblem) VehicleCount() int { return p.vehicleCount }

func (p *RoutingProblem) DepotIndex() int { return p.depotIndex }

// Stop returns the stop at index i.
func (p *RoutingProblem) Stop(i int) Stop { return p.stops[i] }

// Stops returns a copy of the stop list.
func (p *RoutingProblem) Stops() []Stop {
	out := make([]Stop, len(p.stops))
	copy(out, p.stops)
	return out
}

// BaseDistance returns the unadjusted distance for the arc from -> to.
func (p *RoutingProblem) BaseDistance(from, to int) float64 { return p.matrix.At(from, to) }

func (p *RoutingProblem) Matrix() *DistanceMatrix { return p.matrix }
