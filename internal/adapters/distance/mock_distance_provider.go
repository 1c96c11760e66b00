package distance

import (
	"context"
	"dynamic-route-service/internal/domain"
	"fmt"
)

type MockPair struct {
	From, To string
	Km       float64
}

// MockMatrixProvider serves distances between stop IDs from a fixed table.
type MockMatrixProvider struct {
	m     map[string]float64
	Calls int
}

func NewMockMatrixProvider(pairs []MockPair) *MockMatrixProvider {
	m := make(map[string]float64, len(pairs))
	for _, p := range pairs {
		m[p.From+"|"+p.To] = p.Km
	}
	return &MockMatrixProvider{m: m}
}

func (p *MockMatrixProvider) BuildMatrix(ctx context.Context, stops []domain.Stop) ([][]float64, error) {
	p.Calls++

	out := make([][]float64, len(stops))
	for i, from := range stops {
		out[i] = make([]float64, len(stops))
		for j, to := range stops {
			if i == j {
				continue
			}
			km, ok := p.m[from.ID+"|"+to.ID]
			if !ok {
				return nil, fmt.Errorf("missing pair %q -> %q", from.ID, to.ID)
			}
			out[i][j] = km
		}
	}
	return out, nil
}
