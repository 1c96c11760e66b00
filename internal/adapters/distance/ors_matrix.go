package distance

import (
	"bytes"
	"context"
	"dynamic-route-service/internal/domain"
	"encoding/json"
	"fmt"
	"net/http"
)

type matrixRequest struct {
	Locations [][]float64 `json:"locations"`
	Metrics   []string    `json:"metrics"`
}

type matrixResponse struct {
	Distances [][]*float64 `json:"distances"`
}

// fetchMatrix retrieves the full N×N road distance matrix in kilometres
// from the OpenRouteService matrix endpoint.
func (o *ORSMatrixProvider) fetchMatrix(
	ctx context.Context,
	coords []domain.Coordinates,
) ([][]float64, error) {
	n := len(coords)
	if n == 0 {
		return [][]float64{}, nil
	}

	endpoint := fmt.Sprintf("%s/v2/matrix/%s", o.baseURL, o.profile)

	locations := make([][]float64, 0, n)
	for _, c := range coords {
		locations = append(locations, c.CoordsToList())
	}

	payload, err := json.Marshal(matrixRequest{
		Locations: locations,
		Metrics:   []string{"distance"},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal matrix request: %w", err)
	}

	// The body reader is rebuilt per attempt so retries resend the full payload.
	resp, err := o.http.Do(ctx, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
		if err != nil {
			return nil, fmt.Errorf("create matrix request: %w", err)
		}
		req.Header.Set("Authorization", o.apiKey)
		req.Header.Set("Accept", "application/json")
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	})
	if err != nil {
		return nil, fmt.Errorf("matrix request failed: %w", err)
	}
	defer resp.Body.Close()

	var mr matrixResponse
	if err := json.NewDecoder(resp.Body).Decode(&mr); err != nil {
		return nil, fmt.Errorf("decode matrix response: %w", err)
	}

	if len(mr.Distances) != n {
		return nil, fmt.Errorf("expected %d source rows; got %d", n, len(mr.Distances))
	}

	out := make([][]float64, n)
	for i, row := range mr.Distances {
		if len(row) != n {
			return nil, fmt.Errorf("row %d has %d cells, want %d", i, len(row), n)
		}
		out[i] = make([]float64, n)
		for j, meters := range row {
			if meters == nil {
				return nil, fmt.Errorf("matrix returned no route for %d -> %d", i, j)
			}
			out[i][j] = *meters / 1000
		}
	}

	return out, nil
}
