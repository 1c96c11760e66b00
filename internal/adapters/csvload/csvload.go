package csvload

import (
	"dynamic-route-service/internal/domain"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ReadLocations parses a locations file with a header containing name, lat and lon.
// An optional id column is used as the stop ID; otherwise the name is.
func ReadLocations(r io.Reader) ([]domain.Stop, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read locations header: %w", err)
	}
	h := headerIndex(header)
	for _, col := range []string{"name", "lat", "lon"} {
		if _, ok := h[col]; !ok {
			return nil, fmt.Errorf("read locations header: missing column %q", col)
		}
	}

	stops := make([]domain.Stop, 0, 32)
	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read locations line %d: %w", line, err)
		}

		get := func(k string) string {
			i, ok := h[k]
			if !ok || i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}

		lat, err := strconv.ParseFloat(get("lat"), 64)
		if err != nil {
			return nil, fmt.Errorf("read locations line %d: lat: %w", line, err)
		}
		lon, err := strconv.ParseFloat(get("lon"), 64)
		if err != nil {
			return nil, fmt.Errorf("read locations line %d: lon: %w", line, err)
		}

		name := get("name")
		id := get("id")
		if id == "" {
			id = name
		}
		stops = append(stops, domain.Stop{
			ID:          id,
			Name:        name,
			Coordinates: domain.Coordinates{Lat: lat, Lon: lon},
		})
	}

	return stops, nil
}

// ReadMatrix parses a square distance matrix with a header row of labels and a
// leading label column, as written by pandas DataFrame.to_csv.
func ReadMatrix(r io.Reader) (labels []string, matrix [][]float64, err error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("read matrix header: %w", err)
	}
	if len(header) < 2 {
		return nil, nil, errors.New("read matrix header: need a label column and at least one stop")
	}
	labels = make([]string, 0, len(header)-1)
	for _, l := range header[1:] {
		labels = append(labels, strings.TrimSpace(l))
	}

	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("read matrix line %d: %w", line, err)
		}
		if len(row) != len(header) {
			return nil, nil, fmt.Errorf("read matrix line %d: %d cells, want %d", line, len(row), len(header))
		}

		cells := make([]float64, 0, len(row)-1)
		for j, raw := range row[1:] {
			v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
			if err != nil {
				return nil, nil, fmt.Errorf("read matrix line %d column %d: %w", line, j+2, err)
			}
			cells = append(cells, v)
		}
		matrix = append(matrix, cells)
	}

	return labels, matrix, nil
}

// LoadFiles reads both files and checks that they describe the same number of stops.
// Shape and value rules are left to domain.NewRoutingProblem.
func LoadFiles(locationsPath, matrixPath string) ([]domain.Stop, [][]float64, error) {
	lf, err := os.Open(locationsPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open %q: %w", locationsPath, err)
	}
	defer lf.Close()

	stops, err := ReadLocations(lf)
	if err != nil {
		return nil, nil, fmt.Errorf("load %q: %w", locationsPath, err)
	}

	mf, err := os.Open(matrixPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open %q: %w", matrixPath, err)
	}
	defer mf.Close()

	_, matrix, err := ReadMatrix(mf)
	if err != nil {
		return nil, nil, fmt.Errorf("load %q: %w", matrixPath, err)
	}

	if len(matrix) != len(stops) {
		return nil, nil, fmt.Errorf(
			"distance matrix has %d rows but %d locations were loaded",
			len(matrix), len(stops),
		)
	}

	return stops, matrix, nil
}

func headerIndex(header []string) map[string]int {
	h := make(map[string]int, len(header))
	for i, col := range header {
		h[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(col, "\ufeff")))] = i
	}
	return h
}
