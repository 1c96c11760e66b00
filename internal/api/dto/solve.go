package dto

import "time"

type StopRequest struct {
	ID   string  `json:"id"`
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

// SolveRequest carries one routing job. When matrix is omitted the server
// builds one from the stop coordinates.
type SolveRequest struct {
	RequestID      string        `json:"request_id"`
	Stops          []StopRequest `json:"stops"`
	Matrix         [][]float64   `json:"matrix"`
	VehicleCount   int           `json:"vehicle_count"`
	DepotIndex     int           `json:"depot_index"`
	Region         string        `json:"region"`
	Weather        string        `json:"weather"`
	Seed           *uint64       `json:"seed"`
	JamProbability *float64      `json:"jam_probability"`
}

type BatchRequest struct {
	Requests []SolveRequest `json:"requests"`
}

type VisitResponse struct {
	StopIndex         int     `json:"stop_index"`
	StopID            string  `json:"stop_id"`
	Name              string  `json:"name"`
	Lat               float64 `json:"lat"`
	Lon               float64 `json:"lon"`
	SegmentDistanceKm float64 `json:"segment_distance_km"`
	Traffic           string  `json:"traffic,omitempty"`
	ElapsedMinutes    float64 `json:"elapsed_minutes"`
}

type RouteResponse struct {
	VehicleID       int             `json:"vehicle_id"`
	Sequence        []int           `json:"sequence"`
	DistanceKm      float64         `json:"distance_km"`
	DurationMinutes float64         `json:"duration_minutes"`
	Visits          []VisitResponse `json:"visits"`
}

type SolutionResponse struct {
	RequestID       string          `json:"request_id"`
	Success         bool            `json:"success"`
	Weather         string          `json:"weather"`
	AverageSpeedKmh float64         `json:"average_speed_kmh"`
	TotalDistanceKm float64         `json:"total_distance_km"`
	SolvedAt        time.Time       `json:"solved_at"`
	Routes          []RouteResponse `json:"routes"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

type BatchItemResponse struct {
	RequestID string            `json:"request_id"`
	Solution  *SolutionResponse `json:"solution,omitempty"`
	Error     *ErrorResponse    `json:"error,omitempty"`
}

type BatchResponse struct {
	Results []BatchItemResponse `json:"results"`
}
