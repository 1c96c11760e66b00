package domain

import "time"

// Represents one position in a vehicle's route.
// SegmentDistanceKm and Traffic describe the arc that arrives at this stop;
// both are zero values for the first visit (the departure from the depot).
type Visit struct {
	StopIndex         int
	StopID            string
	Name              string
	Coordinates       Coordinates
	SegmentDistanceKm float64
	Traffic           TrafficStatus
	ElapsedMinutes    float64
}

// Represents the planned route for a single vehicle.
// Visits begin and end at the depot. A vehicle with no stops assigned
// has exactly two visits, both at the depot.
type Route struct {
	VehicleID       int
	Visits          []Visit
	DistanceKm      float64
	DurationMinutes float64
}

// Sequence returns the ordered stop indices of the route.
func (r Route) Sequence() []int {
	out := make([]int, len(r.Visits))
	for i, v := range r.Visits {
		out[i] = v.StopIndex
	}
	return out
}

// StopCount returns the number of non-depot stops served by the route.
func (r Route) StopCount() int {
	if len(r.Visits) < 2 {
		return 0
	}
	return len(r.Visits) - 2
}

// Represents the output of one solve: a route per vehicle and the totals across them.
// It is immutable planning data; ownership passes to the caller.
type Solution struct {
	RequestID       string
	Routes          []Route
	TotalDistanceKm float64
	Weather         Weather
	AverageSpeedKmh float64
	Success         bool
	SolvedAt        time.Time
}

// HasStop reports whether stopID is a delivery stop served by any route.
// The depot opens and closes every route and is never a delivery stop.
func (s *Solution) HasStop(stopID string) bool {
	for _, r := range s.Routes {
		if len(r.Visits) < 2 {
			continue
		}
		for _, v := range r.Visits[1 : len(r.Visits)-1] {
			if v.StopID == stopID {
				return true
			}
		}
	}
	return false
}
