package domain

// Represents a single location in a routing problem: the depot or a delivery stop.
// Stops are immutable once a RoutingProblem has been built from them.
type Stop struct {
	ID          string
	Name        string
	Coordinates Coordinates
}
