package domain

import "fmt"

// Vehicle is the route cursor of one delivery vehicle during construction.
// It starts at the depot, accumulates visited stop indices and is closed
// by returning to the depot.
type Vehicle struct {
	VehicleID int
	Depot     int
	Sequence  []int
	closed    bool
}

func NewVehicle(id int, depot int) *Vehicle {
	return &Vehicle{
		VehicleID: id,
		Depot:     depot,
		Sequence:  []int{depot},
	}
}

// Current returns the stop index the vehicle is standing at.
func (v *Vehicle) Current() int {
	return v.Sequence[len(v.Sequence)-1]
}

// Visit appends a stop to the vehicle's route.
func (v *Vehicle) Visit(stop int) error {
	if v.closed {
		return fmt.Errorf("visit stop: vehicle %d route is already closed", v.VehicleID)
	}
	v.Sequence = append(v.Sequence, stop)
	return nil
}

// Close ends the route at the depot. Closing twice is a no-op.
func (v *Vehicle) Close() {
	if v.closed {
		return
	}
	v.Sequence = append(v.Sequence, v.Depot)
	v.closed = true
}

func (v *Vehicle) Closed() bool { return v.closed }

// Idle reports whether the vehicle left the depot at all.
func (v *Vehicle) Idle() bool {
	for _, s := range v.Sequence {
		if s != v.Depot {
			return false
		}
	}
	return true
}
