package occupancy

import "time"

// Status is the relationship between a stay and a day window.
type Status string

const (
	StatusCurrent   Status = "current"
	StatusUpcoming  Status = "upcoming"
	StatusCompleted Status = "completed"
)

// Statuses lists every status in evaluation order.
var Statuses = []Status{StatusCurrent, StatusUpcoming, StatusCompleted}

// ParseStatus accepts the wire form of a status.
func ParseStatus(s string) (Status, bool) {
	switch Status(s) {
	case StatusCurrent, StatusUpcoming, StatusCompleted:
		return Status(s), true
	}
	return "", false
}

// Booking is the part of a guest record the classifier looks at.
type Booking struct {
	Arrival      time.Time
	Departure    time.Time
	MealRequired bool
}

// Validate rejects stays that end before they start.
func (b Booking) Validate() error {
	if b.Arrival.After(b.Departure) {
		return ErrInvalidInterval
	}
	return nil
}

// Classify derives the status of b for the day w.
// With Departure >= Arrival the three cases are mutually exclusive and exhaustive.
func Classify(b Booking, w DayWindow) Status {
	switch {
	case !b.Arrival.After(w.EndUTC) && !b.Departure.Before(w.StartUTC):
		return StatusCurrent
	case b.Arrival.After(w.EndUTC):
		return StatusUpcoming
	default:
		return StatusCompleted
	}
}

// Counts is the per-status tally of a set of bookings.
type Counts struct {
	Current   int `json:"current"`
	Upcoming  int `json:"upcoming"`
	Completed int `json:"completed"`
	Total     int `json:"total"`
}

// Of returns the count for a single status.
func (c Counts) Of(s Status) int {
	switch s {
	case StatusCurrent:
		return c.Current
	case StatusUpcoming:
		return c.Upcoming
	case StatusCompleted:
		return c.Completed
	}
	return 0
}

// CountByStatus classifies every booking against w. Total is len(bookings)
// and always equals Current+Upcoming+Completed.
func CountByStatus(bookings []Booking, w DayWindow) Counts {
	c := Counts{Total: len(bookings)}
	for _, b := range bookings {
		switch Classify(b, w) {
		case StatusCurrent:
			c.Current++
		case StatusUpcoming:
			c.Upcoming++
		case StatusCompleted:
			c.Completed++
		}
	}
	return c
}
