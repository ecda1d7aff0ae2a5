package occupancy

import "time"

// Predicate is a conjunction of comparisons on arrival, departure and the meal
// flag. A nil field places no constraint. Stores translate it to a WHERE clause
// field by field, so a store count of StatusPredicate(s, w) equals the number of
// bookings Classify puts in s.
type Predicate struct {
	ArrivalAtOrBefore  *time.Time
	ArrivalAfter       *time.Time
	DepartureAtOrAfter *time.Time
	DepartureBefore    *time.Time
	MealRequired       *bool
}

// StatusPredicate returns the predicate selecting bookings with status s in w.
func StatusPredicate(s Status, w DayWindow) Predicate {
	start, end := w.StartUTC, w.EndUTC
	switch s {
	case StatusCurrent:
		return Predicate{ArrivalAtOrBefore: &end, DepartureAtOrAfter: &start}
	case StatusUpcoming:
		return Predicate{ArrivalAfter: &end}
	case StatusCompleted:
		return Predicate{DepartureBefore: &start}
	}
	return Predicate{}
}

// MealPredicate selects bookings by their meal flag.
func MealPredicate(required bool) Predicate {
	return Predicate{MealRequired: &required}
}

// And merges two predicates. Where both constrain the same field, q wins.
func (p Predicate) And(q Predicate) Predicate {
	if q.ArrivalAtOrBefore != nil {
		p.ArrivalAtOrBefore = q.ArrivalAtOrBefore
	}
	if q.ArrivalAfter != nil {
		p.ArrivalAfter = q.ArrivalAfter
	}
	if q.DepartureAtOrAfter != nil {
		p.DepartureAtOrAfter = q.DepartureAtOrAfter
	}
	if q.DepartureBefore != nil {
		p.DepartureBefore = q.DepartureBefore
	}
	if q.MealRequired != nil {
		p.MealRequired = q.MealRequired
	}
	return p
}

// IsZero reports whether p matches every booking.
func (p Predicate) IsZero() bool {
	return p.ArrivalAtOrBefore == nil && p.ArrivalAfter == nil &&
		p.DepartureAtOrAfter == nil && p.DepartureBefore == nil && p.MealRequired == nil
}

// Matches evaluates p in memory.
func (p Predicate) Matches(b Booking) bool {
	if p.ArrivalAtOrBefore != nil && b.Arrival.After(*p.ArrivalAtOrBefore) {
		return false
	}
	if p.ArrivalAfter != nil && !b.Arrival.After(*p.ArrivalAfter) {
		return false
	}
	if p.DepartureAtOrAfter != nil && b.Departure.Before(*p.DepartureAtOrAfter) {
		return false
	}
	if p.DepartureBefore != nil && !b.Departure.Before(*p.DepartureBefore) {
		return false
	}
	if p.MealRequired != nil && b.MealRequired != *p.MealRequired {
		return false
	}
	return true
}
