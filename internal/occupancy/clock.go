package occupancy

import (
	"fmt"
	"time"
)

// Clock is the source of the current instant.
type Clock interface {
	Now() (time.Time, error)
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() (time.Time, error)

func (f ClockFunc) Now() (time.Time, error) { return f() }

// SystemClock reads the wall clock and never fails.
type SystemClock struct{}

func (SystemClock) Now() (time.Time, error) { return time.Now().UTC(), nil }

// FixedClock always returns the same instant.
func FixedClock(t time.Time) Clock {
	return ClockFunc(func() (time.Time, error) { return t, nil })
}

// Today reads clock and returns the window of the current reference-local day.
// A clock failure is reported as ErrClockUnavailable.
func Today(clock Clock, offsetMinutes int) (DayWindow, error) {
	if clock == nil {
		return DayWindow{}, ErrClockUnavailable
	}
	now, err := clock.Now()
	if err != nil {
		return DayWindow{}, fmt.Errorf("%w: %v", ErrClockUnavailable, err)
	}
	return ComputeDayWindow(now, offsetMinutes), nil
}
