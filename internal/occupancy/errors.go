package occupancy

import "errors"

var (
	ErrInvalidInterval  = errors.New("arrival is after departure")
	ErrClockUnavailable = errors.New("clock unavailable")
)
