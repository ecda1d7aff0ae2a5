// Package occupancy classifies guest stays against a reference-timezone calendar day.
//
// Everything here is pure: "now" always comes from the caller, and the reference
// timezone is a fixed offset in minutes, so results never depend on the process TZ.
package occupancy

import "time"

// DefaultOffsetMinutes is UTC+5:30 (IST), the timezone the facility operates in.
const DefaultOffsetMinutes = 330

// dayLength is the span from local 00:00:00.000 to 23:59:59.999.
const dayLength = 24*time.Hour - time.Millisecond

// DayWindow holds the UTC instants of local midnight and local end-of-day for one
// reference-timezone calendar day.
type DayWindow struct {
	StartUTC time.Time `json:"start"`
	EndUTC   time.Time `json:"end"`
}

// ComputeDayWindow returns the window of the reference-local day that contains now.
func ComputeDayWindow(now time.Time, offsetMinutes int) DayWindow {
	offset := time.Duration(offsetMinutes) * time.Minute

	local := now.UTC().Add(offset)
	midnight := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)

	start := midnight.Add(-offset)
	return DayWindow{StartUTC: start, EndUTC: start.Add(dayLength)}
}

// Contains reports whether t falls inside the window, both ends inclusive.
func (w DayWindow) Contains(t time.Time) bool {
	return !t.Before(w.StartUTC) && !t.After(w.EndUTC)
}

// LocalDate returns the reference-local calendar date of the window as YYYY-MM-DD.
func (w DayWindow) LocalDate(offsetMinutes int) string {
	return w.StartUTC.Add(time.Duration(offsetMinutes) * time.Minute).Format("2006-01-02")
}
