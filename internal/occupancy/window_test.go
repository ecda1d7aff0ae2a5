package occupancy

import (
	"testing"
	"time"
)

func mustTime(t *testing.T, s string) time.Time {
	t.Helper()
	v, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	return v
}

func TestComputeDayWindowIST(t *testing.T) {
	now := mustTime(t, "2024-01-15T19:00:00Z")

	w := ComputeDayWindow(now, 330)

	wantStart := mustTime(t, "2024-01-15T18:30:00Z")
	wantEnd := mustTime(t, "2024-01-16T18:29:59.999Z")
	if !w.StartUTC.Equal(wantStart) {
		t.Errorf("start = %s, want %s", w.StartUTC, wantStart)
	}
	if !w.EndUTC.Equal(wantEnd) {
		t.Errorf("end = %s, want %s", w.EndUTC, wantEnd)
	}
	if got := w.LocalDate(330); got != "2024-01-16" {
		t.Errorf("local date = %s, want 2024-01-16", got)
	}
}

func TestComputeDayWindowValidity(t *testing.T) {
	offsets := []int{-720, -330, -60, 0, 45, 330, 345, 600, 840}
	base := mustTime(t, "2024-02-28T00:00:00Z")

	for _, off := range offsets {
		// Walk across several days, including a leap day, in 17 minute steps.
		for step := 0; step < 4*24*60/17; step++ {
			now := base.Add(time.Duration(step*17) * time.Minute)
			w := ComputeDayWindow(now, off)

			if !w.StartUTC.Before(w.EndUTC) {
				t.Fatalf("offset %d now %s: start %s not before end %s", off, now, w.StartUTC, w.EndUTC)
			}
			if d := w.EndUTC.Sub(w.StartUTC); d != 24*time.Hour-time.Millisecond {
				t.Fatalf("offset %d now %s: span %s", off, now, d)
			}
			if !w.Contains(now) {
				t.Fatalf("offset %d now %s: window %s..%s does not contain now", off, now, w.StartUTC, w.EndUTC)
			}
		}
	}
}

func TestComputeDayWindowIgnoresInputLocation(t *testing.T) {
	now := mustTime(t, "2024-01-15T19:00:00Z")
	ny := time.FixedZone("EST", -5*60*60)

	a := ComputeDayWindow(now, 330)
	b := ComputeDayWindow(now.In(ny), 330)

	if !a.StartUTC.Equal(b.StartUTC) || !a.EndUTC.Equal(b.EndUTC) {
		t.Fatalf("window depends on input location: %v vs %v", a, b)
	}
}

func TestComputeDayWindowBoundaryDeterminism(t *testing.T) {
	// Local midnight of 2024-01-16 at +05:30 is 2024-01-15T18:30Z.
	midnight := mustTime(t, "2024-01-15T18:30:00Z")
	today := ComputeDayWindow(midnight, 330)

	sameDay := []time.Duration{0, time.Millisecond, time.Hour, 12 * time.Hour, 24*time.Hour - time.Millisecond}
	for _, d := range sameDay {
		w := ComputeDayWindow(midnight.Add(d), 330)
		if !w.StartUTC.Equal(today.StartUTC) || !w.EndUTC.Equal(today.EndUTC) {
			t.Errorf("now = midnight+%s moved the window to %v", d, w)
		}
	}

	before := ComputeDayWindow(midnight.Add(-time.Millisecond), 330)
	if !before.StartUTC.Equal(today.StartUTC.Add(-24 * time.Hour)) {
		t.Errorf("one ms before midnight: start %s, want previous day", before.StartUTC)
	}

	next := ComputeDayWindow(midnight.Add(24*time.Hour), 330)
	if !next.StartUTC.Equal(today.StartUTC.Add(24 * time.Hour)) {
		t.Errorf("next midnight: start %s, want following day", next.StartUTC)
	}
}

func TestComputeDayWindowDiffersFromUTCTruncation(t *testing.T) {
	// 00:30 local on Jan 16 is still Jan 15 in UTC; a UTC-midnight window would
	// place a guest arriving on the 16th in the future.
	now := mustTime(t, "2024-01-15T19:00:00Z")
	w := ComputeDayWindow(now, 330)

	arrival := mustTime(t, "2024-01-16T00:00:00Z")
	b := Booking{Arrival: arrival, Departure: arrival.Add(48 * time.Hour)}
	if got := Classify(b, w); got != StatusCurrent {
		t.Fatalf("status = %s, want current", got)
	}

	naive := ComputeDayWindow(now, 0)
	if got := Classify(b, naive); got != StatusUpcoming {
		t.Fatalf("naive status = %s, want upcoming", got)
	}
}
