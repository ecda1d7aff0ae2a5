// Package analytics summarises recent bookings by month, group type and purpose.
package analytics

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/anandwan/awaas-backend/internal/occupancy"
	guestStore "github.com/anandwan/awaas-backend/internal/store/guests"
)

// Months is how many reference-local calendar months the report covers,
// the current one included.
const Months = 6

type Repository interface {
	ListArrivedSince(ctx context.Context, from time.Time) ([]*guestStore.Guest, error)
}

type MonthBucket struct {
	Month    string `json:"month"`
	Bookings int    `json:"bookings"`
	Meals    int    `json:"meals"`
}

type GroupShare struct {
	Type       string  `json:"type"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

type Insights struct {
	AverageStayDuration  float64 `json:"averageStayDuration"`
	MostCommonPurpose    string  `json:"mostCommonPurpose"`
	PeakBookingMonth     string  `json:"peakBookingMonth"`
	CurrentMonthBookings int     `json:"currentMonthBookings"`
	LastMonthBookings    int     `json:"lastMonthBookings"`
	PercentageChange     float64 `json:"percentageChange"`
}

type Report struct {
	MonthlyData   []MonthBucket `json:"monthlyData"`
	GroupTypeData []GroupShare  `json:"groupTypeData"`
	Insights      Insights      `json:"insights"`
}

type AnalyticsService struct {
	log           *zap.Logger
	repo          Repository
	clock         occupancy.Clock
	offsetMinutes int
}

func NewAnalyticsService(log *zap.Logger, repo Repository, clock occupancy.Clock, offsetMinutes int) *AnalyticsService {
	return &AnalyticsService{log: log, repo: repo, clock: clock, offsetMinutes: offsetMinutes}
}

func (s *AnalyticsService) Report(ctx context.Context) (*Report, error) {
	w, err := occupancy.Today(s.clock, s.offsetMinutes)
	if err != nil {
		return nil, err
	}
	from := PeriodStart(w.StartUTC, s.offsetMinutes)
	gs, err := s.repo.ListArrivedSince(ctx, from)
	if err != nil {
		return nil, fmt.Errorf("failed to load bookings for analytics: %w", err)
	}
	r := Build(gs, w.StartUTC, s.offsetMinutes)
	return &r, nil
}

// PeriodStart is the UTC instant of the first reference-local midnight of the
// oldest month in the report.
func PeriodStart(now time.Time, offsetMinutes int) time.Time {
	offset := time.Duration(offsetMinutes) * time.Minute
	local := now.UTC().Add(offset)
	first := time.Date(local.Year(), local.Month()-(Months-1), 1, 0, 0, 0, 0, time.UTC)
	return first.Add(-offset)
}

func monthKey(t time.Time, offsetMinutes int) string {
	return t.UTC().Add(time.Duration(offsetMinutes) * time.Minute).Format("Jan 2006")
}

// Build computes the report for guests relative to now. Guests arriving before
// the report period are ignored.
func Build(gs []*guestStore.Guest, now time.Time, offsetMinutes int) Report {
	from := PeriodStart(now, offsetMinutes)

	months := make([]MonthBucket, Months)
	index := make(map[string]int, Months)
	for i := range months {
		local := from.Add(time.Duration(offsetMinutes) * time.Minute)
		key := time.Date(local.Year(), local.Month()+time.Month(i), 1, 0, 0, 0, 0, time.UTC).Format("Jan 2006")
		months[i] = MonthBucket{Month: key}
		index[key] = i
	}

	groups := map[string]int{}
	purposes := map[string]int{}
	var stayDays float64
	var total int

	for _, g := range gs {
		if g.ArrivalDate.Before(from) {
			continue
		}
		i, ok := index[monthKey(g.ArrivalDate, offsetMinutes)]
		if !ok {
			continue
		}
		total++
		months[i].Bookings++
		if g.MealRequired {
			months[i].Meals++
		}
		groups[g.GroupType]++
		if p := strings.TrimSpace(g.Purpose); p != "" {
			purposes[p]++
		}
		stayDays += g.DepartureDate.Sub(g.ArrivalDate).Hours() / 24
	}

	r := Report{MonthlyData: months, GroupTypeData: []GroupShare{}}
	for t, n := range groups {
		r.GroupTypeData = append(r.GroupTypeData, GroupShare{Type: t, Count: n, Percentage: round1(float64(n) * 100 / float64(total))})
	}
	sort.Slice(r.GroupTypeData, func(i, j int) bool {
		a, b := r.GroupTypeData[i], r.GroupTypeData[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Type < b.Type
	})

	if total > 0 {
		r.Insights.AverageStayDuration = round1(stayDays / float64(total))
	}
	r.Insights.MostCommonPurpose = mostCommon(purposes)

	peak := 0
	for i, m := range months {
		if m.Bookings > months[peak].Bookings {
			peak = i
		}
	}
	if total > 0 {
		r.Insights.PeakBookingMonth = months[peak].Month
	}

	cur, last := months[Months-1].Bookings, months[Months-2].Bookings
	r.Insights.CurrentMonthBookings = cur
	r.Insights.LastMonthBookings = last
	switch {
	case last > 0:
		r.Insights.PercentageChange = round1(float64(cur-last) * 100 / float64(last))
	case cur > 0:
		r.Insights.PercentageChange = 100
	}
	return r
}

func mostCommon(counts map[string]int) string {
	best, bestN := "", 0
	for k, n := range counts {
		if n > bestN || (n == bestN && k < best) {
			best, bestN = k, n
		}
	}
	return best
}

func round1(f float64) float64 {
	return math.Round(f*10) / 10
}
