// Package dashboard assembles the admin dashboard's occupancy statistics.
package dashboard

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/anandwan/awaas-backend/internal/metrics"
	"github.com/anandwan/awaas-backend/internal/occupancy"
)

// Counter counts stored bookings matching a predicate.
type Counter interface {
	Count(ctx context.Context, p occupancy.Predicate) (int, error)
}

type Stats struct {
	CurrentGuests    int       `json:"currentGuests"`
	UpcomingArrivals int       `json:"upcomingArrivals"`
	CompletedStays   int       `json:"completedStays"`
	TotalBookings    int       `json:"totalBookings"`
	MealRequired     int       `json:"mealRequired"`
	WindowStart      time.Time `json:"windowStart"`
	WindowEnd        time.Time `json:"windowEnd"`
}

type DashboardService struct {
	log           *zap.Logger
	clock         occupancy.Clock
	offsetMinutes int
	counter       Counter
}

func NewDashboardService(log *zap.Logger, clock occupancy.Clock, offsetMinutes int, counter Counter) *DashboardService {
	return &DashboardService{
		log:           log,
		clock:         clock,
		offsetMinutes: offsetMinutes,
		counter:       counter,
	}
}

// Window returns today's window in the reference timezone.
func (s *DashboardService) Window() (occupancy.DayWindow, error) {
	return occupancy.Today(s.clock, s.offsetMinutes)
}

// OffsetMinutes is the reference timezone offset the service was built with.
func (s *DashboardService) OffsetMinutes() int { return s.offsetMinutes }

// Stats reads the clock once and counts every status against that single window.
func (s *DashboardService) Stats(ctx context.Context) (*Stats, error) {
	start := time.Now()
	defer func() { metrics.DashboardStatsDuration.Observe(time.Since(start).Seconds()) }()

	w, err := s.Window()
	if err != nil {
		s.log.Error("Clock unavailable for dashboard stats", zap.Error(err))
		return nil, err
	}

	stats := &Stats{WindowStart: w.StartUTC, WindowEnd: w.EndUTC}

	if stats.TotalBookings, err = s.count(ctx, "total", occupancy.Predicate{}); err != nil {
		return nil, err
	}
	if stats.CurrentGuests, err = s.count(ctx, "current", occupancy.StatusPredicate(occupancy.StatusCurrent, w)); err != nil {
		return nil, err
	}
	if stats.UpcomingArrivals, err = s.count(ctx, "upcoming", occupancy.StatusPredicate(occupancy.StatusUpcoming, w)); err != nil {
		return nil, err
	}
	if stats.CompletedStays, err = s.count(ctx, "completed", occupancy.StatusPredicate(occupancy.StatusCompleted, w)); err != nil {
		return nil, err
	}
	if stats.MealRequired, err = s.count(ctx, "meal", occupancy.MealPredicate(true)); err != nil {
		return nil, err
	}

	return stats, nil
}

func (s *DashboardService) count(ctx context.Context, what string, p occupancy.Predicate) (int, error) {
	n, err := s.counter.Count(ctx, p)
	if err != nil {
		return 0, fmt.Errorf("count %s bookings: %w", what, err)
	}
	return n, nil
}
