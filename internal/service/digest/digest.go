package digest

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/anandwan/awaas-backend/internal/metrics"
	"github.com/anandwan/awaas-backend/internal/occupancy"
	"github.com/anandwan/awaas-backend/internal/service/dashboard"
	mailerService "github.com/anandwan/awaas-backend/internal/service/mailer"
	guestStore "github.com/anandwan/awaas-backend/internal/store/guests"
)

type ArrivalLister interface {
	ListOverlapping(ctx context.Context, from, to time.Time) ([]*guestStore.Guest, error)
}

type DigestMailer interface {
	SendDailyDigestEmail(adminEmail string, d mailerService.Digest) error
}

// DigestService emails the admin a summary of today's occupancy.
type DigestService struct {
	log        *zap.Logger
	dashboard  *dashboard.DashboardService
	guests     ArrivalLister
	mailer     DigestMailer
	adminEmail string
}

func NewDigestService(log *zap.Logger, dashboard *dashboard.DashboardService, guests ArrivalLister, mailer DigestMailer, adminEmail string) *DigestService {
	return &DigestService{
		log:        log,
		dashboard:  dashboard,
		guests:     guests,
		mailer:     mailer,
		adminEmail: adminEmail,
	}
}

// Build assembles the digest for the current reference-local day.
func (s *DigestService) Build(ctx context.Context) (mailerService.Digest, error) {
	stats, err := s.dashboard.Stats(ctx)
	if err != nil {
		return mailerService.Digest{}, err
	}
	w := occupancy.DayWindow{StartUTC: stats.WindowStart, EndUTC: stats.WindowEnd}

	overlapping, err := s.guests.ListOverlapping(ctx, w.StartUTC, w.EndUTC)
	if err != nil {
		return mailerService.Digest{}, fmt.Errorf("failed to list today's guests: %w", err)
	}
	var arriving []string
	for _, g := range overlapping {
		if w.Contains(g.ArrivalDate) {
			arriving = append(arriving, g.FullName)
		}
	}

	return mailerService.Digest{
		Date:             w.LocalDate(s.dashboard.OffsetMinutes()),
		CurrentGuests:    stats.CurrentGuests,
		UpcomingArrivals: stats.UpcomingArrivals,
		CompletedStays:   stats.CompletedStays,
		TotalBookings:    stats.TotalBookings,
		MealRequired:     stats.MealRequired,
		ArrivingToday:    arriving,
	}, nil
}

// SendDaily builds and mails one digest.
func (s *DigestService) SendDaily(ctx context.Context) error {
	metrics.DigestRunsTotal.Inc()
	d, err := s.Build(ctx)
	if err != nil {
		s.log.Error("Failed to build daily digest", zap.Error(err))
		return err
	}
	if err := s.mailer.SendDailyDigestEmail(s.adminEmail, d); err != nil {
		return err
	}
	s.log.Info("Daily digest sent", zap.String("date", d.Date), zap.Int("current", d.CurrentGuests))
	return nil
}

// RunScheduled sends the digest on every tick of the cron spec until ctx is
// done. Specs may carry a CRON_TZ= prefix.
func (s *DigestService) RunScheduled(ctx context.Context, spec string) error {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		runCtx, cancel := context.WithTimeout(ctx, time.Minute)
		defer cancel()
		if err := s.SendDaily(runCtx); err != nil {
			s.log.Error("Scheduled digest failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("invalid digest schedule %q: %w", spec, err)
	}

	c.Start()
	s.log.Info("Digest scheduler started", zap.String("schedule", spec))

	<-ctx.Done()
	<-c.Stop().Done()
	s.log.Info("Stopping digest scheduler")
	return nil
}
