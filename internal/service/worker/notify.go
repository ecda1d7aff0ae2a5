package worker

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/anandwan/awaas-backend/internal/events"
	mailerService "github.com/anandwan/awaas-backend/internal/service/mailer"
)

type NotifyService struct {
	log        *zap.Logger
	mailer     *mailerService.MailerService
	adminEmail string
}

func NewNotifyService(log *zap.Logger, mailer *mailerService.MailerService, adminEmail string) *NotifyService {
	return &NotifyService{
		log:        log,
		mailer:     mailer,
		adminEmail: adminEmail,
	}
}

// HandleGuestRegistered sends the guest confirmation (email and WhatsApp) and
// the admin notification. Every channel is attempted; the returned error joins
// the failures.
func (s *NotifyService) HandleGuestRegistered(ctx context.Context, e events.GuestRegistered) error {
	if e.GuestID == "" {
		return fmt.Errorf("event %s has no guest id", e.EventID)
	}

	var errs []error
	if e.Email != "" {
		if err := s.mailer.SendGuestConfirmationEmail(e); err != nil {
			errs = append(errs, fmt.Errorf("guest email: %w", err))
		}
	}
	if err := s.mailer.SendGuestWhatsApp(ctx, e); err != nil {
		errs = append(errs, fmt.Errorf("guest whatsapp: %w", err))
	}
	if s.adminEmail != "" {
		if err := s.mailer.SendAdminNewGuestEmail(s.adminEmail, e); err != nil {
			errs = append(errs, fmt.Errorf("admin email: %w", err))
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	s.log.Info("Guest registration notifications sent", zap.String("guest_id", e.GuestID), zap.String("event_id", e.EventID))
	return nil
}
