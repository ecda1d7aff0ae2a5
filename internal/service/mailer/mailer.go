package mailer

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/anandwan/awaas-backend/internal/events"
	"github.com/anandwan/awaas-backend/internal/mailer"
	"github.com/anandwan/awaas-backend/internal/metrics"
	"github.com/anandwan/awaas-backend/internal/whatsapp"
)

const dateLayout = "02 Jan 2006"

type MailerService struct {
	log      *zap.Logger
	sender   mailer.Sender
	whatsapp whatsapp.Sender
}

// NewMailerService builds the notification service. wa may be nil, in which
// case WhatsApp messages are skipped.
func NewMailerService(log *zap.Logger, sender mailer.Sender, wa whatsapp.Sender) *MailerService {
	return &MailerService{
		log:      log,
		sender:   sender,
		whatsapp: wa,
	}
}

// Digest is the content of the daily admin summary.
type Digest struct {
	Date             string
	CurrentGuests    int
	UpcomingArrivals int
	CompletedStays   int
	TotalBookings    int
	MealRequired     int
	ArrivingToday    []string
}

func (m *MailerService) send(kind string, mail mailer.Mail) error {
	if err := m.sender.Send(mail); err != nil {
		metrics.NotificationsTotal.WithLabelValues("email", "error").Inc()
		m.log.Error("Failed to send email", zap.String("kind", kind), zap.Error(err), zap.String("email", mail.To))
		return err
	}
	metrics.NotificationsTotal.WithLabelValues("email", "sent").Inc()
	m.log.Info("Email sent", zap.String("kind", kind), zap.String("email", mail.To))
	return nil
}

func (m *MailerService) SendGuestConfirmationEmail(g events.GuestRegistered) error {
	body := fmt.Sprintf(`
Dear %s,

Thank you for registering your stay at Anandwan Awaas.

Arrival:   %s
Departure: %s
Purpose:   %s
Group:     %s (%s)
Meals:     %s

We look forward to welcoming you.

Warm regards,
Anandwan Awaas Team
`, g.FullName, g.ArrivalDate.Format(dateLayout), g.DepartureDate.Format(dateLayout),
		g.Purpose, g.GroupType, g.GroupSize, yesNo(g.MealRequired))

	return m.send("guest_confirmation", mailer.Mail{
		To:      g.Email,
		Subject: "Your stay at Anandwan Awaas is registered",
		Body:    body,
	})
}

func (m *MailerService) SendAdminNewGuestEmail(adminEmail string, g events.GuestRegistered) error {
	body := fmt.Sprintf(`
A new guest registration was received.

Name:      %s
Email:     %s
Phone:     %s
Arrival:   %s
Departure: %s
Purpose:   %s
Group:     %s (%s)
Meals:     %s
`, g.FullName, g.Email, g.Phone, g.ArrivalDate.Format(dateLayout), g.DepartureDate.Format(dateLayout),
		g.Purpose, g.GroupType, g.GroupSize, yesNo(g.MealRequired))

	return m.send("admin_new_guest", mailer.Mail{
		To:      adminEmail,
		Subject: fmt.Sprintf("New guest registration: %s", g.FullName),
		Body:    body,
	})
}

func (m *MailerService) SendPasswordChangeOTPEmail(email string, otp string) error {
	body := fmt.Sprintf(`
Hello,

You have requested to change your password.

Your OTP is: %s

This OTP will expire in 15 minutes.

If you did not request this change, please ignore this email.

Anandwan Awaas Team
`, otp)

	return m.send("password_otp", mailer.Mail{
		To:      email,
		Subject: "Password Change OTP",
		Body:    body,
	})
}

func (m *MailerService) SendDailyDigestEmail(adminEmail string, d Digest) error {
	arrivals := "none"
	if len(d.ArrivingToday) > 0 {
		arrivals = "\n  - " + strings.Join(d.ArrivingToday, "\n  - ")
	}
	body := fmt.Sprintf(`
Occupancy for %s

Current guests:    %d
Upcoming arrivals: %d
Completed stays:   %d
Total bookings:    %d
Meals required:    %d

Arriving today: %s
`, d.Date, d.CurrentGuests, d.UpcomingArrivals, d.CompletedStays, d.TotalBookings, d.MealRequired, arrivals)

	return m.send("daily_digest", mailer.Mail{
		To:      adminEmail,
		Subject: fmt.Sprintf("Awaas daily digest: %s", d.Date),
		Body:    body,
	})
}

// SendGuestWhatsApp sends the registration confirmation to the guest's phone.
func (m *MailerService) SendGuestWhatsApp(ctx context.Context, g events.GuestRegistered) error {
	if m.whatsapp == nil || g.Phone == "" {
		metrics.NotificationsTotal.WithLabelValues("whatsapp", "skipped").Inc()
		return nil
	}
	msg := whatsapp.Message{
		To: g.Phone,
		Body: fmt.Sprintf("Namaste %s, your stay at Anandwan Awaas from %s to %s is registered.",
			g.FullName, g.ArrivalDate.Format(dateLayout), g.DepartureDate.Format(dateLayout)),
	}
	if err := m.whatsapp.Send(ctx, msg); err != nil {
		metrics.NotificationsTotal.WithLabelValues("whatsapp", "error").Inc()
		m.log.Error("Failed to send WhatsApp message", zap.Error(err), zap.String("guest_id", g.GuestID))
		return err
	}
	metrics.NotificationsTotal.WithLabelValues("whatsapp", "sent").Inc()
	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
