package mailer

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/anandwan/awaas-backend/internal/events"
	"github.com/anandwan/awaas-backend/internal/mailer"
	"github.com/anandwan/awaas-backend/internal/whatsapp"
)

type fakeSender struct {
	sent []mailer.Mail
	err  error
}

func (f *fakeSender) Send(m mailer.Mail) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, m)
	return nil
}

type fakeWhatsApp struct {
	sent []whatsapp.Message
}

func (f *fakeWhatsApp) Send(_ context.Context, m whatsapp.Message) error {
	f.sent = append(f.sent, m)
	return nil
}

func sampleGuest() events.GuestRegistered {
	g := events.NewGuestRegistered(time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC))
	g.GuestID = "g-1"
	g.FullName = "Asha Patil"
	g.Email = "asha@example.com"
	g.Phone = "+919876543210"
	g.Purpose = "Volunteering"
	g.ArrivalDate = time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	g.DepartureDate = time.Date(2024, 6, 12, 0, 0, 0, 0, time.UTC)
	g.MealRequired = true
	g.GroupType = "single"
	g.GroupSize = "1"
	return g
}

func TestSendGuestConfirmationEmail(t *testing.T) {
	s := &fakeSender{}
	svc := NewMailerService(zap.NewNop(), s, nil)

	if err := svc.SendGuestConfirmationEmail(sampleGuest()); err != nil {
		t.Fatalf("send: %v", err)
	}
	if len(s.sent) != 1 {
		t.Fatalf("sent %d mails", len(s.sent))
	}
	m := s.sent[0]
	if m.To != "asha@example.com" {
		t.Errorf("to = %s", m.To)
	}
	for _, want := range []string{"Asha Patil", "10 Jun 2024", "12 Jun 2024", "Meals:     yes"} {
		if !strings.Contains(m.Body, want) {
			t.Errorf("body missing %q", want)
		}
	}
}

func TestSendPropagatesSenderError(t *testing.T) {
	svc := NewMailerService(zap.NewNop(), &fakeSender{err: errors.New("smtp down")}, nil)
	if err := svc.SendPasswordChangeOTPEmail("a@example.com", "123456"); err == nil {
		t.Fatal("expected error")
	}
}

func TestSendDailyDigestEmail(t *testing.T) {
	s := &fakeSender{}
	svc := NewMailerService(zap.NewNop(), s, nil)

	err := svc.SendDailyDigestEmail("admin@example.com", Digest{
		Date: "2024-06-10", CurrentGuests: 3, UpcomingArrivals: 4, CompletedStays: 3, TotalBookings: 10,
		ArrivingToday: []string{"Asha Patil", "Ravi Kumar"},
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	body := s.sent[0].Body
	for _, want := range []string{"Current guests:    3", "Total bookings:    10", "  - Ravi Kumar"} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q:\n%s", want, body)
		}
	}
}

func TestSendGuestWhatsApp(t *testing.T) {
	wa := &fakeWhatsApp{}
	svc := NewMailerService(zap.NewNop(), &fakeSender{}, wa)

	if err := svc.SendGuestWhatsApp(context.Background(), sampleGuest()); err != nil {
		t.Fatalf("send: %v", err)
	}
	if len(wa.sent) != 1 || wa.sent[0].To != "+919876543210" {
		t.Fatalf("sent = %+v", wa.sent)
	}

	noPhone := sampleGuest()
	noPhone.Phone = ""
	if err := svc.SendGuestWhatsApp(context.Background(), noPhone); err != nil {
		t.Fatalf("send without phone: %v", err)
	}
	if len(wa.sent) != 1 {
		t.Fatal("message sent to a guest without phone")
	}
}
