// Package events defines the messages exchanged over the guest events topic.
package events

import (
	"time"

	"github.com/google/uuid"
)

const TypeGuestRegistered = "guest.registered"

// GuestRegistered is published once a registration is stored.
type GuestRegistered struct {
	Type          string    `json:"type"`
	EventID       string    `json:"event_id"`
	GuestID       string    `json:"guest_id"`
	FullName      string    `json:"full_name"`
	Email         string    `json:"email"`
	Phone         string    `json:"phone"`
	Purpose       string    `json:"purpose"`
	ArrivalDate   time.Time `json:"arrival_date"`
	DepartureDate time.Time `json:"departure_date"`
	MealRequired  bool      `json:"meal_required"`
	GroupType     string    `json:"group_type"`
	GroupSize     string    `json:"group_size"`
	OccurredAt    time.Time `json:"occurred_at"`
}

func NewGuestRegistered(occurredAt time.Time) GuestRegistered {
	return GuestRegistered{Type: TypeGuestRegistered, EventID: uuid.NewString(), OccurredAt: occurredAt}
}
