// Package events defines the topics, CloudEvent types and payloads exchanged over Kafka.
package events

import (
	"time"

	"github.com/google/uuid"
)

// Topics.
const (
	TopicBookingEvents    = "booking.events"
	TopicBookingDecisions = "booking.decisions"
)

// Event types published on TopicBookingEvents.
const (
	BookingRequested = "booking.requested"
	BookingApproved  = "booking.approved"
	BookingRejected  = "booking.rejected"
	BookingCanceled  = "booking.canceled"
)

// BookingDecision is the event type consumed from TopicBookingDecisions.
const BookingDecision = "booking.decision"

// BookingRequestedEvent is emitted when a booking is created in WAITING.
type BookingRequestedEvent struct {
	BookingID  uuid.UUID `json:"booking_id"`
	ItemID     uuid.UUID `json:"item_id"`
	OwnerID    uuid.UUID `json:"owner_id"`
	BookerID   uuid.UUID `json:"booker_id"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	OccurredAt time.Time `json:"occurred_at"`
}

// BookingStatusChangedEvent is emitted when a booking is approved, rejected or canceled.
type BookingStatusChangedEvent struct {
	BookingID  uuid.UUID `json:"booking_id"`
	ItemID     uuid.UUID `json:"item_id"`
	OwnerID    uuid.UUID `json:"owner_id"`
	BookerID   uuid.UUID `json:"booker_id"`
	ActorID    uuid.UUID `json:"actor_id"`
	Status     string    `json:"status"`
	OccurredAt time.Time `json:"occurred_at"`
}

// BookingDecisionCommand asks the service to approve, reject or cancel a booking on behalf of
// ActorID.
type BookingDecisionCommand struct {
	BookingID uuid.UUID `json:"booking_id"`
	ActorID   uuid.UUID `json:"actor_id"`
	Approved  bool      `json:"approved"`
}

// StatusEventType maps a booking status to the event type announcing it.
func StatusEventType(status string) (string, bool) {
	switch status {
	case "APPROVED":
		return BookingApproved, true
	case "REJECTED":
		return BookingRejected, true
	case "CANCELED":
		return BookingCanceled, true
	default:
		return "", false
	}
}
