package booking

import (
	"time"

	"github.com/google/uuid"

	"github.com/shareit/service-booking/pkg/domain"
)

// ItemSnapshot is the part of a catalog item a booking depends on.
type ItemSnapshot struct {
	ID        uuid.UUID
	OwnerID   uuid.UUID
	Name      string
	Available bool
}

// Booking is the aggregate root for the booking domain.
type Booking struct {
	id       uuid.UUID
	item     ItemSnapshot
	bookerID uuid.UUID
	start    time.Time
	end      time.Time
	status   BookingStatus

	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// Short is the compact view of a booking attached to catalog items.
type Short struct {
	ID       uuid.UUID `json:"id"`
	BookerID uuid.UUID `json:"booker_id"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
}

// NewBooking validates a borrow request and creates a Booking in WAITING.
// Checks run in a fixed order and the first failure wins.
func NewBooking(item ItemSnapshot, bookerID uuid.UUID, start, end, now time.Time) (*Booking, error) {
	if item.ID == uuid.Nil {
		return nil, domain.NewValidationError("item ID is required")
	}
	if bookerID == uuid.Nil {
		return nil, domain.NewValidationError("booker ID is required")
	}
	if !item.Available {
		return nil, ErrItemNotAvailable
	}
	if bookerID == item.OwnerID {
		return nil, ErrSelfBooking
	}
	if end.Before(start) {
		return nil, ErrEndBeforeStart
	}
	if start.Equal(end) {
		return nil, ErrStartEqualsEnd
	}

	now = now.UTC()
	return &Booking{
		id:        uuid.New(),
		item:      ItemSnapshot{ID: item.ID, OwnerID: item.OwnerID, Name: item.Name},
		bookerID:  bookerID,
		start:     start.UTC(),
		end:       end.UTC(),
		status:    StatusWaiting,
		version:   1,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// ReconstructBooking rebuilds a Booking from persistence data (no validation).
func ReconstructBooking(
	id uuid.UUID,
	item ItemSnapshot,
	bookerID uuid.UUID,
	start, end time.Time,
	status BookingStatus,
	version int64,
	createdAt, updatedAt time.Time,
) *Booking {
	return &Booking{
		id:        id,
		item:      item,
		bookerID:  bookerID,
		start:     start,
		end:       end,
		status:    status,
		version:   version,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

// --- Getters ---

// ID returns the booking's unique identifier.
func (b *Booking) ID() uuid.UUID { return b.id }

// Item returns the snapshot of the booked item.
func (b *Booking) Item() ItemSnapshot { return b.item }

// ItemID returns the booked item's identifier.
func (b *Booking) ItemID() uuid.UUID { return b.item.ID }

// OwnerID returns the booked item's owner.
func (b *Booking) OwnerID() uuid.UUID { return b.item.OwnerID }

// BookerID returns the requesting user.
func (b *Booking) BookerID() uuid.UUID { return b.bookerID }

// Start returns the beginning of the borrow interval.
func (b *Booking) Start() time.Time { return b.start }

// End returns the end of the borrow interval.
func (b *Booking) End() time.Time { return b.end }

// Status returns the current booking status.
func (b *Booking) Status() BookingStatus { return b.status }

// Version returns the entity version for optimistic locking.
func (b *Booking) Version() int64 { return b.version }

// CreatedAt returns the creation timestamp.
func (b *Booking) CreatedAt() time.Time { return b.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (b *Booking) UpdatedAt() time.Time { return b.updatedAt }

// --- Behavior ---

// IsVisibleTo reports whether userID is the booker or the item owner.
func (b *Booking) IsVisibleTo(userID uuid.UUID) bool {
	return userID == b.bookerID || userID == b.item.OwnerID
}

// Short returns the compact view of the booking.
func (b *Booking) Short() Short {
	return Short{ID: b.id, BookerID: b.bookerID, Start: b.start, End: b.end}
}

// IncrementVersion bumps the version for optimistic locking.
func (b *Booking) IncrementVersion() {
	b.version++
}
