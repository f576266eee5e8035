package booking

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// BookingRepository defines the persistence contract for booking aggregates.
type BookingRepository interface {
	// FindByID retrieves a booking by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Booking, error)

	// Find returns one page of bookings matching q, ordered by start descending.
	Find(ctx context.Context, q Query) ([]*Booking, error)

	// FindLastApproved returns the approved booking of an item that started before now and
	// ends latest, or nil.
	FindLastApproved(ctx context.Context, itemID uuid.UUID, now time.Time) (*Booking, error)

	// FindNextApproved returns the approved booking of an item that starts soonest after now, or nil.
	FindNextApproved(ctx context.Context, itemID uuid.UUID, now time.Time) (*Booking, error)

	// ExistsFinishedByBooker reports whether bookerID has a booking of itemID that ended before now.
	ExistsFinishedByBooker(ctx context.Context, itemID, bookerID uuid.UUID, now time.Time) (bool, error)

	// Save persists a new booking.
	Save(ctx context.Context, booking *Booking) error

	// Update persists changes to an existing booking with optimistic locking.
	Update(ctx context.Context, booking *Booking) error
}
