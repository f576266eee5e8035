package booking

import (
	"time"

	"github.com/google/uuid"
)

// Role is the relationship of an actor to a booking.
type Role int

const (
	RoleStranger Role = iota
	RoleBooker
	RoleOwner
)

// RoleOf classifies actorID against the booking. The booker check runs first.
func (b *Booking) RoleOf(actorID uuid.UUID) Role {
	switch actorID {
	case b.bookerID:
		return RoleBooker
	case b.item.OwnerID:
		return RoleOwner
	default:
		return RoleStranger
	}
}

// Decide resolves the status an action leads to. Rows are evaluated top to bottom.
//
//	role      current    approve  outcome
//	booker    any        true     ErrBookerCannotApprove
//	booker    CANCELED   false    ErrBookingCanceled
//	booker    APPROVED,  false    ErrDecisionAlreadyMade
//	          REJECTED
//	booker    WAITING    false    CANCELED
//	owner     CANCELED   any      ErrBookingCanceled
//	owner     !WAITING   any      ErrDecisionAlreadyMade
//	owner     WAITING    true     APPROVED
//	owner     WAITING    false    REJECTED
//	stranger  CANCELED   any      ErrBookingCanceled
//	stranger  other      any      ErrOnlyOwnerMayApprove
func Decide(role Role, current BookingStatus, approve bool) (BookingStatus, error) {
	switch {
	case role == RoleBooker && approve:
		return "", ErrBookerCannotApprove
	case role == RoleBooker && current == StatusCanceled:
		return "", ErrBookingCanceled
	case role == RoleBooker && !current.CanTransitionTo(StatusCanceled):
		return "", ErrDecisionAlreadyMade
	case role == RoleBooker:
		return StatusCanceled, nil
	case role == RoleOwner && current == StatusCanceled:
		return "", ErrBookingCanceled
	case role == RoleOwner && current != StatusWaiting:
		return "", ErrDecisionAlreadyMade
	case role == RoleOwner && approve:
		return StatusApproved, nil
	case role == RoleOwner:
		return StatusRejected, nil
	case current == StatusCanceled:
		return "", ErrBookingCanceled
	default:
		return "", ErrOnlyOwnerMayApprove
	}
}

// Transition applies an approve/reject/cancel action by actorID.
func (b *Booking) Transition(actorID uuid.UUID, approve bool, now time.Time) error {
	next, err := Decide(b.RoleOf(actorID), b.status, approve)
	if err != nil {
		return err
	}
	b.status = next
	b.updatedAt = now.UTC()
	return nil
}
