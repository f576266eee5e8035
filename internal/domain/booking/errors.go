package booking

import "github.com/shareit/service-booking/pkg/domain"

// Named failures of the booking lifecycle. Match them with errors.Is.
var (
	ErrItemNotAvailable    = domain.NewBookingCreateError("item not available")
	ErrSelfBooking         = domain.NewInvalidBookingError("cannot book own item")
	ErrEndBeforeStart      = domain.NewBookingCreateError("end before start")
	ErrStartEqualsEnd      = domain.NewBookingCreateError("start equals end")
	ErrBookerCannotApprove = domain.NewInvalidBookingError("booker cannot approve")
	ErrDecisionAlreadyMade = domain.NewBookingCreateError("decision already made")
	ErrBookingCanceled     = domain.NewInvalidBookingError("booking canceled")
	ErrOnlyOwnerMayApprove = domain.NewInvalidBookingError("only owner may approve")
)
