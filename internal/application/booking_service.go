package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shareit/service-booking/internal/clock"
	bookingDomain "github.com/shareit/service-booking/internal/domain/booking"
	itemDomain "github.com/shareit/service-booking/internal/domain/item"
	userDomain "github.com/shareit/service-booking/internal/domain/user"
	"github.com/shareit/service-booking/pkg/domain"
	"github.com/shareit/service-booking/pkg/events"
)

// CreateBookingRequest holds the data needed to create a new booking.
type CreateBookingRequest struct {
	ItemID uuid.UUID `json:"item_id" binding:"required"`
	Start  time.Time `json:"start" binding:"required"`
	End    time.Time `json:"end" binding:"required"`
}

// BookerDTO identifies the user who made a booking.
type BookerDTO struct {
	ID uuid.UUID `json:"id"`
}

// BookedItemDTO identifies the booked item.
type BookedItemDTO struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// BookingDTO is the response representation of a booking.
type BookingDTO struct {
	ID     uuid.UUID     `json:"id"`
	Start  time.Time     `json:"start"`
	End    time.Time     `json:"end"`
	Status string        `json:"status"`
	Booker BookerDTO     `json:"booker"`
	Item   BookedItemDTO `json:"item"`
}

// BookingService is the application service orchestrating booking use cases.
type BookingService struct {
	repo      bookingDomain.BookingRepository
	users     userDomain.UserRepository
	items     itemDomain.ItemRepository
	clock     clock.Clock
	publisher EventPublisher
	logger    *zap.Logger
}

// NewBookingService creates a new BookingService. publisher may be nil.
func NewBookingService(
	repo bookingDomain.BookingRepository,
	users userDomain.UserRepository,
	items itemDomain.ItemRepository,
	clk clock.Clock,
	publisher EventPublisher,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		repo:      repo,
		users:     users,
		items:     items,
		clock:     clk,
		publisher: publisher,
		logger:    logger,
	}
}

// CreateBooking validates a borrow request by bookerID and stores it in WAITING.
func (s *BookingService) CreateBooking(ctx context.Context, bookerID uuid.UUID, req CreateBookingRequest) (*BookingDTO, error) {
	if _, err := s.users.FindByID(ctx, bookerID); err != nil {
		return nil, err
	}
	it, err := s.items.FindByID(ctx, req.ItemID)
	if err != nil {
		return nil, err
	}

	snapshot := bookingDomain.ItemSnapshot{
		ID:        it.ID(),
		OwnerID:   it.OwnerID(),
		Name:      it.Name(),
		Available: it.Available(),
	}
	bk, err := bookingDomain.NewBooking(snapshot, bookerID, req.Start, req.End, s.clock.Now())
	if err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, bk); err != nil {
		return nil, fmt.Errorf("failed to save booking: %w", err)
	}

	s.logger.Info("booking requested",
		zap.String("booking_id", bk.ID().String()),
		zap.String("item_id", bk.ItemID().String()),
		zap.String("booker_id", bookerID.String()),
	)

	evt := events.BookingRequestedEvent{
		BookingID:  bk.ID(),
		ItemID:     bk.ItemID(),
		OwnerID:    bk.OwnerID(),
		BookerID:   bk.BookerID(),
		Start:      bk.Start(),
		End:        bk.End(),
		OccurredAt: bk.CreatedAt(),
	}
	publishEvent(ctx, s.publisher, s.logger, events.TopicBookingEvents, events.BookingRequested, bk.ID().String(), evt)

	result := toBookingDTO(bk)
	return &result, nil
}

// TransitionBooking applies an approve (approved=true) or reject/cancel (approved=false) action.
func (s *BookingService) TransitionBooking(ctx context.Context, bookingID, actorID uuid.UUID, approved bool) (*BookingDTO, error) {
	if _, err := s.users.FindByID(ctx, actorID); err != nil {
		return nil, err
	}
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if err := bk.Transition(actorID, approved, s.clock.Now()); err != nil {
		return nil, err
	}

	bk.IncrementVersion()
	if err := s.repo.Update(ctx, bk); err != nil {
		return nil, err
	}

	s.logger.Info("booking status changed",
		zap.String("booking_id", bk.ID().String()),
		zap.String("actor_id", actorID.String()),
		zap.String("status", bk.Status().String()),
	)

	if eventType, ok := events.StatusEventType(bk.Status().String()); ok {
		evt := events.BookingStatusChangedEvent{
			BookingID:  bk.ID(),
			ItemID:     bk.ItemID(),
			OwnerID:    bk.OwnerID(),
			BookerID:   bk.BookerID(),
			ActorID:    actorID,
			Status:     bk.Status().String(),
			OccurredAt: bk.UpdatedAt(),
		}
		publishEvent(ctx, s.publisher, s.logger, events.TopicBookingEvents, eventType, bk.ID().String(), evt)
	}

	result := toBookingDTO(bk)
	return &result, nil
}

// GetBooking returns a booking visible to requesterID. Others get NOT_FOUND.
func (s *BookingService) GetBooking(ctx context.Context, bookingID, requesterID uuid.UUID) (*BookingDTO, error) {
	if _, err := s.users.FindByID(ctx, requesterID); err != nil {
		return nil, err
	}
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !bk.IsVisibleTo(requesterID) {
		return nil, domain.NewNotFoundError("Booking", bookingID.String())
	}
	result := toBookingDTO(bk)
	return &result, nil
}

// ListBookings returns a page of the actor's bookings filtered by state, seen as booker or owner.
func (s *BookingService) ListBookings(
	ctx context.Context,
	state string,
	perspective bookingDomain.Perspective,
	actorID uuid.UUID,
	from, size int,
) ([]BookingDTO, error) {
	if _, err := s.users.FindByID(ctx, actorID); err != nil {
		return nil, err
	}
	q, err := bookingDomain.NewQuery(state, perspective, actorID, s.clock.Now(), from, size)
	if err != nil {
		return nil, err
	}

	bookings, err := s.repo.Find(ctx, q)
	if err != nil {
		return nil, err
	}

	dtos := make([]BookingDTO, len(bookings))
	for i, bk := range bookings {
		dtos[i] = toBookingDTO(bk)
	}
	return dtos, nil
}

func toBookingDTO(bk *bookingDomain.Booking) BookingDTO {
	return BookingDTO{
		ID:     bk.ID(),
		Start:  bk.Start(),
		End:    bk.End(),
		Status: bk.Status().String(),
		Booker: BookerDTO{ID: bk.BookerID()},
		Item:   BookedItemDTO{ID: bk.ItemID(), Name: bk.Item().Name},
	}
}
