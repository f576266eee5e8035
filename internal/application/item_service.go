package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shareit/service-booking/internal/clock"
	bookingDomain "github.com/shareit/service-booking/internal/domain/booking"
	commentDomain "github.com/shareit/service-booking/internal/domain/comment"
	itemDomain "github.com/shareit/service-booking/internal/domain/item"
	requestDomain "github.com/shareit/service-booking/internal/domain/request"
	userDomain "github.com/shareit/service-booking/internal/domain/user"
	"github.com/shareit/service-booking/pkg/domain"
)

// CreateItemRequest is the request DTO for listing an item.
type CreateItemRequest struct {
	Name        string     `json:"name" binding:"required"`
	Description string     `json:"description" binding:"required"`
	Available   *bool      `json:"available" binding:"required"`
	RequestID   *uuid.UUID `json:"request_id"`
}

// UpdateItemRequest is the request DTO for a partial item update.
type UpdateItemRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Available   *bool   `json:"available"`
}

// AddCommentRequest is the request DTO for commenting on an item.
type AddCommentRequest struct {
	Text string `json:"text" binding:"required"`
}

// CommentDTO is the API representation of an item comment.
type CommentDTO struct {
	ID         uuid.UUID `json:"id"`
	Text       string    `json:"text"`
	AuthorName string    `json:"author_name"`
	Created    time.Time `json:"created"`
}

// ItemDTO is the API representation of an item. Booking views are only set for the owner.
type ItemDTO struct {
	ID          uuid.UUID            `json:"id"`
	OwnerID     uuid.UUID            `json:"owner_id"`
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Available   bool                 `json:"available"`
	RequestID   *uuid.UUID           `json:"request_id,omitempty"`
	LastBooking *bookingDomain.Short `json:"last_booking"`
	NextBooking *bookingDomain.Short `json:"next_booking"`
	Comments    []CommentDTO         `json:"comments"`
}

// ItemService implements use cases for listing, browsing and commenting on items.
type ItemService struct {
	items    itemDomain.ItemRepository
	users    userDomain.UserRepository
	bookings bookingDomain.BookingRepository
	comments commentDomain.CommentRepository
	requests requestDomain.RequestRepository
	clock    clock.Clock
	logger   *zap.Logger
}

// NewItemService creates a new ItemService.
func NewItemService(
	items itemDomain.ItemRepository,
	users userDomain.UserRepository,
	bookings bookingDomain.BookingRepository,
	comments commentDomain.CommentRepository,
	requests requestDomain.RequestRepository,
	clk clock.Clock,
	logger *zap.Logger,
) *ItemService {
	return &ItemService{
		items:    items,
		users:    users,
		bookings: bookings,
		comments: comments,
		requests: requests,
		clock:    clk,
		logger:   logger,
	}
}

// CreateItem lists a new item for ownerID.
func (s *ItemService) CreateItem(ctx context.Context, ownerID uuid.UUID, req CreateItemRequest) (*ItemDTO, error) {
	if _, err := s.users.FindByID(ctx, ownerID); err != nil {
		return nil, err
	}
	if req.RequestID != nil {
		if _, err := s.requests.FindByID(ctx, *req.RequestID); err != nil {
			return nil, err
		}
	}

	it, err := itemDomain.NewItem(ownerID, req.Name, req.Description, req.Available, req.RequestID, s.clock.Now())
	if err != nil {
		return nil, err
	}

	if err := s.items.Save(ctx, it); err != nil {
		s.logger.Error("failed to create item", zap.Error(err))
		return nil, fmt.Errorf("failed to create item: %w", err)
	}

	s.logger.Info("item created",
		zap.String("item_id", it.ID().String()),
		zap.String("owner_id", ownerID.String()),
	)
	result := toItemDTO(it)
	return &result, nil
}

// UpdateItem applies a partial update. Anyone but the owner gets NOT_FOUND.
func (s *ItemService) UpdateItem(ctx context.Context, ownerID, itemID uuid.UUID, req UpdateItemRequest) (*ItemDTO, error) {
	it, err := s.items.FindByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if !it.IsOwnedBy(ownerID) {
		return nil, domain.NewNotFoundError("Item", itemID.String())
	}

	if err := it.Update(req.Name, req.Description, req.Available, s.clock.Now()); err != nil {
		return nil, err
	}

	if err := s.items.Update(ctx, it); err != nil {
		s.logger.Error("failed to update item", zap.Error(err))
		return nil, fmt.Errorf("failed to update item: %w", err)
	}

	s.logger.Info("item updated", zap.String("item_id", itemID.String()))
	result := toItemDTO(it)
	return &result, nil
}

// GetItem returns an item with its comments, plus booking views when userID owns it.
func (s *ItemService) GetItem(ctx context.Context, itemID, userID uuid.UUID) (*ItemDTO, error) {
	it, err := s.items.FindByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	dtos, err := s.enrich(ctx, []*itemDomain.Item{it}, it.IsOwnedBy(userID))
	if err != nil {
		return nil, err
	}
	return &dtos[0], nil
}

// GetOwnerItems returns a page of ownerID's items with booking views and comments.
func (s *ItemService) GetOwnerItems(ctx context.Context, ownerID uuid.UUID, from, size int) ([]ItemDTO, error) {
	offset, err := pageOffset(from, size)
	if err != nil {
		return nil, err
	}
	if _, err := s.users.FindByID(ctx, ownerID); err != nil {
		return nil, err
	}
	items, err := s.items.FindByOwnerID(ctx, ownerID, offset, size)
	if err != nil {
		return nil, err
	}
	return s.enrich(ctx, items, true)
}

// SearchItems returns a page of available items matching text. Blank text matches nothing.
func (s *ItemService) SearchItems(ctx context.Context, text string, from, size int) ([]ItemDTO, error) {
	offset, err := pageOffset(from, size)
	if err != nil {
		return nil, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return []ItemDTO{}, nil
	}
	items, err := s.items.Search(ctx, text, offset, size)
	if err != nil {
		return nil, err
	}
	dtos := make([]ItemDTO, len(items))
	for i, it := range items {
		dtos[i] = toItemDTO(it)
	}
	return dtos, nil
}

// AddComment records feedback from a user who has finished a booking of the item.
func (s *ItemService) AddComment(ctx context.Context, itemID, authorID uuid.UUID, req AddCommentRequest) (*CommentDTO, error) {
	author, err := s.users.FindByID(ctx, authorID)
	if err != nil {
		return nil, err
	}
	if _, err := s.items.FindByID(ctx, itemID); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	c, err := commentDomain.NewComment(itemID, authorID, author.Name(), req.Text, now)
	if err != nil {
		return nil, err
	}

	borrowed, err := s.bookings.ExistsFinishedByBooker(ctx, itemID, authorID, now)
	if err != nil {
		return nil, err
	}
	if !borrowed {
		return nil, commentDomain.ErrNotBorrowed
	}

	if err := s.comments.Save(ctx, c); err != nil {
		return nil, err
	}

	s.logger.Info("comment added",
		zap.String("item_id", itemID.String()),
		zap.String("author_id", authorID.String()),
	)
	result := toCommentDTO(c)
	return &result, nil
}

func (s *ItemService) enrich(ctx context.Context, items []*itemDomain.Item, withBookings bool) ([]ItemDTO, error) {
	ids := make([]uuid.UUID, len(items))
	for i, it := range items {
		ids[i] = it.ID()
	}
	comments, err := s.comments.FindByItemIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byItem := make(map[uuid.UUID][]CommentDTO, len(items))
	for _, c := range comments {
		byItem[c.ItemID()] = append(byItem[c.ItemID()], toCommentDTO(c))
	}

	now := s.clock.Now()
	dtos := make([]ItemDTO, len(items))
	for i, it := range items {
		dto := toItemDTO(it)
		if cs, ok := byItem[it.ID()]; ok {
			dto.Comments = cs
		}
		if withBookings {
			last, err := s.bookings.FindLastApproved(ctx, it.ID(), now)
			if err != nil {
				return nil, err
			}
			next, err := s.bookings.FindNextApproved(ctx, it.ID(), now)
			if err != nil {
				return nil, err
			}
			dto.LastBooking = shortOf(last)
			dto.NextBooking = shortOf(next)
		}
		dtos[i] = dto
	}
	return dtos, nil
}

func shortOf(bk *bookingDomain.Booking) *bookingDomain.Short {
	if bk == nil {
		return nil
	}
	short := bk.Short()
	return &short
}

func toItemDTO(it *itemDomain.Item) ItemDTO {
	return ItemDTO{
		ID:          it.ID(),
		OwnerID:     it.OwnerID(),
		Name:        it.Name(),
		Description: it.Description(),
		Available:   it.Available(),
		RequestID:   it.RequestID(),
		Comments:    []CommentDTO{},
	}
}

func toCommentDTO(c *commentDomain.Comment) CommentDTO {
	return CommentDTO{
		ID:         c.ID(),
		Text:       c.Text(),
		AuthorName: c.AuthorName(),
		Created:    c.CreatedAt(),
	}
}
