package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shareit/service-booking/internal/clock"
	itemDomain "github.com/shareit/service-booking/internal/domain/item"
	requestDomain "github.com/shareit/service-booking/internal/domain/request"
	userDomain "github.com/shareit/service-booking/internal/domain/user"
)

// CreateItemRequestRequest is the request DTO for asking for an item.
type CreateItemRequestRequest struct {
	Description string `json:"description" binding:"required"`
}

// ItemRequestDTO is the API representation of an item request and the items offered for it.
type ItemRequestDTO struct {
	ID          uuid.UUID `json:"id"`
	Description string    `json:"description"`
	RequestorID uuid.UUID `json:"requestor_id"`
	Created     time.Time `json:"created"`
	Items       []ItemDTO `json:"items"`
}

// RequestService implements item request use cases.
type RequestService struct {
	requests requestDomain.RequestRepository
	items    itemDomain.ItemRepository
	users    userDomain.UserRepository
	clock    clock.Clock
	logger   *zap.Logger
}

// NewRequestService creates a new RequestService.
func NewRequestService(
	requests requestDomain.RequestRepository,
	items itemDomain.ItemRepository,
	users userDomain.UserRepository,
	clk clock.Clock,
	logger *zap.Logger,
) *RequestService {
	return &RequestService{requests: requests, items: items, users: users, clock: clk, logger: logger}
}

// CreateRequest records userID's ask for an item.
func (s *RequestService) CreateRequest(ctx context.Context, userID uuid.UUID, req CreateItemRequestRequest) (*ItemRequestDTO, error) {
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return nil, err
	}
	r, err := requestDomain.NewItemRequest(userID, req.Description, s.clock.Now())
	if err != nil {
		return nil, err
	}
	if err := s.requests.Save(ctx, r); err != nil {
		return nil, err
	}

	s.logger.Info("item request created",
		zap.String("request_id", r.ID().String()),
		zap.String("requestor_id", userID.String()),
	)
	result := toItemRequestDTO(r, nil)
	return &result, nil
}

// GetOwnRequests returns userID's requests, newest first, with answering items.
func (s *RequestService) GetOwnRequests(ctx context.Context, userID uuid.UUID) ([]ItemRequestDTO, error) {
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return nil, err
	}
	reqs, err := s.requests.FindByRequestor(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.withItems(ctx, reqs)
}

// GetOtherRequests returns a page of other users' requests, newest first.
func (s *RequestService) GetOtherRequests(ctx context.Context, userID uuid.UUID, from, size int) ([]ItemRequestDTO, error) {
	offset, err := pageOffset(from, size)
	if err != nil {
		return nil, err
	}
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return nil, err
	}
	reqs, err := s.requests.FindOthers(ctx, userID, offset, size)
	if err != nil {
		return nil, err
	}
	return s.withItems(ctx, reqs)
}

// GetRequest returns a single request with its answering items.
func (s *RequestService) GetRequest(ctx context.Context, requestID, userID uuid.UUID) (*ItemRequestDTO, error) {
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return nil, err
	}
	r, err := s.requests.FindByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	dtos, err := s.withItems(ctx, []*requestDomain.ItemRequest{r})
	if err != nil {
		return nil, err
	}
	return &dtos[0], nil
}

func (s *RequestService) withItems(ctx context.Context, reqs []*requestDomain.ItemRequest) ([]ItemRequestDTO, error) {
	ids := make([]uuid.UUID, len(reqs))
	for i, r := range reqs {
		ids[i] = r.ID()
	}
	items, err := s.items.FindByRequestIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byRequest := make(map[uuid.UUID][]*itemDomain.Item)
	for _, it := range items {
		if it.RequestID() != nil {
			byRequest[*it.RequestID()] = append(byRequest[*it.RequestID()], it)
		}
	}

	dtos := make([]ItemRequestDTO, len(reqs))
	for i, r := range reqs {
		dtos[i] = toItemRequestDTO(r, byRequest[r.ID()])
	}
	return dtos, nil
}

func toItemRequestDTO(r *requestDomain.ItemRequest, items []*itemDomain.Item) ItemRequestDTO {
	dto := ItemRequestDTO{
		ID:          r.ID(),
		Description: r.Description(),
		RequestorID: r.RequestorID(),
		Created:     r.CreatedAt(),
		Items:       make([]ItemDTO, len(items)),
	}
	for i, it := range items {
		dto.Items[i] = toItemDTO(it)
	}
	return dto
}
