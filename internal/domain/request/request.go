package request

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/shareit/service-booking/pkg/domain"
)

// MaxDescriptionLength is the width of item_requests.description.
const MaxDescriptionLength = 512

// ItemRequest is a user's public ask for an item nobody has listed yet.
type ItemRequest struct {
	id          uuid.UUID
	requestorID uuid.UUID
	description string
	createdAt   time.Time
}

// NewItemRequest creates a request with a non-blank description.
func NewItemRequest(requestorID uuid.UUID, description string, now time.Time) (*ItemRequest, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, domain.NewValidationError("request description is required")
	}
	if err := domain.CheckMaxLength("request description", description, MaxDescriptionLength); err != nil {
		return nil, err
	}
	return &ItemRequest{
		id:          uuid.New(),
		requestorID: requestorID,
		description: description,
		createdAt:   now.UTC(),
	}, nil
}

// Reconstruct rebuilds an ItemRequest from persistence.
func Reconstruct(id, requestorID uuid.UUID, description string, createdAt time.Time) *ItemRequest {
	return &ItemRequest{id: id, requestorID: requestorID, description: description, createdAt: createdAt}
}

func (r *ItemRequest) ID() uuid.UUID          { return r.id }
func (r *ItemRequest) RequestorID() uuid.UUID { return r.requestorID }
func (r *ItemRequest) Description() string    { return r.description }
func (r *ItemRequest) CreatedAt() time.Time   { return r.createdAt }
