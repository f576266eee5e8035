package request

import (
	"context"

	"github.com/google/uuid"
)

// RequestRepository defines persistence operations for item requests.
type RequestRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*ItemRequest, error)
	// FindByRequestor returns the user's requests, newest first.
	FindByRequestor(ctx context.Context, requestorID uuid.UUID) ([]*ItemRequest, error)
	// FindOthers returns a page of requests made by anyone but userID, newest first.
	FindOthers(ctx context.Context, userID uuid.UUID, offset, limit int) ([]*ItemRequest, error)
	Save(ctx context.Context, req *ItemRequest) error
}
