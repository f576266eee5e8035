package item

import (
	"context"

	"github.com/google/uuid"
)

// ItemRepository defines persistence operations for items.
type ItemRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Item, error)
	// FindByOwnerID returns a page of the owner's items in creation order.
	FindByOwnerID(ctx context.Context, ownerID uuid.UUID, offset, limit int) ([]*Item, error)
	// Search returns a page of available items whose name or description contains text.
	Search(ctx context.Context, text string, offset, limit int) ([]*Item, error)
	FindByRequestIDs(ctx context.Context, requestIDs []uuid.UUID) ([]*Item, error)
	Save(ctx context.Context, item *Item) error
	// Update persists changes with optimistic locking on the version.
	Update(ctx context.Context, item *Item) error
}
