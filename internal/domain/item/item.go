package item

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/shareit/service-booking/pkg/domain"
)

// Column widths of the items table.
const (
	MaxNameLength        = 255
	MaxDescriptionLength = 1000
)

// Item is a thing a user offers for borrowing.
type Item struct {
	id          uuid.UUID
	ownerID     uuid.UUID
	name        string
	description string
	available   bool
	requestID   *uuid.UUID
	version     int64
	createdAt   time.Time
	updatedAt   time.Time
}

// NewItem creates a listed item. requestID links the item to the request it answers.
func NewItem(ownerID uuid.UUID, name, description string, available *bool, requestID *uuid.UUID, now time.Time) (*Item, error) {
	if ownerID == uuid.Nil {
		return nil, domain.NewValidationError("owner ID is required")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.NewValidationError("item name is required")
	}
	if err := domain.CheckMaxLength("item name", name, MaxNameLength); err != nil {
		return nil, err
	}
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, domain.NewValidationError("item description is required")
	}
	if err := domain.CheckMaxLength("item description", description, MaxDescriptionLength); err != nil {
		return nil, err
	}
	if available == nil {
		return nil, domain.NewValidationError("item availability is required")
	}

	now = now.UTC()
	return &Item{
		id:          uuid.New(),
		ownerID:     ownerID,
		name:        name,
		description: description,
		available:   *available,
		requestID:   requestID,
		version:     1,
		createdAt:   now,
		updatedAt:   now,
	}, nil
}

// Reconstruct rebuilds an Item from persistence data (no validation).
func Reconstruct(
	id, ownerID uuid.UUID,
	name, description string,
	available bool,
	requestID *uuid.UUID,
	version int64,
	createdAt, updatedAt time.Time,
) *Item {
	return &Item{
		id:          id,
		ownerID:     ownerID,
		name:        name,
		description: description,
		available:   available,
		requestID:   requestID,
		version:     version,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}
}

// --- Getters ---

func (i *Item) ID() uuid.UUID         { return i.id }
func (i *Item) OwnerID() uuid.UUID    { return i.ownerID }
func (i *Item) Name() string          { return i.name }
func (i *Item) Description() string   { return i.description }
func (i *Item) Available() bool       { return i.available }
func (i *Item) RequestID() *uuid.UUID { return i.requestID }
func (i *Item) Version() int64        { return i.version }
func (i *Item) CreatedAt() time.Time  { return i.createdAt }
func (i *Item) UpdatedAt() time.Time  { return i.updatedAt }

// --- Behavior ---

// IsOwnedBy checks if the item belongs to the given user.
func (i *Item) IsOwnedBy(userID uuid.UUID) bool {
	return i.ownerID == userID
}

// Update applies a partial update. Nil fields are left unchanged, blank strings are ignored.
// Nothing changes when a value is too long.
func (i *Item) Update(name, description *string, available *bool, now time.Time) error {
	newName, newDescription := i.name, i.description
	if name != nil && strings.TrimSpace(*name) != "" {
		newName = strings.TrimSpace(*name)
		if err := domain.CheckMaxLength("item name", newName, MaxNameLength); err != nil {
			return err
		}
	}
	if description != nil && strings.TrimSpace(*description) != "" {
		newDescription = strings.TrimSpace(*description)
		if err := domain.CheckMaxLength("item description", newDescription, MaxDescriptionLength); err != nil {
			return err
		}
	}

	i.name, i.description = newName, newDescription
	if available != nil {
		i.available = *available
	}
	i.version++
	i.updatedAt = now.UTC()
	return nil
}

// Matches reports whether text occurs in the name or description, ignoring case.
func (i *Item) Matches(text string) bool {
	text = strings.ToLower(text)
	return strings.Contains(strings.ToLower(i.name), text) ||
		strings.Contains(strings.ToLower(i.description), text)
}
