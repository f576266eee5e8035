package user

import (
	"context"

	"github.com/google/uuid"
)

// UserRepository defines persistence operations for users.
// Save and Update return a CONFLICT domain error when the email is taken.
type UserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindAll(ctx context.Context) ([]*User, error)
	Save(ctx context.Context, user *User) error
	Update(ctx context.Context, user *User) error
	Delete(ctx context.Context, id uuid.UUID) error
}
