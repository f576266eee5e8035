package user

import (
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/shareit/service-booking/pkg/domain"
)

// Column widths of the users table.
const (
	MaxNameLength  = 255
	MaxEmailLength = 512
)

// User is a registered participant who can own items and book them.
type User struct {
	id        uuid.UUID
	name      string
	email     string
	createdAt time.Time
	updatedAt time.Time
}

// NewUser creates a user with a validated name and email.
func NewUser(name, email string, now time.Time) (*User, error) {
	name, err := normalizeName(name)
	if err != nil {
		return nil, err
	}
	email, err = normalizeEmail(email)
	if err != nil {
		return nil, err
	}

	now = now.UTC()
	return &User{
		id:        uuid.New(),
		name:      name,
		email:     email,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// Reconstruct rebuilds a User from persistence data (no validation).
func Reconstruct(id uuid.UUID, name, email string, createdAt, updatedAt time.Time) *User {
	return &User{id: id, name: name, email: email, createdAt: createdAt, updatedAt: updatedAt}
}

func (u *User) ID() uuid.UUID        { return u.id }
func (u *User) Name() string         { return u.name }
func (u *User) Email() string        { return u.email }
func (u *User) CreatedAt() time.Time { return u.createdAt }
func (u *User) UpdatedAt() time.Time { return u.updatedAt }

// Update applies a partial update. Nil fields are left unchanged. Nothing changes on error.
func (u *User) Update(name, email *string, now time.Time) error {
	newName, newEmail := u.name, u.email
	if name != nil {
		n, err := normalizeName(*name)
		if err != nil {
			return err
		}
		newName = n
	}
	if email != nil {
		e, err := normalizeEmail(*email)
		if err != nil {
			return err
		}
		newEmail = e
	}
	u.name, u.email = newName, newEmail
	u.updatedAt = now.UTC()
	return nil
}

func normalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", domain.NewValidationError("user name is required")
	}
	if err := domain.CheckMaxLength("user name", name, MaxNameLength); err != nil {
		return "", err
	}
	return name, nil
}

func normalizeEmail(email string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", domain.NewValidationError("email is required")
	}
	if err := domain.CheckMaxLength("email", email, MaxEmailLength); err != nil {
		return "", err
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", domain.NewValidationError("invalid email: " + email)
	}
	return strings.ToLower(email), nil
}
