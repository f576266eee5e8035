package booking

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/shareit/service-booking/pkg/domain"
)

// State is a named list filter.
type State string

const (
	StateAll      State = "ALL"
	StateCurrent  State = "CURRENT"
	StatePast     State = "PAST"
	StateFuture   State = "FUTURE"
	StateWaiting  State = "WAITING"
	StateRejected State = "REJECTED"
)

// ParseState accepts a filter name in any letter case.
func ParseState(s string) (State, error) {
	switch st := State(strings.ToUpper(strings.TrimSpace(s))); st {
	case StateAll, StateCurrent, StatePast, StateFuture, StateWaiting, StateRejected:
		return st, nil
	default:
		return "", domain.NewUnsupportedStateError()
	}
}

// Perspective selects whether the actor is matched as booker or as item owner.
type Perspective string

const (
	PerspectiveBooker Perspective = "BOOKER"
	PerspectiveOwner  Perspective = "OWNER"
)

// Query is a resolved list request against the booking store. Time bounds are strict.
// Results are ordered by start descending, ties in insertion order.
type Query struct {
	Perspective Perspective
	ActorID     uuid.UUID

	StartBefore *time.Time
	StartAfter  *time.Time
	EndBefore   *time.Time
	EndAfter    *time.Time
	Status      *BookingStatus

	Page int
	Size int
}

// NewQuery translates a state filter into store predicates evaluated at now.
//
// from is coerced to a page index with integer division, so a from that is not a multiple
// of size lands on the page containing it.
func NewQuery(state string, perspective Perspective, actorID uuid.UUID, now time.Time, from, size int) (Query, error) {
	if from < 0 {
		return Query{}, domain.NewValidationError("from must not be negative")
	}
	if size <= 0 {
		return Query{}, domain.NewValidationError("size must be positive")
	}
	if perspective != PerspectiveBooker && perspective != PerspectiveOwner {
		return Query{}, domain.NewValidationError("unknown perspective: " + string(perspective))
	}
	st, err := ParseState(state)
	if err != nil {
		return Query{}, err
	}

	now = now.UTC()
	q := Query{
		Perspective: perspective,
		ActorID:     actorID,
		Page:        from / size,
		Size:        size,
	}

	switch st {
	case StateAll:
	case StateCurrent:
		q.StartBefore = &now
		q.EndAfter = &now
	case StatePast:
		q.EndBefore = &now
	case StateFuture:
		q.StartAfter = &now
	case StateWaiting:
		s := StatusWaiting
		q.Status = &s
	case StateRejected:
		s := StatusRejected
		q.Status = &s
	}
	return q, nil
}

// Offset returns the number of rows to skip.
func (q Query) Offset() int {
	return q.Page * q.Size
}

// Matches evaluates the query's filters (not its paging) against b.
func (q Query) Matches(b *Booking) bool {
	switch q.Perspective {
	case PerspectiveBooker:
		if b.BookerID() != q.ActorID {
			return false
		}
	case PerspectiveOwner:
		if b.OwnerID() != q.ActorID {
			return false
		}
	default:
		return false
	}
	if q.StartBefore != nil && !b.Start().Before(*q.StartBefore) {
		return false
	}
	if q.StartAfter != nil && !b.Start().After(*q.StartAfter) {
		return false
	}
	if q.EndBefore != nil && !b.End().Before(*q.EndBefore) {
		return false
	}
	if q.EndAfter != nil && !b.End().After(*q.EndAfter) {
		return false
	}
	if q.Status != nil && b.Status() != *q.Status {
		return false
	}
	return true
}
