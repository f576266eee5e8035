// Package testutil provides in-memory repositories and fixtures for unit tests.
package testutil

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	bookingDomain "github.com/shareit/service-booking/internal/domain/booking"
	commentDomain "github.com/shareit/service-booking/internal/domain/comment"
	itemDomain "github.com/shareit/service-booking/internal/domain/item"
	requestDomain "github.com/shareit/service-booking/internal/domain/request"
	userDomain "github.com/shareit/service-booking/internal/domain/user"
	"github.com/shareit/service-booking/pkg/domain"
)

// Store holds every aggregate in memory. Its repositories share one lock so cross-aggregate
// joins (booking owner, comment author) see a consistent view.
type Store struct {
	mu       sync.Mutex
	users    map[uuid.UUID]*userDomain.User
	items    map[uuid.UUID]*itemDomain.Item
	itemSeq  []uuid.UUID
	bookings []*bookingDomain.Booking
	comments []*commentDomain.Comment
	requests []*requestDomain.ItemRequest
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		users: make(map[uuid.UUID]*userDomain.User),
		items: make(map[uuid.UUID]*itemDomain.Item),
	}
}

func (s *Store) Users() *UserRepo       { return &UserRepo{s} }
func (s *Store) Items() *ItemRepo       { return &ItemRepo{s} }
func (s *Store) Bookings() *BookingRepo { return &BookingRepo{s} }
func (s *Store) Comments() *CommentRepo { return &CommentRepo{s} }
func (s *Store) Requests() *RequestRepo { return &RequestRepo{s} }

func window[T any](all []T, offset, limit int) []T {
	if offset >= len(all) {
		return []T{}
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end]
}

// --- Users ---

// UserRepo implements userDomain.UserRepository.
type UserRepo struct{ s *Store }

func (r *UserRepo) FindByID(_ context.Context, id uuid.UUID) (*userDomain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, domain.NewNotFoundError("User", id.String())
	}
	cp := *u
	return &cp, nil
}

func (r *UserRepo) FindAll(_ context.Context) ([]*userDomain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*userDomain.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		cp := *u
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt().Before(out[j].CreatedAt()) })
	return out, nil
}

func (r *UserRepo) Save(_ context.Context, u *userDomain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.emailTaken(u) {
		return domain.NewConflictError("email already in use")
	}
	cp := *u
	r.s.users[u.ID()] = &cp
	return nil
}

func (r *UserRepo) Update(_ context.Context, u *userDomain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[u.ID()]; !ok {
		return domain.NewNotFoundError("User", u.ID().String())
	}
	if r.emailTaken(u) {
		return domain.NewConflictError("email already in use")
	}
	cp := *u
	r.s.users[u.ID()] = &cp
	return nil
}

func (r *UserRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[id]; !ok {
		return domain.NewNotFoundError("User", id.String())
	}
	delete(r.s.users, id)
	return nil
}

func (r *UserRepo) emailTaken(u *userDomain.User) bool {
	for id, other := range r.s.users {
		if id != u.ID() && other.Email() == u.Email() {
			return true
		}
	}
	return false
}

// --- Items ---

// ItemRepo implements itemDomain.ItemRepository.
type ItemRepo struct{ s *Store }

func (r *ItemRepo) FindByID(_ context.Context, id uuid.UUID) (*itemDomain.Item, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	it, ok := r.s.items[id]
	if !ok {
		return nil, domain.NewNotFoundError("Item", id.String())
	}
	cp := *it
	return &cp, nil
}

func (r *ItemRepo) FindByOwnerID(_ context.Context, ownerID uuid.UUID, offset, limit int) ([]*itemDomain.Item, error) {
	return r.filter(offset, limit, func(it *itemDomain.Item) bool { return it.OwnerID() == ownerID }), nil
}

func (r *ItemRepo) Search(_ context.Context, text string, offset, limit int) ([]*itemDomain.Item, error) {
	return r.filter(offset, limit, func(it *itemDomain.Item) bool { return it.Available() && it.Matches(text) }), nil
}

func (r *ItemRepo) FindByRequestIDs(_ context.Context, requestIDs []uuid.UUID) ([]*itemDomain.Item, error) {
	want := make(map[uuid.UUID]bool, len(requestIDs))
	for _, id := range requestIDs {
		want[id] = true
	}
	return r.filter(0, math.MaxInt, func(it *itemDomain.Item) bool {
		return it.RequestID() != nil && want[*it.RequestID()]
	}), nil
}

func (r *ItemRepo) Save(_ context.Context, it *itemDomain.Item) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *it
	r.s.items[it.ID()] = &cp
	r.s.itemSeq = append(r.s.itemSeq, it.ID())
	return nil
}

func (r *ItemRepo) Update(_ context.Context, it *itemDomain.Item) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.items[it.ID()]
	if !ok || cur.Version() != it.Version()-1 {
		return domain.NewConflictError("item was modified by another transaction")
	}
	cp := *it
	r.s.items[it.ID()] = &cp
	return nil
}

func (r *ItemRepo) filter(offset, limit int, keep func(*itemDomain.Item) bool) []*itemDomain.Item {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*itemDomain.Item
	for _, id := range r.s.itemSeq {
		if it := r.s.items[id]; keep(it) {
			cp := *it
			out = append(out, &cp)
		}
	}
	return window(out, offset, limit)
}

// --- Bookings ---

// BookingRepo implements bookingDomain.BookingRepository. Slice order is insertion order.
type BookingRepo struct{ s *Store }

func (r *BookingRepo) FindByID(_ context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, b := range r.s.bookings {
		if b.ID() == id {
			return r.withItem(b), nil
		}
	}
	return nil, domain.NewNotFoundError("Booking", id.String())
}

func (r *BookingRepo) Find(_ context.Context, q bookingDomain.Query) ([]*bookingDomain.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*bookingDomain.Booking
	for _, b := range r.s.bookings {
		if bk := r.withItem(b); q.Matches(bk) {
			out = append(out, bk)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Start().After(out[j].Start()) })
	return window(out, q.Offset(), q.Size), nil
}

func (r *BookingRepo) FindLastApproved(_ context.Context, itemID uuid.UUID, now time.Time) (*bookingDomain.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var best *bookingDomain.Booking
	for _, b := range r.s.bookings {
		if b.ItemID() != itemID || b.Status() != bookingDomain.StatusApproved || !b.Start().Before(now) {
			continue
		}
		if best == nil || b.End().After(best.End()) {
			best = b
		}
	}
	if best == nil {
		return nil, nil
	}
	return r.withItem(best), nil
}

func (r *BookingRepo) FindNextApproved(_ context.Context, itemID uuid.UUID, now time.Time) (*bookingDomain.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var best *bookingDomain.Booking
	for _, b := range r.s.bookings {
		if b.ItemID() != itemID || b.Status() != bookingDomain.StatusApproved || !b.Start().After(now) {
			continue
		}
		if best == nil || b.Start().Before(best.Start()) {
			best = b
		}
	}
	if best == nil {
		return nil, nil
	}
	return r.withItem(best), nil
}

func (r *BookingRepo) ExistsFinishedByBooker(_ context.Context, itemID, bookerID uuid.UUID, now time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, b := range r.s.bookings {
		if b.ItemID() == itemID && b.BookerID() == bookerID && b.End().Before(now) {
			return true, nil
		}
	}
	return false, nil
}

func (r *BookingRepo) Save(_ context.Context, b *bookingDomain.Booking) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *b
	r.s.bookings = append(r.s.bookings, &cp)
	return nil
}

func (r *BookingRepo) Update(_ context.Context, b *bookingDomain.Booking) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i, cur := range r.s.bookings {
		if cur.ID() != b.ID() {
			continue
		}
		if cur.Version() != b.Version()-1 {
			break
		}
		cp := *b
		r.s.bookings[i] = &cp
		return nil
	}
	return domain.NewConflictError("booking was modified by another transaction")
}

// withItem returns a copy carrying the item's current owner and name, like the SQL join.
func (r *BookingRepo) withItem(b *bookingDomain.Booking) *bookingDomain.Booking {
	snap := b.Item()
	if it, ok := r.s.items[b.ItemID()]; ok {
		snap.OwnerID = it.OwnerID()
		snap.Name = it.Name()
	}
	return bookingDomain.ReconstructBooking(b.ID(), snap, b.BookerID(), b.Start(), b.End(),
		b.Status(), b.Version(), b.CreatedAt(), b.UpdatedAt())
}

// --- Comments ---

// CommentRepo implements commentDomain.CommentRepository.
type CommentRepo struct{ s *Store }

func (r *CommentRepo) Save(_ context.Context, c *commentDomain.Comment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *c
	r.s.comments = append(r.s.comments, &cp)
	return nil
}

func (r *CommentRepo) FindByItemIDs(_ context.Context, itemIDs []uuid.UUID) ([]*commentDomain.Comment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	want := make(map[uuid.UUID]bool, len(itemIDs))
	for _, id := range itemIDs {
		want[id] = true
	}
	var out []*commentDomain.Comment
	for i := len(r.s.comments) - 1; i >= 0; i-- {
		if c := r.s.comments[i]; want[c.ItemID()] {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

// --- Requests ---

// RequestRepo implements requestDomain.RequestRepository.
type RequestRepo struct{ s *Store }

func (r *RequestRepo) FindByID(_ context.Context, id uuid.UUID) (*requestDomain.ItemRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, req := range r.s.requests {
		if req.ID() == id {
			cp := *req
			return &cp, nil
		}
	}
	return nil, domain.NewNotFoundError("Request", id.String())
}

func (r *RequestRepo) FindByRequestor(_ context.Context, requestorID uuid.UUID) ([]*requestDomain.ItemRequest, error) {
	return r.newestFirst(0, math.MaxInt, func(req *requestDomain.ItemRequest) bool {
		return req.RequestorID() == requestorID
	}), nil
}

func (r *RequestRepo) FindOthers(_ context.Context, userID uuid.UUID, offset, limit int) ([]*requestDomain.ItemRequest, error) {
	return r.newestFirst(offset, limit, func(req *requestDomain.ItemRequest) bool {
		return req.RequestorID() != userID
	}), nil
}

func (r *RequestRepo) Save(_ context.Context, req *requestDomain.ItemRequest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *req
	r.s.requests = append(r.s.requests, &cp)
	return nil
}

func (r *RequestRepo) newestFirst(offset, limit int, keep func(*requestDomain.ItemRequest) bool) []*requestDomain.ItemRequest {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*requestDomain.ItemRequest
	for i := len(r.s.requests) - 1; i >= 0; i-- {
		if req := r.s.requests[i]; keep(req) {
			cp := *req
			out = append(out, &cp)
		}
	}
	return window(out, offset, limit)
}
