// Package cache fronts item lookups with Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	itemDomain "github.com/shareit/service-booking/internal/domain/item"
)

const keyPrefix = "shareit:item:"

type itemEntry struct {
	ID          uuid.UUID  `json:"id"`
	OwnerID     uuid.UUID  `json:"owner_id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Available   bool       `json:"available"`
	RequestID   *uuid.UUID `json:"request_id,omitempty"`
	Version     int64      `json:"version"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// ItemRepository is a read-through cache around another ItemRepository. Only FindByID is
// cached; writes evict the entry. Redis failures degrade to the inner repository.
type ItemRepository struct {
	inner  itemDomain.ItemRepository
	rdb    *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewItemRepository wraps inner. A non-positive ttl defaults to five minutes.
func NewItemRepository(inner itemDomain.ItemRepository, rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *ItemRepository {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &ItemRepository{inner: inner, rdb: rdb, ttl: ttl, logger: logger}
}

func key(id uuid.UUID) string { return keyPrefix + id.String() }

// FindByID serves from Redis when possible.
func (r *ItemRepository) FindByID(ctx context.Context, id uuid.UUID) (*itemDomain.Item, error) {
	bs, err := r.rdb.Get(ctx, key(id)).Bytes()
	switch {
	case err == nil:
		var e itemEntry
		if jsonErr := json.Unmarshal(bs, &e); jsonErr == nil {
			return itemDomain.Reconstruct(e.ID, e.OwnerID, e.Name, e.Description, e.Available,
				e.RequestID, e.Version, e.CreatedAt, e.UpdatedAt), nil
		}
		r.logger.Warn("dropping unreadable item cache entry", zap.String("item_id", id.String()))
	case !errors.Is(err, redis.Nil):
		r.logger.Warn("item cache read failed", zap.String("item_id", id.String()), zap.Error(err))
	}

	it, err := r.inner.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	r.store(ctx, it)
	return it, nil
}

func (r *ItemRepository) FindByOwnerID(ctx context.Context, ownerID uuid.UUID, offset, limit int) ([]*itemDomain.Item, error) {
	return r.inner.FindByOwnerID(ctx, ownerID, offset, limit)
}

func (r *ItemRepository) Search(ctx context.Context, text string, offset, limit int) ([]*itemDomain.Item, error) {
	return r.inner.Search(ctx, text, offset, limit)
}

func (r *ItemRepository) FindByRequestIDs(ctx context.Context, requestIDs []uuid.UUID) ([]*itemDomain.Item, error) {
	return r.inner.FindByRequestIDs(ctx, requestIDs)
}

func (r *ItemRepository) Save(ctx context.Context, it *itemDomain.Item) error {
	return r.inner.Save(ctx, it)
}

// Update writes through and evicts the cached copy, even when the write fails.
func (r *ItemRepository) Update(ctx context.Context, it *itemDomain.Item) error {
	err := r.inner.Update(ctx, it)
	r.evict(ctx, it.ID())
	return err
}

func (r *ItemRepository) store(ctx context.Context, it *itemDomain.Item) {
	bs, err := json.Marshal(itemEntry{
		ID:          it.ID(),
		OwnerID:     it.OwnerID(),
		Name:        it.Name(),
		Description: it.Description(),
		Available:   it.Available(),
		RequestID:   it.RequestID(),
		Version:     it.Version(),
		CreatedAt:   it.CreatedAt(),
		UpdatedAt:   it.UpdatedAt(),
	})
	if err != nil {
		return
	}
	if err := r.rdb.Set(ctx, key(it.ID()), bs, r.ttl).Err(); err != nil {
		r.logger.Warn("item cache write failed", zap.String("item_id", it.ID().String()), zap.Error(err))
	}
}

func (r *ItemRepository) evict(ctx context.Context, id uuid.UUID) {
	if err := r.rdb.Del(ctx, key(id)).Err(); err != nil {
		r.logger.Warn("item cache eviction failed", zap.String("item_id", id.String()), zap.Error(err))
	}
}

// NewClient connects to Redis and pings it. Callers fall back to the uncached repository on error.
func NewClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}
