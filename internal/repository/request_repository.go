package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	requestDomain "github.com/shareit/service-booking/internal/domain/request"
	"github.com/shareit/service-booking/pkg/domain"
)

// RequestModel is the GORM model for the item_requests table.
type RequestModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	RequestorID uuid.UUID `gorm:"type:uuid;not null;index"`
	Description string    `gorm:"type:varchar(512);not null"`
	CreatedAt   time.Time `gorm:"type:timestamptz;not null"`
}

func (RequestModel) TableName() string { return "item_requests" }

// GormRequestRepository implements RequestRepository using GORM.
type GormRequestRepository struct {
	db *gorm.DB
}

func NewGormRequestRepository(db *gorm.DB) *GormRequestRepository {
	return &GormRequestRepository{db: db}
}

func (r *GormRequestRepository) FindByID(ctx context.Context, id uuid.UUID) (*requestDomain.ItemRequest, error) {
	var model RequestModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Request", id.String())
		}
		return nil, fmt.Errorf("failed to find request by ID: %w", err)
	}
	return toRequestDomain(&model), nil
}

func (r *GormRequestRepository) FindByRequestor(ctx context.Context, requestorID uuid.UUID) ([]*requestDomain.ItemRequest, error) {
	var models []RequestModel
	if err := r.db.WithContext(ctx).
		Where("requestor_id = ?", requestorID).
		Order("created_at DESC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find own requests: %w", err)
	}
	return toRequestDomains(models), nil
}

func (r *GormRequestRepository) FindOthers(ctx context.Context, userID uuid.UUID, offset, limit int) ([]*requestDomain.ItemRequest, error) {
	var models []RequestModel
	if err := r.db.WithContext(ctx).
		Where("requestor_id <> ?", userID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find requests: %w", err)
	}
	return toRequestDomains(models), nil
}

func (r *GormRequestRepository) Save(ctx context.Context, req *requestDomain.ItemRequest) error {
	model := RequestModel{
		ID:          req.ID(),
		RequestorID: req.RequestorID(),
		Description: req.Description(),
		CreatedAt:   req.CreatedAt(),
	}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return fmt.Errorf("failed to save request: %w", err)
	}
	return nil
}

func toRequestDomain(m *RequestModel) *requestDomain.ItemRequest {
	return requestDomain.Reconstruct(m.ID, m.RequestorID, m.Description, m.CreatedAt.UTC())
}

func toRequestDomains(models []RequestModel) []*requestDomain.ItemRequest {
	reqs := make([]*requestDomain.ItemRequest, len(models))
	for i := range models {
		reqs[i] = toRequestDomain(&models[i])
	}
	return reqs
}
