package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	bookingDomain "github.com/shareit/service-booking/internal/domain/booking"
	"github.com/shareit/service-booking/pkg/domain"
)

// BookingModel is the GORM model for the bookings table.
type BookingModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Seq       int64     `gorm:"->;type:bigserial;not null;uniqueIndex"`
	ItemID    uuid.UUID `gorm:"type:uuid;not null;index"`
	BookerID  uuid.UUID `gorm:"type:uuid;not null;index"`
	StartTime time.Time `gorm:"type:timestamptz;not null"`
	EndTime   time.Time `gorm:"type:timestamptz;not null"`
	Status    string    `gorm:"type:varchar(20);not null;index"`
	Version   int64     `gorm:"not null;default:1"`
	CreatedAt time.Time `gorm:"type:timestamptz;not null"`
	UpdatedAt time.Time `gorm:"type:timestamptz;not null"`
}

// TableName returns the table name for the GORM model.
func (BookingModel) TableName() string {
	return "bookings"
}

// bookingRow is a booking joined with the item columns the aggregate snapshots.
type bookingRow struct {
	BookingModel
	ItemOwnerID uuid.UUID
	ItemName    string
}

// GormBookingRepository is the GORM-based implementation of BookingRepository.
type GormBookingRepository struct {
	db *gorm.DB
}

// NewGormBookingRepository creates a new GormBookingRepository.
func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

func (r *GormBookingRepository) joined(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("bookings AS b").
		Select("b.*, i.owner_id AS item_owner_id, i.name AS item_name").
		Joins("JOIN items AS i ON i.id = b.item_id")
}

// FindByID retrieves a booking by its unique identifier.
func (r *GormBookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	var row bookingRow
	if err := r.joined(ctx).Where("b.id = ?", id).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Booking", id.String())
		}
		return nil, fmt.Errorf("failed to find booking by ID: %w", err)
	}
	return toDomainBooking(&row)
}

// Find returns one page of bookings matching q, ordered by start descending then insertion order.
func (r *GormBookingRepository) Find(ctx context.Context, q bookingDomain.Query) ([]*bookingDomain.Booking, error) {
	tx := r.joined(ctx)
	switch q.Perspective {
	case bookingDomain.PerspectiveBooker:
		tx = tx.Where("b.booker_id = ?", q.ActorID)
	case bookingDomain.PerspectiveOwner:
		tx = tx.Where("i.owner_id = ?", q.ActorID)
	default:
		return nil, domain.NewValidationError("unknown perspective: " + string(q.Perspective))
	}
	if q.StartBefore != nil {
		tx = tx.Where("b.start_time < ?", *q.StartBefore)
	}
	if q.StartAfter != nil {
		tx = tx.Where("b.start_time > ?", *q.StartAfter)
	}
	if q.EndBefore != nil {
		tx = tx.Where("b.end_time < ?", *q.EndBefore)
	}
	if q.EndAfter != nil {
		tx = tx.Where("b.end_time > ?", *q.EndAfter)
	}
	if q.Status != nil {
		tx = tx.Where("b.status = ?", string(*q.Status))
	}

	var rows []bookingRow
	if err := tx.
		Order("b.start_time DESC, b.seq ASC").
		Offset(q.Offset()).
		Limit(q.Size).
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to find bookings: %w", err)
	}
	return toDomainBookings(rows)
}

// FindLastApproved returns the approved booking of itemID that started before now and ends latest.
func (r *GormBookingRepository) FindLastApproved(ctx context.Context, itemID uuid.UUID, now time.Time) (*bookingDomain.Booking, error) {
	return r.findOne(
		r.joined(ctx).
			Where("b.item_id = ? AND b.status = ? AND b.start_time < ?", itemID, string(bookingDomain.StatusApproved), now).
			Order("b.end_time DESC, b.seq ASC"))
}

// FindNextApproved returns the approved booking of itemID that starts soonest after now.
func (r *GormBookingRepository) FindNextApproved(ctx context.Context, itemID uuid.UUID, now time.Time) (*bookingDomain.Booking, error) {
	return r.findOne(
		r.joined(ctx).
			Where("b.item_id = ? AND b.status = ? AND b.start_time > ?", itemID, string(bookingDomain.StatusApproved), now).
			Order("b.start_time ASC, b.seq ASC"))
}

func (r *GormBookingRepository) findOne(tx *gorm.DB) (*bookingDomain.Booking, error) {
	var rows []bookingRow
	if err := tx.Limit(1).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to find booking: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return toDomainBooking(&rows[0])
}

// ExistsFinishedByBooker reports whether bookerID has any booking of itemID that ended before now.
func (r *GormBookingRepository) ExistsFinishedByBooker(ctx context.Context, itemID, bookerID uuid.UUID, now time.Time) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).
		Where("item_id = ? AND booker_id = ? AND end_time < ?", itemID, bookerID, now).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to count finished bookings: %w", err)
	}
	return count > 0, nil
}

// Save persists a new booking.
func (r *GormBookingRepository) Save(ctx context.Context, bk *bookingDomain.Booking) error {
	if err := r.db.WithContext(ctx).Create(toBookingModel(bk)).Error; err != nil {
		return fmt.Errorf("failed to save booking: %w", err)
	}
	return nil
}

// Update persists changes to an existing booking with optimistic locking.
func (r *GormBookingRepository) Update(ctx context.Context, bk *bookingDomain.Booking) error {
	// The caller has already called IncrementVersion.
	expectedVersion := bk.Version() - 1
	result := r.db.WithContext(ctx).
		Model(&BookingModel{}).
		Where("id = ? AND version = ?", bk.ID(), expectedVersion).
		Updates(map[string]interface{}{
			"status":     string(bk.Status()),
			"version":    bk.Version(),
			"updated_at": bk.UpdatedAt(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update booking: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewConflictError("booking was modified by another transaction")
	}
	return nil
}

// --- Conversion Helpers ---

func toBookingModel(bk *bookingDomain.Booking) *BookingModel {
	return &BookingModel{
		ID:        bk.ID(),
		ItemID:    bk.ItemID(),
		BookerID:  bk.BookerID(),
		StartTime: bk.Start(),
		EndTime:   bk.End(),
		Status:    string(bk.Status()),
		Version:   bk.Version(),
		CreatedAt: bk.CreatedAt(),
		UpdatedAt: bk.UpdatedAt(),
	}
}

func toDomainBooking(row *bookingRow) (*bookingDomain.Booking, error) {
	status, err := bookingDomain.ParseBookingStatus(row.Status)
	if err != nil {
		return nil, err
	}
	item := bookingDomain.ItemSnapshot{ID: row.ItemID, OwnerID: row.ItemOwnerID, Name: row.ItemName}
	return bookingDomain.ReconstructBooking(
		row.ID,
		item,
		row.BookerID,
		row.StartTime.UTC(),
		row.EndTime.UTC(),
		status,
		row.Version,
		row.CreatedAt.UTC(),
		row.UpdatedAt.UTC(),
	), nil
}

func toDomainBookings(rows []bookingRow) ([]*bookingDomain.Booking, error) {
	bookings := make([]*bookingDomain.Booking, len(rows))
	for i := range rows {
		bk, err := toDomainBooking(&rows[i])
		if err != nil {
			return nil, err
		}
		bookings[i] = bk
	}
	return bookings, nil
}
