package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	commentDomain "github.com/shareit/service-booking/internal/domain/comment"
)

// CommentModel is the GORM model for the comments table.
type CommentModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	ItemID    uuid.UUID `gorm:"type:uuid;not null;index"`
	AuthorID  uuid.UUID `gorm:"type:uuid;not null"`
	Text      string    `gorm:"type:varchar(2000);not null"`
	CreatedAt time.Time `gorm:"type:timestamptz;not null"`
}

// TableName sets the table name.
func (CommentModel) TableName() string { return "comments" }

type commentRow struct {
	CommentModel
	AuthorName string
}

// GormCommentRepository implements CommentRepository using GORM.
type GormCommentRepository struct {
	db *gorm.DB
}

// NewGormCommentRepository creates a new GormCommentRepository.
func NewGormCommentRepository(db *gorm.DB) *GormCommentRepository {
	return &GormCommentRepository{db: db}
}

// Save persists a new comment.
func (r *GormCommentRepository) Save(ctx context.Context, c *commentDomain.Comment) error {
	model := toCommentModel(c)
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return fmt.Errorf("failed to save comment: %w", err)
	}
	return nil
}

// FindByItemIDs returns the comments of the given items with author names, newest first.
func (r *GormCommentRepository) FindByItemIDs(ctx context.Context, itemIDs []uuid.UUID) ([]*commentDomain.Comment, error) {
	if len(itemIDs) == 0 {
		return nil, nil
	}
	var rows []commentRow
	if err := r.db.WithContext(ctx).
		Table("comments AS c").
		Select("c.*, u.name AS author_name").
		Joins("JOIN users AS u ON u.id = c.author_id").
		Where("c.item_id IN ?", itemIDs).
		Order("c.created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to find comments: %w", err)
	}

	comments := make([]*commentDomain.Comment, len(rows))
	for i := range rows {
		comments[i] = toCommentDomain(&rows[i])
	}
	return comments, nil
}

func toCommentModel(c *commentDomain.Comment) CommentModel {
	return CommentModel{
		ID:        c.ID(),
		ItemID:    c.ItemID(),
		AuthorID:  c.AuthorID(),
		Text:      c.Text(),
		CreatedAt: c.CreatedAt(),
	}
}

func toCommentDomain(row *commentRow) *commentDomain.Comment {
	return commentDomain.Reconstruct(
		row.ID,
		row.ItemID,
		row.AuthorID,
		row.AuthorName,
		row.Text,
		row.CreatedAt.UTC(),
	)
}
