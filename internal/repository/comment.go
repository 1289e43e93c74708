package repository

import (
	"context"
	"errors"

	"murmur/internal/cache"
	"murmur/internal/models"

	"gorm.io/gorm"
)

// CommentRepository defines interface for comment operations
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id uint) (*models.Comment, error)
	ListByPost(ctx context.Context, postID uint, limit, offset int) ([]*models.Comment, error)
	Delete(ctx context.Context, id uint) error
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new CommentRepository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	if err := r.db.WithContext(ctx).Create(comment).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidatePost(ctx, comment.PostID)
	return nil
}

func (r *commentRepository) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).Preload("User").First(&comment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Comment", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &comment, nil
}

// ListByPost returns comments in insertion order.
func (r *commentRepository) ListByPost(ctx context.Context, postID uint, limit, offset int) ([]*models.Comment, error) {
	var comments []*models.Comment
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("post_id = ?", postID).
		Order("id ASC").
		Limit(limit).
		Offset(offset).
		Find(&comments).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return comments, nil
}

func (r *commentRepository) Delete(ctx context.Context, id uint) error {
	comment, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Delete(&models.Comment{}, id).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidatePost(ctx, comment.PostID)
	return nil
}
