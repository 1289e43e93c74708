package repository

import (
	"context"
	"errors"
	"strings"

	"murmur/internal/cache"
	"murmur/internal/models"

	"gorm.io/gorm"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	ListFeed(ctx context.Context, viewerID uint, hashtag string, limit, offset int) ([]*models.Post, error)
	ListLiked(ctx context.Context, viewerID uint, limit, offset int) ([]*models.Post, error)
	ListByUser(ctx context.Context, userID uint, publishedOnly bool, limit, offset int) ([]*models.Post, error)
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id uint) error
	Publish(ctx context.Context, id uint) (bool, error)
	ToggleLike(ctx context.Context, userID, postID uint) (ToggleResult, error)
	ListLikes(ctx context.Context, postID uint, limit, offset int) ([]models.Like, error)
}

// postRepository implements PostRepository
type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

// applyAnnotations adds subqueries computing like and comment counts in the
// same query. DISTINCT counting so a row created or deleted mid-query is never
// counted twice; counts reflect current state, nothing is denormalized.
func (r *postRepository) applyAnnotations(db *gorm.DB) *gorm.DB {
	return db.Select("DISTINCT posts.*, " +
		"(SELECT COUNT(DISTINCT likes.id) FROM likes WHERE likes.post_id = posts.id) AS amount_of_likes, " +
		"(SELECT COUNT(DISTINCT comments.id) FROM comments WHERE comments.post_id = posts.id AND comments.deleted_at IS NULL) AS amount_of_comments")
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := r.applyAnnotations(r.db.WithContext(ctx)).
		Preload("User").
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("comments.id ASC")
		}).
		Preload("Comments.User").
		First(&post, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &post, nil
}

// ListFeed returns the scoped, annotated, recency-ordered feed page for the
// viewer: published posts whose author is the viewer or someone the viewer
// follows, optionally narrowed by a case-insensitive hashtag substring.
// The follow lookup stays a subquery so the graph membership test runs on the
// follows(follower_id) index instead of materializing the followee set.
func (r *postRepository) ListFeed(ctx context.Context, viewerID uint, hashtag string, limit, offset int) ([]*models.Post, error) {
	var posts []*models.Post
	q := r.applyAnnotations(r.db.WithContext(ctx)).
		Preload("User").
		Where("posts.is_published = ?", true).
		Where("posts.user_id = ? OR posts.user_id IN (SELECT followee_id FROM follows WHERE follower_id = ?)",
			viewerID, viewerID)
	if hashtag != "" {
		q = q.Where("LOWER(posts.hashtag) LIKE ?", "%"+strings.ToLower(hashtag)+"%")
	}
	err := q.Order("posts.created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

// ListLiked returns the posts the viewer has liked, annotated and ordered by
// recency. Deliberately not scoped by the follow graph: a user keeps seeing
// everything they liked.
func (r *postRepository) ListLiked(ctx context.Context, viewerID uint, limit, offset int) ([]*models.Post, error) {
	var posts []*models.Post
	err := r.applyAnnotations(r.db.WithContext(ctx)).
		Preload("User").
		Where("posts.is_published = ?", true).
		Where("posts.id IN (SELECT post_id FROM likes WHERE user_id = ?)", viewerID).
		Order("posts.created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *postRepository) ListByUser(ctx context.Context, userID uint, publishedOnly bool, limit, offset int) ([]*models.Post, error) {
	var posts []*models.Post
	q := r.applyAnnotations(r.db.WithContext(ctx)).
		Preload("User").
		Where("posts.user_id = ?", userID)
	if publishedOnly {
		q = q.Where("posts.is_published = ?", true)
	}
	err := q.Order("posts.created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Save(post).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidatePost(ctx, post.ID)
	return nil
}

// Delete removes the post together with its comments and likes. Likes are
// hard rows; comments follow the soft-delete convention.
func (r *postRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Post{}, id).Error
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidatePost(ctx, id)
	return nil
}

// Publish flips the post to published. Returns false when the post no longer
// exists; the scheduler treats that as a silent skip.
func (r *postRepository) Publish(ctx context.Context, id uint) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("id = ?", id).
		Update("is_published", true)
	if res.Error != nil {
		return false, models.NewInternalError(res.Error)
	}
	if res.RowsAffected > 0 {
		cache.InvalidatePost(ctx, id)
	}
	return res.RowsAffected > 0, nil
}

func (r *postRepository) ToggleLike(ctx context.Context, userID, postID uint) (ToggleResult, error) {
	// The post must exist; toggling a like on a missing post is NOT_FOUND,
	// not a silently created orphan row.
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", postID).Count(&count).Error; err != nil {
		return "", models.NewInternalError(err)
	}
	if count == 0 {
		return "", models.NewNotFoundError("Post", postID)
	}

	res, err := toggleRow(ctx, r.db, "like",
		&models.Like{PostID: postID, UserID: userID},
		func(db *gorm.DB) *gorm.DB {
			return db.Where("post_id = ? AND user_id = ?", postID, userID).Delete(&models.Like{})
		})
	if err == nil {
		cache.InvalidatePost(ctx, postID)
	}
	return res, err
}

func (r *postRepository) ListLikes(ctx context.Context, postID uint, limit, offset int) ([]models.Like, error) {
	var likes []models.Like
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("post_id = ?", postID).
		Order("id ASC").
		Limit(limit).
		Offset(offset).
		Find(&likes).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return likes, nil
}
