package repository

import (
	"context"

	"murmur/internal/cache"
	"murmur/internal/models"

	"gorm.io/gorm"
)

// FollowRepository defines the interface for the social graph: toggling
// directed edges and answering follower/following queries.
type FollowRepository interface {
	Toggle(ctx context.Context, followerID, followeeID uint) (ToggleResult, error)
	IsFollowing(ctx context.Context, followerID, followeeID uint) (bool, error)
	Followers(ctx context.Context, userID uint, limit, offset int) ([]models.User, error)
	Following(ctx context.Context, userID uint, limit, offset int) ([]models.User, error)
	Counts(ctx context.Context, userID uint) (following int64, followers int64, err error)
}

// followRepository implements FollowRepository
type followRepository struct {
	db *gorm.DB
}

// NewFollowRepository creates a new follow repository
func NewFollowRepository(db *gorm.DB) FollowRepository {
	return &followRepository{db: db}
}

func (r *followRepository) Toggle(ctx context.Context, followerID, followeeID uint) (ToggleResult, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", followeeID).Count(&count).Error; err != nil {
		return "", models.NewInternalError(err)
	}
	if count == 0 {
		return "", models.NewNotFoundError("User", followeeID)
	}

	res, err := toggleRow(ctx, r.db, "follow",
		&models.Follow{FollowerID: followerID, FolloweeID: followeeID},
		func(db *gorm.DB) *gorm.DB {
			return db.Where("follower_id = ? AND followee_id = ?", followerID, followeeID).Delete(&models.Follow{})
		})
	if err == nil {
		cache.InvalidateUser(ctx, followeeID)
		cache.InvalidateUser(ctx, followerID)
	}
	return res, err
}

func (r *followRepository) IsFollowing(ctx context.Context, followerID, followeeID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Count(&count).Error
	if err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

// Followers returns the users following userID, in edge insertion order.
func (r *followRepository) Followers(ctx context.Context, userID uint, limit, offset int) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).
		Table("users").
		Joins("JOIN follows f ON f.follower_id = users.id").
		Where("f.followee_id = ?", userID).
		Order("f.id ASC").
		Limit(limit).
		Offset(offset).
		Find(&users).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

// Following returns the users userID follows, in edge insertion order.
func (r *followRepository) Following(ctx context.Context, userID uint, limit, offset int) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).
		Table("users").
		Joins("JOIN follows f ON f.followee_id = users.id").
		Where("f.follower_id = ?", userID).
		Order("f.id ASC").
		Limit(limit).
		Offset(offset).
		Find(&users).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

func (r *followRepository) Counts(ctx context.Context, userID uint) (int64, int64, error) {
	var following, followers int64
	if err := r.db.WithContext(ctx).Model(&models.Follow{}).Where("follower_id = ?", userID).Count(&following).Error; err != nil {
		return 0, 0, models.NewInternalError(err)
	}
	if err := r.db.WithContext(ctx).Model(&models.Follow{}).Where("followee_id = ?", userID).Count(&followers).Error; err != nil {
		return 0, 0, models.NewInternalError(err)
	}
	return following, followers, nil
}
