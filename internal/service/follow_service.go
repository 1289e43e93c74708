package service

import (
	"context"

	"murmur/internal/models"
	"murmur/internal/repository"
)

// FollowService provides social graph business logic.
type FollowService struct {
	followRepo repository.FollowRepository
	userRepo   repository.UserRepository
}

// NewFollowService returns a new FollowService.
func NewFollowService(followRepo repository.FollowRepository, userRepo repository.UserRepository) *FollowService {
	return &FollowService{
		followRepo: followRepo,
		userRepo:   userRepo,
	}
}

// Toggle flips the follow edge from followerID to targetID. Self-follow is
// deliberately not blocked.
func (s *FollowService) Toggle(ctx context.Context, followerID, targetID uint) (repository.ToggleResult, error) {
	return s.followRepo.Toggle(ctx, followerID, targetID)
}

// Followers returns a page of users following userID, in the order they
// started following.
func (s *FollowService) Followers(ctx context.Context, userID uint, limit, offset int) ([]models.User, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.followRepo.Followers(ctx, userID, limit, offset)
}

// Following returns a page of users userID follows, in the order they were
// followed.
func (s *FollowService) Following(ctx context.Context, userID uint, limit, offset int) ([]models.User, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.followRepo.Following(ctx, userID, limit, offset)
}

// IsFollowing reports whether followerID currently follows targetID.
func (s *FollowService) IsFollowing(ctx context.Context, followerID, targetID uint) (bool, error) {
	return s.followRepo.IsFollowing(ctx, followerID, targetID)
}
