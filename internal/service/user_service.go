package service

import (
	"context"
	"io"

	"murmur/internal/cache"
	"murmur/internal/media"
	"murmur/internal/models"
	"murmur/internal/repository"
	"murmur/internal/validation"
)

// UserService provides profile and account business logic.
type UserService struct {
	userRepo   repository.UserRepository
	followRepo repository.FollowRepository
	media      media.Store
}

// NewUserService returns a new UserService.
func NewUserService(userRepo repository.UserRepository, followRepo repository.FollowRepository, mediaStore media.Store) *UserService {
	return &UserService{
		userRepo:   userRepo,
		followRepo: followRepo,
		media:      mediaStore,
	}
}

// Profile returns a user together with their follow graph counts.
// Cache-aside on the user key; profile edits and follow toggles invalidate it.
func (s *UserService) Profile(ctx context.Context, userID uint) (*models.User, error) {
	var user models.User
	err := cache.Aside(ctx, cache.UserKey(userID), &user, cache.UserTTL, func() error {
		fetched, err := s.userRepo.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		following, followers, err := s.followRepo.Counts(ctx, userID)
		if err != nil {
			return err
		}
		fetched.FollowingCount = following
		fetched.FollowersCount = followers
		user = *fetched
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateProfileInput carries the editable profile fields. Nil pointers
// leave the stored value untouched.
type UpdateProfileInput struct {
	Username  *string
	FirstName *string
	LastName  *string
	Bio       *string
}

// UpdateProfile applies a partial update to the caller's own profile.
func (s *UserService) UpdateProfile(ctx context.Context, userID uint, input UpdateProfileInput) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if input.Username != nil {
		if err := validation.ValidateUsername(*input.Username); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		user.Username = *input.Username
	}
	if input.FirstName != nil {
		user.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		user.LastName = *input.LastName
	}
	if input.Bio != nil {
		user.Bio = *input.Bio
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return s.Profile(ctx, userID)
}

// SetPicture stores an uploaded profile picture and records its URI.
func (s *UserService) SetPicture(ctx context.Context, userID uint, filename string, r io.Reader) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	uri, err := s.media.SaveUserPicture(userID, filename, r)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	user.Picture = uri
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return s.Profile(ctx, userID)
}

// List searches users with the given filters. Follow counts are not
// populated on list results.
func (s *UserService) List(ctx context.Context, filters repository.UserSearchFilters, limit, offset int) ([]models.User, error) {
	return s.userRepo.List(ctx, filters, limit, offset)
}
