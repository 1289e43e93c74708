package repository

import (
	"context"
	"errors"
	"strings"

	"murmur/internal/cache"
	"murmur/internal/models"

	"gorm.io/gorm"
)

// UserSearchFilters narrows the user listing. All filters are
// case-insensitive substring matches; empty values are ignored.
type UserSearchFilters struct {
	Username  string
	FirstName string
	LastName  string
}

// UserRepository defines the interface for user data operations
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, filters UserSearchFilters, limit, offset int) ([]models.User, error)
}

// userRepository implements UserRepository
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("User", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil // Return nil for not found, not an error
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Save(user).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateUser(ctx, user.ID)
	return nil
}

func (r *userRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.User{}, id).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateUser(ctx, id)
	return nil
}

func (r *userRepository) List(ctx context.Context, filters UserSearchFilters, limit, offset int) ([]models.User, error) {
	q := r.db.WithContext(ctx).Model(&models.User{})
	if filters.Username != "" {
		q = q.Where("LOWER(username) LIKE ?", "%"+strings.ToLower(filters.Username)+"%")
	}
	if filters.FirstName != "" {
		q = q.Where("LOWER(first_name) LIKE ?", "%"+strings.ToLower(filters.FirstName)+"%")
	}
	if filters.LastName != "" {
		q = q.Where("LOWER(last_name) LIKE ?", "%"+strings.ToLower(filters.LastName)+"%")
	}

	var users []models.User
	if err := q.Order("id ASC").Limit(limit).Offset(offset).Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}
