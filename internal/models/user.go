// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents a registered account in Murmur.
// Email is the login identity and must be unique; Username is a display
// name and deliberately carries no uniqueness constraint.
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Email     string         `gorm:"unique;not null" json:"email"`
	Username  string         `gorm:"not null" json:"username"`
	FirstName string         `json:"first_name"`
	LastName  string         `json:"last_name"`
	Bio       string         `json:"bio"`
	Picture   string         `json:"picture"`
	Password  string         `gorm:"not null" json:"-"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Posts []Post `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"posts,omitempty"`

	// FollowingCount and FollowersCount are not persisted; computed at query time.
	FollowingCount int64 `gorm:"-" json:"i_follow"`
	FollowersCount int64 `gorm:"-" json:"my_followers"`
}
