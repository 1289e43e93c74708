package models

import (
	"time"

	"gorm.io/gorm"
)

// Post is a user-owned entry in the feed. A post is invisible to every feed
// until IsPublished is true; posts created with a future ScheduledTime stay
// unpublished until the publication worker fires.
type Post struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	Text          string     `gorm:"type:text;not null" json:"text"`
	Hashtag       string     `gorm:"index" json:"hashtag"`
	MediaURL      string     `json:"media_url"`
	UserID        uint       `gorm:"not null;index" json:"user_id"`
	User          User       `gorm:"foreignKey:UserID" json:"user,omitempty"`
	ScheduledTime *time.Time `json:"scheduled_time,omitempty"`
	IsPublished   bool       `gorm:"not null;default:false;index" json:"is_published"`

	// AmountOfLikes is not persisted; computed at query time.
	AmountOfLikes int64 `gorm:"->;-:migration" json:"amount_of_likes"`
	// AmountOfComments is not persisted; computed at query time.
	AmountOfComments int64 `gorm:"->;-:migration" json:"amount_of_comments"`

	Comments []Comment `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"comments,omitempty"`
	Likes    []Like    `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"-"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
