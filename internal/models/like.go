package models

import "time"

// Like records that a user liked a post. The (PostID, UserID) pair is unique:
// row existence is the liked state, so toggling is an insert or a hard delete,
// never an update.
type Like struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_post_user" json:"post_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_post_user" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`

	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
	Post Post `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"-"`
}
