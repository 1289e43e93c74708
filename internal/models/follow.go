package models

import "time"

// Follow is a directed edge in the social graph: FollowerID follows
// FolloweeID. The pair is unique; edge existence is the followed state.
// Self-follow is not blocked at this layer.
type Follow struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	FollowerID uint      `gorm:"not null;uniqueIndex:idx_follower_followee;index" json:"follower_id"`
	FolloweeID uint      `gorm:"not null;uniqueIndex:idx_follower_followee" json:"followee_id"`
	CreatedAt  time.Time `json:"created_at"`

	Follower User `gorm:"foreignKey:FollowerID;constraint:OnDelete:CASCADE" json:"follower,omitempty"`
	Followee User `gorm:"foreignKey:FolloweeID;constraint:OnDelete:CASCADE" json:"followee,omitempty"`
}

// TableName specifies the table name for GORM
func (Follow) TableName() string {
	return "follows"
}
