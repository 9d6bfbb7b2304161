package models

import "time"

// Like represents a single user's like on a post
type Like struct {
	ID        uint      `json:"_id" gorm:"primaryKey"`
	PostID    string    `json:"post" gorm:"size:24;index;uniqueIndex:idx_post_user_like"` // MongoDB ObjectID hex
	UserID    string    `json:"user" gorm:"size:36;index;uniqueIndex:idx_post_user_like"`
	CreatedAt time.Time `json:"createdAt"`
}
