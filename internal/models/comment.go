package models

import "time"

// Comment represents a comment on a post
type Comment struct {
	ID        uint      `json:"_id" gorm:"primaryKey"`
	PostID    string    `json:"post" gorm:"size:24;index"` // MongoDB ObjectID hex
	AuthorID  string    `json:"user" gorm:"size:36;index"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

// CreateCommentRequest defines the request body for creating a new comment
type CreateCommentRequest struct {
	Text string `json:"text" validate:"required,min=1,max=500"`
}
