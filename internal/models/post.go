package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Post represents a photo post stored in MongoDB
type Post struct {
	ID        primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	AuthorID  string             `json:"user" bson:"user"` // ID of the user who created the post
	Text      string             `json:"text" bson:"text"`
	Photo     string             `json:"photo" bson:"photo"` // inline data URI
	CreatedAt time.Time          `json:"createdAt" bson:"created_at"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updated_at"`
}

// UpdatePostRequest defines the request body for updating an existing post.
// Absent fields are left unchanged.
type UpdatePostRequest struct {
	Img  *string `json:"img,omitempty" validate:"omitempty,min=1"`
	Text *string `json:"text,omitempty" validate:"omitempty,max=2200"`
}
