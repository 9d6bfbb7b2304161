package models

import "time"

// Follow is a directed edge: FollowerID follows FollowingID
type Follow struct {
	ID          uint      `json:"_id" gorm:"primaryKey"`
	FollowerID  string    `json:"follower" gorm:"size:36;index;uniqueIndex:idx_follower_following"`
	FollowingID string    `json:"user" gorm:"size:36;index;uniqueIndex:idx_follower_following"`
	CreatedAt   time.Time `json:"createdAt"`
}
