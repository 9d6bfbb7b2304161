package models

import "time"

// UserCompact is the author info joined into posts and comments
type UserCompact struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
}

// AuthorView is the author sub-object of a post as seen by a particular viewer
type AuthorView struct {
	UserCompact
	IsMe        bool `json:"isMe"`
	IsFollowing bool `json:"isFollowing"`
}

// SignalSet holds the per-post, per-viewer values computed at read time
type SignalSet struct {
	IsLiked           bool
	LikeCount         int64
	CommentCount      int64
	IsFollowingAuthor bool
	IsMe              bool
}

// PostView is a post enriched with the viewer's signals, as rendered in feeds
type PostView struct {
	ID           string     `json:"_id"`
	Text         string     `json:"text"`
	Photo        string     `json:"photo"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
	User         AuthorView `json:"user"`
	IsLiked      bool       `json:"isLiked"`
	LikeCount    int64      `json:"likeCount"`
	CommentCount int64      `json:"commentCount"`
}

// CommentView is a comment joined with its author
type CommentView struct {
	ID        uint        `json:"_id"`
	Text      string      `json:"text"`
	CreatedAt time.Time   `json:"createdAt"`
	User      UserCompact `json:"user"`
}

// PostDetailView is the single-post view with its full comment list
type PostDetailView struct {
	PostView
	Comments []CommentView `json:"comments"`
}

// ProfileView is a user's compact profile as seen by a particular viewer
type ProfileView struct {
	AuthorView
	FollowersCount int64 `json:"followersCount"`
	FollowingCount int64 `json:"followingCount"`
}
