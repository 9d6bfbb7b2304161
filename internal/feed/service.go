// Package feed assembles post feeds and post details for a viewer and
// guards post mutations.
//
// Storage is reached only through the repository interfaces; the package
// holds no mutable state of its own.
package feed

import (
	"context"
	"log"

	"github.com/anonto42/photo-feed/backend/internal/models"
	"github.com/anonto42/photo-feed/backend/internal/repositories"
)

// EventPublisher is notified after a post mutation has been persisted
type EventPublisher interface {
	PublishPostCreated(ctx context.Context, post models.Post) error
	PublishPostUpdated(ctx context.Context, post models.Post) error
	PublishPostDeleted(ctx context.Context, postID, authorID string) error
}

type Dependencies struct {
	Posts    repositories.PostRepository
	Likes    repositories.LikeRepository
	Comments repositories.CommentRepository
	Follows  repositories.FollowRepository
	Users    repositories.UserRepository
	Tx       repositories.Transactor
	Events   EventPublisher // optional

	// MaxFanout bounds how many posts are aggregated at once; 0 means no bound
	MaxFanout int
}

type Service struct {
	posts     repositories.PostRepository
	likes     repositories.LikeRepository
	comments  repositories.CommentRepository
	follows   repositories.FollowRepository
	users     repositories.UserRepository
	tx        repositories.Transactor
	events    EventPublisher
	maxFanout int
}

func NewService(deps Dependencies) *Service {
	return &Service{
		posts:     deps.Posts,
		likes:     deps.Likes,
		comments:  deps.Comments,
		follows:   deps.Follows,
		users:     deps.Users,
		tx:        deps.Tx,
		events:    deps.Events,
		maxFanout: deps.MaxFanout,
	}
}

// publish delivers an event best-effort; the mutation has already succeeded
func (s *Service) publish(name string, fn func(EventPublisher) error) {
	if s.events == nil {
		return
	}
	if err := fn(s.events); err != nil {
		log.Printf("feed: publishing %s event failed: %v", name, err)
	}
}
