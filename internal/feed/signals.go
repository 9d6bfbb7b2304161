package feed

import (
	"context"

	"github.com/anonto42/photo-feed/backend/internal/models"
	"golang.org/x/sync/errgroup"
)

// ResolveSignals computes the viewer-dependent values of a post. The reads
// run concurrently and the first failing one fails the whole set.
func (s *Service) ResolveSignals(ctx context.Context, viewer Viewer, post models.Post) (models.SignalSet, error) {
	postID := post.ID.Hex()
	signals := models.SignalSet{IsMe: viewer.Is(post.AuthorID)}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.likes.CountByPostID(gctx, postID)
		signals.LikeCount = n
		return err
	})
	g.Go(func() error {
		n, err := s.comments.CountByPostID(gctx, postID)
		signals.CommentCount = n
		return err
	})
	// anonymous viewers can neither like nor follow
	if !viewer.IsAnonymous() {
		g.Go(func() error {
			liked, err := s.likes.HasUserLikedPost(gctx, postID, viewer.ID)
			signals.IsLiked = liked
			return err
		})
		g.Go(func() error {
			following, err := s.follows.IsFollowing(gctx, viewer.ID, post.AuthorID)
			signals.IsFollowingAuthor = following
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return models.SignalSet{}, err
	}
	return signals, nil
}
