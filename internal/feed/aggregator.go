package feed

import (
	"context"
	"errors"

	"github.com/anonto42/photo-feed/backend/internal/models"
	"github.com/anonto42/photo-feed/backend/internal/repositories"
	"golang.org/x/sync/errgroup"
)

// Feed selects and aggregates the feed of a viewer
func (s *Service) Feed(ctx context.Context, viewer Viewer, explore bool) ([]models.PostView, error) {
	posts, err := s.SelectFeed(ctx, viewer, explore)
	if err != nil {
		return nil, err
	}
	return s.AggregateFeed(ctx, viewer, posts)
}

// AggregateFeed resolves the signals of every post concurrently. The view at
// index i always belongs to posts[i]. Any single failure fails the whole
// feed; no partial result is returned.
func (s *Service) AggregateFeed(ctx context.Context, viewer Viewer, posts []AuthoredPost) ([]models.PostView, error) {
	views := make([]models.PostView, len(posts))

	g, gctx := errgroup.WithContext(ctx)
	if s.maxFanout > 0 {
		g.SetLimit(s.maxFanout)
	}
	for i := range posts {
		i := i
		g.Go(func() error {
			signals, err := s.ResolveSignals(gctx, viewer, posts[i].Post)
			if err != nil {
				return err
			}
			views[i] = newPostView(posts[i], signals)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return views, nil
}

// AggregatePost builds the detail view of a single post, comments included.
// It fails with ErrNotFound before any join when the post does not exist.
func (s *Service) AggregatePost(ctx context.Context, viewer Viewer, postID string) (*models.PostDetailView, error) {
	post, err := s.posts.GetPostByID(ctx, postID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var (
		signals  models.SignalSet
		authors  map[string]models.UserCompact
		comments []models.CommentView
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		signals, err = s.ResolveSignals(gctx, viewer, *post)
		return err
	})
	g.Go(func() error {
		var err error
		authors, err = s.loadAuthors(gctx, []string{post.AuthorID})
		return err
	})
	g.Go(func() error {
		var err error
		comments, err = s.loadComments(gctx, post.ID.Hex())
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	view := newPostView(AuthoredPost{Post: *post, Author: authors[post.AuthorID]}, signals)
	return &models.PostDetailView{PostView: view, Comments: comments}, nil
}

func (s *Service) loadComments(ctx context.Context, postID string) ([]models.CommentView, error) {
	comments, err := s.comments.GetCommentsByPostID(ctx, postID)
	if err != nil {
		return nil, err
	}

	authorIDs := make([]string, len(comments))
	for i, c := range comments {
		authorIDs[i] = c.AuthorID
	}
	authors, err := s.loadAuthors(ctx, authorIDs)
	if err != nil {
		return nil, err
	}

	views := make([]models.CommentView, len(comments))
	for i, c := range comments {
		views[i] = newCommentView(c, authors[c.AuthorID])
	}
	return views, nil
}

func newPostView(p AuthoredPost, signals models.SignalSet) models.PostView {
	return models.PostView{
		ID:        p.ID.Hex(),
		Text:      p.Text,
		Photo:     p.Photo,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
		User: models.AuthorView{
			UserCompact: p.Author,
			IsMe:        signals.IsMe,
			IsFollowing: signals.IsFollowingAuthor,
		},
		IsLiked:      signals.IsLiked,
		LikeCount:    signals.LikeCount,
		CommentCount: signals.CommentCount,
	}
}

func newCommentView(c models.Comment, author models.UserCompact) models.CommentView {
	return models.CommentView{ID: c.ID, Text: c.Text, CreatedAt: c.CreatedAt, User: author}
}
