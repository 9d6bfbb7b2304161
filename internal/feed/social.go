package feed

import (
	"context"
	"errors"
	"strings"

	"github.com/anonto42/photo-feed/backend/internal/models"
	"github.com/anonto42/photo-feed/backend/internal/repositories"
	"golang.org/x/sync/errgroup"
)

// LikePost records the viewer's like. A post can be liked once per user.
func (s *Service) LikePost(ctx context.Context, viewer Viewer, postID string) (*models.Like, error) {
	post, err := s.requirePost(ctx, viewer, postID)
	if err != nil {
		return nil, err
	}
	postID = post.ID.Hex()

	liked, err := s.likes.HasUserLikedPost(ctx, postID, viewer.ID)
	if err != nil {
		return nil, err
	}
	if liked {
		return nil, ErrConflict
	}

	like := &models.Like{PostID: postID, UserID: viewer.ID}
	if err := s.likes.CreateLike(ctx, like); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, ErrConflict
		}
		return nil, err
	}
	return like, nil
}

// UnlikePost removes the viewer's like from a post
func (s *Service) UnlikePost(ctx context.Context, viewer Viewer, postID string) error {
	if viewer.IsAnonymous() {
		return ErrUnauthorized
	}
	if err := s.likes.DeleteLike(ctx, postID, viewer.ID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// AddComment attaches a comment by the viewer to an existing post
func (s *Service) AddComment(ctx context.Context, viewer Viewer, postID, text string) (*models.CommentView, error) {
	if viewer.IsAnonymous() {
		return nil, ErrUnauthorized
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, invalid("Comment text is required")
	}
	post, err := s.requirePost(ctx, viewer, postID)
	if err != nil {
		return nil, err
	}

	comment := &models.Comment{PostID: post.ID.Hex(), AuthorID: viewer.ID, Text: text}
	if err := s.comments.CreateComment(ctx, comment); err != nil {
		return nil, err
	}

	authors, err := s.loadAuthors(ctx, []string{viewer.ID})
	if err != nil {
		return nil, err
	}
	view := newCommentView(*comment, authors[viewer.ID])
	return &view, nil
}

// DeleteComment removes a comment written by the viewer
func (s *Service) DeleteComment(ctx context.Context, viewer Viewer, commentID uint) error {
	if viewer.IsAnonymous() {
		return ErrUnauthorized
	}
	if err := s.comments.DeleteOwnedComment(ctx, commentID, viewer.ID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrNotFoundOrUnauthorized
		}
		return err
	}
	return nil
}

// Follow makes the viewer follow another user
func (s *Service) Follow(ctx context.Context, viewer Viewer, userID string) error {
	if viewer.IsAnonymous() {
		return ErrUnauthorized
	}
	if viewer.Is(userID) {
		return invalid("Cannot follow yourself")
	}
	if _, err := s.users.GetUserByID(ctx, userID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}

	following, err := s.follows.IsFollowing(ctx, viewer.ID, userID)
	if err != nil {
		return err
	}
	if following {
		return ErrConflict
	}

	err = s.follows.CreateFollow(ctx, &models.Follow{FollowerID: viewer.ID, FollowingID: userID})
	if errors.Is(err, repositories.ErrDuplicate) {
		return ErrConflict
	}
	return err
}

func (s *Service) Unfollow(ctx context.Context, viewer Viewer, userID string) error {
	if viewer.IsAnonymous() {
		return ErrUnauthorized
	}
	if err := s.follows.DeleteFollow(ctx, viewer.ID, userID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// Profile returns a user's compact profile as seen by the viewer
func (s *Service) Profile(ctx context.Context, viewer Viewer, userID string) (*models.ProfileView, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	profile := &models.ProfileView{
		AuthorView: models.AuthorView{UserCompact: user.ToCompact(), IsMe: viewer.Is(user.ID)},
	}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.follows.GetFollowersCount(gctx, user.ID)
		profile.FollowersCount = n
		return err
	})
	g.Go(func() error {
		n, err := s.follows.GetFollowingCount(gctx, user.ID)
		profile.FollowingCount = n
		return err
	})
	if !viewer.IsAnonymous() {
		g.Go(func() error {
			following, err := s.follows.IsFollowing(gctx, viewer.ID, user.ID)
			profile.IsFollowing = following
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return profile, nil
}

// requirePost loads a post for a mutation by an authenticated viewer
func (s *Service) requirePost(ctx context.Context, viewer Viewer, postID string) (*models.Post, error) {
	if viewer.IsAnonymous() {
		return nil, ErrUnauthorized
	}
	post, err := s.posts.GetPostByID(ctx, postID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return post, nil
}
