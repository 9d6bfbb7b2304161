package feed

import (
	"context"
	"encoding/base64"
	"errors"
	"log"

	"github.com/anonto42/photo-feed/backend/internal/models"
	"github.com/anonto42/photo-feed/backend/internal/repositories"
)

const photoDataURIPrefix = "data:image/jpeg;base64,"

// EncodePhoto renders raw image bytes as the inline data URI stored on posts
func EncodePhoto(image []byte) string {
	return photoDataURIPrefix + base64.StdEncoding.EncodeToString(image)
}

// CreatePost stores a new post owned by the viewer. The image is required.
func (s *Service) CreatePost(ctx context.Context, viewer Viewer, text string, image []byte) (*models.Post, error) {
	if viewer.IsAnonymous() {
		return nil, ErrUnauthorized
	}
	if len(image) == 0 {
		return nil, invalid("Image is not provided")
	}

	post := &models.Post{
		AuthorID: viewer.ID,
		Text:     text,
		Photo:    EncodePhoto(image),
	}
	if err := s.posts.CreatePost(ctx, post); err != nil {
		return nil, err
	}

	s.publish("post created", func(p EventPublisher) error { return p.PublishPostCreated(ctx, *post) })
	return post, nil
}

// UpdatePost changes the given fields of a post owned by the viewer. Nil
// fields are left as they are.
func (s *Service) UpdatePost(ctx context.Context, viewer Viewer, postID string, photo, text *string) (*models.Post, error) {
	if viewer.IsAnonymous() {
		return nil, ErrUnauthorized
	}

	post, err := s.posts.UpdateOwnedPost(ctx, postID, viewer.ID, photo, text)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrNotFoundOrUnauthorized
		}
		return nil, err
	}

	s.publish("post updated", func(p EventPublisher) error { return p.PublishPostUpdated(ctx, *post) })
	return post, nil
}

// DeletePost removes a post owned by the viewer together with its comments
// and likes. Ownership is checked before anything is removed; the comment and
// like deletions are rolled back if the post itself cannot be deleted, and the
// post is restored if the transaction fails to commit after its deletion.
func (s *Service) DeletePost(ctx context.Context, viewer Viewer, postID string) error {
	if viewer.IsAnonymous() {
		return ErrUnauthorized
	}

	post, err := s.posts.GetPostByID(ctx, postID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrNotFoundOrUnauthorized
		}
		return err
	}
	if post.AuthorID != viewer.ID {
		return ErrNotFoundOrUnauthorized
	}

	postID = post.ID.Hex()
	postDeleted := false
	err = s.tx.WithinTransaction(ctx, func(comments repositories.CommentRepository, likes repositories.LikeRepository) error {
		if err := comments.DeleteByPostID(ctx, postID); err != nil {
			return err
		}
		if err := likes.DeleteByPostID(ctx, postID); err != nil {
			return err
		}
		if err := s.posts.DeleteOwnedPost(ctx, postID, viewer.ID); err != nil {
			return err
		}
		postDeleted = true
		return nil
	})
	if err != nil {
		if postDeleted {
			// the commit failed after the post was removed: put it back so its
			// comments and likes keep a parent
			if rerr := s.posts.RestorePost(context.WithoutCancel(ctx), post); rerr != nil {
				log.Printf("feed: restoring post %s after failed delete: %v", postID, rerr)
				return errors.Join(err, rerr)
			}
			return err
		}
		// the post may have gone away between the check and the delete
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrNotFoundOrUnauthorized
		}
		return err
	}

	s.sweepPostRows(context.WithoutCancel(ctx), postID)
	s.publish("post deleted", func(p EventPublisher) error { return p.PublishPostDeleted(ctx, postID, viewer.ID) })
	return nil
}

// sweepPostRows removes likes and comments written by requests that saw the
// post before it was deleted. The post is already gone, so failures are only
// logged.
func (s *Service) sweepPostRows(ctx context.Context, postID string) {
	if err := s.comments.DeleteByPostID(ctx, postID); err != nil {
		log.Printf("feed: sweeping comments of deleted post %s: %v", postID, err)
	}
	if err := s.likes.DeleteByPostID(ctx, postID); err != nil {
		log.Printf("feed: sweeping likes of deleted post %s: %v", postID, err)
	}
}
