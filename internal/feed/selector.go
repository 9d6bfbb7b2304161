package feed

import (
	"context"

	"github.com/anonto42/photo-feed/backend/internal/models"
)

// AuthoredPost is a post joined with its author's compact info
type AuthoredPost struct {
	models.Post
	Author models.UserCompact
}

// SelectFeed picks the candidate posts for a viewer. In explore mode, or for
// an anonymous viewer, every post is returned; otherwise only posts written
// by users the viewer follows. The viewer's own posts are not included unless
// they appear through a follow edge.
func (s *Service) SelectFeed(ctx context.Context, viewer Viewer, explore bool) ([]AuthoredPost, error) {
	var (
		posts []models.Post
		err   error
	)
	if explore || viewer.IsAnonymous() {
		posts, err = s.posts.GetAllPosts(ctx)
	} else {
		var followed []string
		followed, err = s.follows.GetFollowingIDs(ctx, viewer.ID)
		if err != nil {
			return nil, err
		}
		authorIDs := uniqueIDs(followed)
		if len(authorIDs) == 0 {
			return []AuthoredPost{}, nil
		}
		posts, err = s.posts.GetPostsByAuthorIDs(ctx, authorIDs)
	}
	if err != nil {
		return nil, err
	}

	authorIDs := make([]string, len(posts))
	for i, p := range posts {
		authorIDs[i] = p.AuthorID
	}
	authors, err := s.loadAuthors(ctx, authorIDs)
	if err != nil {
		return nil, err
	}

	selected := make([]AuthoredPost, len(posts))
	for i, p := range posts {
		selected[i] = AuthoredPost{Post: p, Author: authors[p.AuthorID]}
	}
	return selected, nil
}

// loadAuthors resolves user IDs to compact user info. IDs without a user map
// to an entry carrying only the ID.
func (s *Service) loadAuthors(ctx context.Context, ids []string) (map[string]models.UserCompact, error) {
	ids = uniqueIDs(ids)
	authors := make(map[string]models.UserCompact, len(ids))
	if len(ids) == 0 {
		return authors, nil
	}

	users, err := s.users.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range users {
		authors[users[i].ID] = users[i].ToCompact()
	}
	for _, id := range ids {
		if _, ok := authors[id]; !ok {
			authors[id] = models.UserCompact{ID: id}
		}
	}
	return authors, nil
}

// uniqueIDs drops empty and repeated IDs, keeping first-seen order
func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
