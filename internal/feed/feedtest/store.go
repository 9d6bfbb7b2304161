// Package feedtest provides an in-memory implementation of the repository
// interfaces for tests of the feed service and the HTTP handlers.
package feedtest

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/anonto42/photo-feed/backend/internal/models"
	"github.com/anonto42/photo-feed/backend/internal/repositories"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Hook is called before every signal read with the operation name and the
// post or user it concerns. A non-nil error fails the read.
type Hook func(op, key string) error

// Operation names passed to a Hook
const (
	OpCountLikes    = "likes.count"
	OpHasLiked      = "likes.has"
	OpCountComments = "comments.count"
	OpIsFollowing   = "follows.is"
	OpGetPost       = "posts.get"
	OpDeletePost    = "posts.delete"
)

type Store struct {
	mu       sync.Mutex
	posts    []models.Post
	likes    []models.Like
	comments []models.Comment
	follows  []models.Follow
	users    []models.User
	nextID   uint
	hook     Hook
	clock    time.Time
}

func NewStore() *Store {
	return &Store{clock: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

// SetHook installs h; pass nil to remove it
func (s *Store) SetHook(h Hook) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hook = h
}

func (s *Store) call(op, key string) error {
	s.mu.Lock()
	h := s.hook
	s.mu.Unlock()
	if h == nil {
		return nil
	}
	return h(op, key)
}

// now returns strictly increasing timestamps so ordering by time is stable
func (s *Store) now() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

func (s *Store) id() uint {
	s.nextID++
	return s.nextID
}

func (s *Store) Posts() repositories.PostRepository       { return postRepo{s} }
func (s *Store) Likes() repositories.LikeRepository       { return likeRepo{s} }
func (s *Store) Comments() repositories.CommentRepository { return commentRepo{s} }
func (s *Store) Follows() repositories.FollowRepository   { return followRepo{s} }
func (s *Store) Users() repositories.UserRepository       { return userRepo{s} }
func (s *Store) Tx() repositories.Transactor              { return transactor{s} }

// Seeding helpers

func (s *Store) AddUser(name string) models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := models.User{ID: uuid.NewString(), Name: name, Email: name + "@example.com", CreatedAt: s.now()}
	s.users = append(s.users, u)
	return u
}

func (s *Store) AddPost(authorID, text string) models.Post {
	p := models.Post{AuthorID: authorID, Text: text, Photo: "data:image/jpeg;base64,AA=="}
	_ = postRepo{s}.CreatePost(context.Background(), &p)
	return p
}

func (s *Store) AddLike(postID, userID string) {
	_ = likeRepo{s}.CreateLike(context.Background(), &models.Like{PostID: postID, UserID: userID})
}

func (s *Store) AddComment(postID, authorID, text string) models.Comment {
	c := models.Comment{PostID: postID, AuthorID: authorID, Text: text}
	_ = commentRepo{s}.CreateComment(context.Background(), &c)
	return c
}

func (s *Store) AddFollow(followerID, followingID string) {
	_ = followRepo{s}.CreateFollow(context.Background(), &models.Follow{FollowerID: followerID, FollowingID: followingID})
}

// Inspection helpers

func (s *Store) HasPost(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.ContainsFunc(s.posts, func(p models.Post) bool { return p.ID.Hex() == id })
}

func (s *Store) PostCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.posts)
}

func (s *Store) LikeCount(postID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, l := range s.likes {
		if l.PostID == postID {
			n++
		}
	}
	return n
}

func (s *Store) CommentCount(postID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.comments {
		if c.PostID == postID {
			n++
		}
	}
	return n
}

type postRepo struct{ s *Store }

func (r postRepo) CreatePost(_ context.Context, post *models.Post) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	post.ID = primitive.NewObjectID()
	post.CreatedAt = r.s.now()
	post.UpdatedAt = post.CreatedAt
	r.s.posts = append(r.s.posts, *post)
	return nil
}

func (r postRepo) GetPostByID(_ context.Context, id string) (*models.Post, error) {
	if err := r.s.call(OpGetPost, id); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.posts {
		if p.ID.Hex() == id {
			return &p, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r postRepo) GetAllPosts(context.Context) ([]models.Post, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return slices.Clone(r.s.posts), nil
}

func (r postRepo) GetPostsByAuthorIDs(_ context.Context, authorIDs []string) ([]models.Post, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []models.Post{}
	for _, p := range r.s.posts {
		if slices.Contains(authorIDs, p.AuthorID) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r postRepo) UpdateOwnedPost(_ context.Context, id, authorID string, photo, text *string) (*models.Post, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.posts {
		p := &r.s.posts[i]
		if p.ID.Hex() != id || p.AuthorID != authorID {
			continue
		}
		if photo != nil {
			p.Photo = *photo
		}
		if text != nil {
			p.Text = *text
		}
		p.UpdatedAt = r.s.now()
		updated := *p
		return &updated, nil
	}
	return nil, repositories.ErrNotFound
}

func (r postRepo) DeleteOwnedPost(_ context.Context, id, authorID string) error {
	if err := r.s.call(OpDeletePost, id); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n := len(r.s.posts)
	r.s.posts = slices.DeleteFunc(r.s.posts, func(p models.Post) bool {
		return p.ID.Hex() == id && p.AuthorID == authorID
	})
	if len(r.s.posts) == n {
		return repositories.ErrNotFound
	}
	return nil
}

func (r postRepo) RestorePost(_ context.Context, post *models.Post) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.posts = append(r.s.posts, *post)
	return nil
}

type likeRepo struct{ s *Store }

func (r likeRepo) CreateLike(_ context.Context, like *models.Like) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, l := range r.s.likes {
		if l.PostID == like.PostID && l.UserID == like.UserID {
			return repositories.ErrDuplicate
		}
	}
	like.ID = r.s.id()
	like.CreatedAt = r.s.now()
	r.s.likes = append(r.s.likes, *like)
	return nil
}

func (r likeRepo) DeleteLike(_ context.Context, postID, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n := len(r.s.likes)
	r.s.likes = slices.DeleteFunc(r.s.likes, func(l models.Like) bool {
		return l.PostID == postID && l.UserID == userID
	})
	if len(r.s.likes) == n {
		return repositories.ErrNotFound
	}
	return nil
}

func (r likeRepo) HasUserLikedPost(_ context.Context, postID, userID string) (bool, error) {
	if err := r.s.call(OpHasLiked, postID); err != nil {
		return false, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return slices.ContainsFunc(r.s.likes, func(l models.Like) bool {
		return l.PostID == postID && l.UserID == userID
	}), nil
}

func (r likeRepo) CountByPostID(_ context.Context, postID string) (int64, error) {
	if err := r.s.call(OpCountLikes, postID); err != nil {
		return 0, err
	}
	return int64(r.s.LikeCount(postID)), nil
}

func (r likeRepo) DeleteByPostID(_ context.Context, postID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.likes = slices.DeleteFunc(r.s.likes, func(l models.Like) bool { return l.PostID == postID })
	return nil
}

type commentRepo struct{ s *Store }

func (r commentRepo) CreateComment(_ context.Context, comment *models.Comment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	comment.ID = r.s.id()
	comment.CreatedAt = r.s.now()
	r.s.comments = append(r.s.comments, *comment)
	return nil
}

func (r commentRepo) GetCommentsByPostID(_ context.Context, postID string) ([]models.Comment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []models.Comment{}
	for _, c := range r.s.comments {
		if c.PostID == postID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r commentRepo) CountByPostID(_ context.Context, postID string) (int64, error) {
	if err := r.s.call(OpCountComments, postID); err != nil {
		return 0, err
	}
	return int64(r.s.CommentCount(postID)), nil
}

func (r commentRepo) DeleteOwnedComment(_ context.Context, id uint, authorID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n := len(r.s.comments)
	r.s.comments = slices.DeleteFunc(r.s.comments, func(c models.Comment) bool {
		return c.ID == id && c.AuthorID == authorID
	})
	if len(r.s.comments) == n {
		return repositories.ErrNotFound
	}
	return nil
}

func (r commentRepo) DeleteByPostID(_ context.Context, postID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.comments = slices.DeleteFunc(r.s.comments, func(c models.Comment) bool { return c.PostID == postID })
	return nil
}

type followRepo struct{ s *Store }

func (r followRepo) CreateFollow(_ context.Context, follow *models.Follow) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, f := range r.s.follows {
		if f.FollowerID == follow.FollowerID && f.FollowingID == follow.FollowingID {
			return repositories.ErrDuplicate
		}
	}
	follow.ID = r.s.id()
	follow.CreatedAt = r.s.now()
	r.s.follows = append(r.s.follows, *follow)
	return nil
}

func (r followRepo) DeleteFollow(_ context.Context, followerID, followingID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n := len(r.s.follows)
	r.s.follows = slices.DeleteFunc(r.s.follows, func(f models.Follow) bool {
		return f.FollowerID == followerID && f.FollowingID == followingID
	})
	if len(r.s.follows) == n {
		return repositories.ErrNotFound
	}
	return nil
}

func (r followRepo) IsFollowing(_ context.Context, followerID, followingID string) (bool, error) {
	if err := r.s.call(OpIsFollowing, followingID); err != nil {
		return false, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return slices.ContainsFunc(r.s.follows, func(f models.Follow) bool {
		return f.FollowerID == followerID && f.FollowingID == followingID
	}), nil
}

func (r followRepo) GetFollowingIDs(_ context.Context, followerID string) ([]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ids := []string{}
	for _, f := range r.s.follows {
		if f.FollowerID == followerID {
			ids = append(ids, f.FollowingID)
		}
	}
	return ids, nil
}

func (r followRepo) GetFollowersCount(_ context.Context, userID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, f := range r.s.follows {
		if f.FollowingID == userID {
			n++
		}
	}
	return n, nil
}

func (r followRepo) GetFollowingCount(_ context.Context, userID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, f := range r.s.follows {
		if f.FollowerID == userID {
			n++
		}
	}
	return n, nil
}

type userRepo struct{ s *Store }

func (r userRepo) CreateUser(_ context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == user.Email {
			return repositories.ErrDuplicate
		}
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	user.CreatedAt = r.s.now()
	r.s.users = append(r.s.users, *user)
	return nil
}

func (r userRepo) find(match func(models.User) bool) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if match(u) {
			return &u, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r userRepo) GetUserByID(_ context.Context, id string) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.ID == id })
}

func (r userRepo) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.Email == email })
}

func (r userRepo) GetUserByFirebaseUID(_ context.Context, firebaseUID string) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.FirebaseUID != nil && *u.FirebaseUID == firebaseUID })
}

func (r userRepo) GetUsersByIDs(_ context.Context, ids []string) ([]models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []models.User{}
	for _, u := range r.s.users {
		if slices.Contains(ids, u.ID) {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r userRepo) UpdateUser(_ context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.users {
		if r.s.users[i].ID == user.ID {
			r.s.users[i] = *user
			return nil
		}
	}
	return repositories.ErrNotFound
}

// transactor snapshots comments and likes and restores them when fn fails
type transactor struct{ s *Store }

func (t transactor) WithinTransaction(ctx context.Context, fn func(comments repositories.CommentRepository, likes repositories.LikeRepository) error) error {
	t.s.mu.Lock()
	comments := slices.Clone(t.s.comments)
	likes := slices.Clone(t.s.likes)
	t.s.mu.Unlock()

	if err := fn(commentRepo{t.s}, likeRepo{t.s}); err != nil {
		t.s.mu.Lock()
		t.s.comments = comments
		t.s.likes = likes
		t.s.mu.Unlock()
		return err
	}
	return nil
}
