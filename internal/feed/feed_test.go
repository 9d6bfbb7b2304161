package feed_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/anonto42/photo-feed/backend/internal/feed"
	"github.com/anonto42/photo-feed/backend/internal/feed/feedtest"
	"github.com/anonto42/photo-feed/backend/internal/models"
	"github.com/anonto42/photo-feed/backend/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(store *feedtest.Store, events feed.EventPublisher) *feed.Service {
	return feed.NewService(feed.Dependencies{
		Posts:    store.Posts(),
		Likes:    store.Likes(),
		Comments: store.Comments(),
		Follows:  store.Follows(),
		Users:    store.Users(),
		Tx:       store.Tx(),
		Events:   events,
	})
}

func viewerOf(u models.User) feed.Viewer {
	return feed.Viewer{ID: u.ID}
}

func postIDs(views []models.PostView) []string {
	ids := make([]string, len(views))
	for i, v := range views {
		ids[i] = v.ID
	}
	return ids
}

// graph: A follows B and C, not D; every user has one post
type graph struct {
	store      *feedtest.Store
	a, b, c, d models.User
	pa, pb, pc models.Post
	pd         models.Post
}

func newGraph() *graph {
	s := feedtest.NewStore()
	g := &graph{store: s}
	g.a, g.b, g.c, g.d = s.AddUser("alice"), s.AddUser("bob"), s.AddUser("carol"), s.AddUser("dave")
	g.pb = s.AddPost(g.b.ID, "from bob")
	g.pc = s.AddPost(g.c.ID, "from carol")
	g.pd = s.AddPost(g.d.ID, "from dave")
	g.pa = s.AddPost(g.a.ID, "from alice")
	s.AddFollow(g.a.ID, g.b.ID)
	s.AddFollow(g.a.ID, g.c.ID)
	return g
}

func TestSelectFeed_ExploreReturnsEveryPost(t *testing.T) {
	g := newGraph()
	svc := newService(g.store, nil)
	want := []string{g.pb.ID.Hex(), g.pc.ID.Hex(), g.pd.ID.Hex(), g.pa.ID.Hex()}

	for _, viewer := range []feed.Viewer{viewerOf(g.a), viewerOf(g.d), feed.Anonymous} {
		views, err := svc.Feed(context.Background(), viewer, true)
		require.NoError(t, err)
		assert.Equal(t, want, postIDs(views))
	}
}

func TestSelectFeed_AnonymousAlwaysExplores(t *testing.T) {
	g := newGraph()
	svc := newService(g.store, nil)

	posts, err := svc.SelectFeed(context.Background(), feed.Anonymous, false)
	require.NoError(t, err)
	assert.Len(t, posts, 4)
}

func TestSelectFeed_FollowingScope(t *testing.T) {
	g := newGraph()
	svc := newService(g.store, nil)

	posts, err := svc.SelectFeed(context.Background(), viewerOf(g.a), false)
	require.NoError(t, err)

	var ids []string
	for _, p := range posts {
		ids = append(ids, p.ID.Hex())
	}
	// own posts are excluded; dave is not followed
	assert.ElementsMatch(t, []string{g.pb.ID.Hex(), g.pc.ID.Hex()}, ids)
	assert.Equal(t, "bob", posts[0].Author.Name)
}

func TestSelectFeed_FollowsNobody(t *testing.T) {
	g := newGraph()
	svc := newService(g.store, nil)

	posts, err := svc.SelectFeed(context.Background(), viewerOf(g.d), false)
	require.NoError(t, err)
	assert.Empty(t, posts)
}

func TestSelectFeed_UnknownAuthorKeepsID(t *testing.T) {
	s := feedtest.NewStore()
	p := s.AddPost("ghost", "orphan author")
	svc := newService(s, nil)

	posts, err := svc.SelectFeed(context.Background(), feed.Anonymous, true)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, p.ID, posts[0].ID)
	assert.Equal(t, models.UserCompact{ID: "ghost"}, posts[0].Author)
}

func TestResolveSignals_IsMe(t *testing.T) {
	g := newGraph()
	svc := newService(g.store, nil)
	ctx := context.Background()

	own, err := svc.ResolveSignals(ctx, viewerOf(g.a), g.pa)
	require.NoError(t, err)
	assert.True(t, own.IsMe)

	other, err := svc.ResolveSignals(ctx, viewerOf(g.a), g.pb)
	require.NoError(t, err)
	assert.False(t, other.IsMe)
	assert.True(t, other.IsFollowingAuthor)

	anon, err := svc.ResolveSignals(ctx, feed.Anonymous, g.pa)
	require.NoError(t, err)
	assert.False(t, anon.IsMe)
	assert.False(t, anon.IsLiked)
	assert.False(t, anon.IsFollowingAuthor)
}

func TestResolveSignals_AnonymousSkipsViewerQueries(t *testing.T) {
	g := newGraph()
	var mu sync.Mutex
	var ops []string
	g.store.SetHook(func(op, _ string) error {
		mu.Lock()
		defer mu.Unlock()
		ops = append(ops, op)
		return nil
	})
	svc := newService(g.store, nil)

	_, err := svc.ResolveSignals(context.Background(), feed.Anonymous, g.pb)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{feedtest.OpCountLikes, feedtest.OpCountComments}, ops)
}

func TestResolveSignals_CountsFollowLikesAndComments(t *testing.T) {
	g := newGraph()
	svc := newService(g.store, nil)
	ctx := context.Background()
	pid := g.pb.ID.Hex()

	_, err := svc.LikePost(ctx, viewerOf(g.a), pid)
	require.NoError(t, err)
	_, err = svc.LikePost(ctx, viewerOf(g.c), pid)
	require.NoError(t, err)
	_, err = svc.LikePost(ctx, viewerOf(g.d), pid)
	require.NoError(t, err)
	require.NoError(t, svc.UnlikePost(ctx, viewerOf(g.c), pid))

	first, err := svc.AddComment(ctx, viewerOf(g.a), pid, "nice")
	require.NoError(t, err)
	_, err = svc.AddComment(ctx, viewerOf(g.d), pid, "great")
	require.NoError(t, err)
	_, err = svc.AddComment(ctx, viewerOf(g.d), pid, "again")
	require.NoError(t, err)
	require.NoError(t, svc.DeleteComment(ctx, viewerOf(g.a), first.ID))

	signals, err := svc.ResolveSignals(ctx, viewerOf(g.a), g.pb)
	require.NoError(t, err)
	assert.True(t, signals.IsLiked)
	assert.Equal(t, int64(g.store.LikeCount(pid)), signals.LikeCount)
	assert.Equal(t, int64(2), signals.LikeCount)
	assert.Equal(t, int64(g.store.CommentCount(pid)), signals.CommentCount)
	assert.Equal(t, int64(2), signals.CommentCount)

	signals, err = svc.ResolveSignals(ctx, viewerOf(g.c), g.pb)
	require.NoError(t, err)
	assert.False(t, signals.IsLiked)
}

func TestAggregateFeed_PreservesInputOrder(t *testing.T) {
	s := feedtest.NewStore()
	author := s.AddUser("author")
	p1 := s.AddPost(author.ID, "one")
	p2 := s.AddPost(author.ID, "two")
	p3 := s.AddPost(author.ID, "three")

	slow := p2.ID.Hex()
	s.SetHook(func(op, key string) error {
		if key == slow {
			time.Sleep(50 * time.Millisecond)
		}
		return nil
	})
	svc := newService(s, nil)

	posts, err := svc.SelectFeed(context.Background(), feed.Anonymous, true)
	require.NoError(t, err)
	views, err := svc.AggregateFeed(context.Background(), feed.Anonymous, posts)
	require.NoError(t, err)
	assert.Equal(t, []string{p1.ID.Hex(), p2.ID.Hex(), p3.ID.Hex()}, postIDs(views))
	assert.Equal(t, "two", views[1].Text)
}

func TestAggregateFeed_BoundedFanoutPreservesOrder(t *testing.T) {
	s := feedtest.NewStore()
	author := s.AddUser("author")
	var want []string
	for i := 0; i < 10; i++ {
		want = append(want, s.AddPost(author.ID, "post").ID.Hex())
	}
	svc := feed.NewService(feed.Dependencies{
		Posts: s.Posts(), Likes: s.Likes(), Comments: s.Comments(),
		Follows: s.Follows(), Users: s.Users(), Tx: s.Tx(), MaxFanout: 2,
	})

	views, err := svc.Feed(context.Background(), viewerOf(author), true)
	require.NoError(t, err)
	assert.Equal(t, want, postIDs(views))
	for _, v := range views {
		assert.True(t, v.User.IsMe)
	}
}

func TestAggregateFeed_FailsFast(t *testing.T) {
	g := newGraph()
	boom := errors.New("connection reset")
	bad := g.pc.ID.Hex()
	g.store.SetHook(func(op, key string) error {
		if op == feedtest.OpCountComments && key == bad {
			return boom
		}
		return nil
	})
	svc := newService(g.store, nil)

	views, err := svc.Feed(context.Background(), viewerOf(g.a), true)
	require.ErrorIs(t, err, boom)
	assert.Nil(t, views)
}

func TestAggregateFeed_Empty(t *testing.T) {
	svc := newService(feedtest.NewStore(), nil)

	views, err := svc.AggregateFeed(context.Background(), feed.Anonymous, nil)
	require.NoError(t, err)
	assert.Empty(t, views)
}

func TestAggregatePost_CountsAndComments(t *testing.T) {
	g := newGraph()
	pid := g.pb.ID.Hex()
	g.store.AddLike(pid, g.a.ID)
	g.store.AddLike(pid, g.c.ID)
	g.store.AddLike(pid, g.d.ID)
	g.store.AddComment(pid, g.c.ID, "first")
	g.store.AddComment(pid, g.d.ID, "second")
	svc := newService(g.store, nil)

	for _, viewer := range []feed.Viewer{viewerOf(g.a), viewerOf(g.b), feed.Anonymous} {
		detail, err := svc.AggregatePost(context.Background(), viewer, pid)
		require.NoError(t, err)
		assert.Equal(t, int64(3), detail.LikeCount)
		assert.Equal(t, int64(2), detail.CommentCount)
		require.Len(t, detail.Comments, 2)
		assert.Equal(t, "first", detail.Comments[0].Text)
		assert.Equal(t, "carol", detail.Comments[0].User.Name)
		assert.Equal(t, "dave", detail.Comments[1].User.Name)
		assert.Equal(t, models.UserCompact{ID: g.b.ID, Name: "bob"}, detail.User.UserCompact)
	}

	detail, err := svc.AggregatePost(context.Background(), viewerOf(g.a), pid)
	require.NoError(t, err)
	assert.True(t, detail.IsLiked)
	assert.True(t, detail.User.IsFollowing)
	assert.False(t, detail.User.IsMe)

	detail, err = svc.AggregatePost(context.Background(), viewerOf(g.b), pid)
	require.NoError(t, err)
	assert.False(t, detail.IsLiked)
	assert.True(t, detail.User.IsMe)
}

func TestAggregatePost_NotFound(t *testing.T) {
	g := newGraph()
	var mu sync.Mutex
	var ops []string
	g.store.SetHook(func(op, _ string) error {
		mu.Lock()
		defer mu.Unlock()
		ops = append(ops, op)
		return nil
	})
	svc := newService(g.store, nil)

	for _, id := range []string{"65f000000000000000000000", "not-an-id"} {
		_, err := svc.AggregatePost(context.Background(), viewerOf(g.a), id)
		assert.ErrorIs(t, err, feed.ErrNotFound)
	}
	// nothing beyond the lookup ran
	assert.Equal(t, []string{feedtest.OpGetPost, feedtest.OpGetPost}, ops)
}

type recordingPublisher struct {
	mu      sync.Mutex
	created []string
	updated []string
	deleted []string
}

func (p *recordingPublisher) PublishPostCreated(_ context.Context, post models.Post) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.created = append(p.created, post.ID.Hex())
	return nil
}

func (p *recordingPublisher) PublishPostUpdated(_ context.Context, post models.Post) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.updated = append(p.updated, post.ID.Hex())
	return nil
}

func (p *recordingPublisher) PublishPostDeleted(_ context.Context, postID, _ string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.deleted = append(p.deleted, postID)
	return errors.New("broker down") // must not fail the delete
}

func TestCreatePost(t *testing.T) {
	s := feedtest.NewStore()
	u := s.AddUser("alice")
	events := &recordingPublisher{}
	svc := newService(s, events)

	post, err := svc.CreatePost(context.Background(), viewerOf(u), "hello", []byte("img"))
	require.NoError(t, err)
	assert.Equal(t, u.ID, post.AuthorID)
	assert.Equal(t, "hello", post.Text)
	assert.Equal(t, "data:image/jpeg;base64,aW1n", post.Photo)
	assert.True(t, s.HasPost(post.ID.Hex()))
	assert.Equal(t, []string{post.ID.Hex()}, events.created)
}

func TestCreatePost_WithoutImage(t *testing.T) {
	s := feedtest.NewStore()
	u := s.AddUser("alice")
	events := &recordingPublisher{}
	svc := newService(s, events)

	for _, img := range [][]byte{nil, {}} {
		_, err := svc.CreatePost(context.Background(), viewerOf(u), "hello", img)
		require.ErrorIs(t, err, feed.ErrValidation)
		assert.EqualError(t, err, "Image is not provided")
	}
	assert.Zero(t, s.PostCount())
	assert.Empty(t, events.created)
}

func TestCreatePost_Anonymous(t *testing.T) {
	s := feedtest.NewStore()
	svc := newService(s, nil)

	_, err := svc.CreatePost(context.Background(), feed.Anonymous, "hello", []byte("img"))
	assert.ErrorIs(t, err, feed.ErrUnauthorized)
	assert.Zero(t, s.PostCount())
}

func TestUpdatePost(t *testing.T) {
	g := newGraph()
	events := &recordingPublisher{}
	svc := newService(g.store, events)
	ctx := context.Background()
	pid := g.pb.ID.Hex()

	text := "edited"
	post, err := svc.UpdatePost(ctx, viewerOf(g.b), pid, nil, &text)
	require.NoError(t, err)
	assert.Equal(t, "edited", post.Text)
	assert.Equal(t, g.pb.Photo, post.Photo)

	photo := "data:image/jpeg;base64,Zm9v"
	post, err = svc.UpdatePost(ctx, viewerOf(g.b), pid, &photo, nil)
	require.NoError(t, err)
	assert.Equal(t, "edited", post.Text)
	assert.Equal(t, photo, post.Photo)
	assert.Len(t, events.updated, 2)
}

func TestUpdatePost_NotFoundOrUnauthorized(t *testing.T) {
	g := newGraph()
	svc := newService(g.store, nil)
	text := "hijack"

	_, err := svc.UpdatePost(context.Background(), viewerOf(g.a), g.pb.ID.Hex(), nil, &text)
	assert.ErrorIs(t, err, feed.ErrNotFoundOrUnauthorized)

	_, err = svc.UpdatePost(context.Background(), viewerOf(g.a), "65f000000000000000000000", nil, &text)
	assert.ErrorIs(t, err, feed.ErrNotFoundOrUnauthorized)

	detail, err := svc.AggregatePost(context.Background(), viewerOf(g.a), g.pb.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, "from bob", detail.Text)
}

func TestDeletePost_CascadesForOwner(t *testing.T) {
	g := newGraph()
	pid := g.pb.ID.Hex()
	g.store.AddLike(pid, g.a.ID)
	g.store.AddComment(pid, g.a.ID, "hi")
	other := g.pc.ID.Hex()
	g.store.AddLike(other, g.a.ID)
	events := &recordingPublisher{}
	svc := newService(g.store, events)

	require.NoError(t, svc.DeletePost(context.Background(), viewerOf(g.b), pid))
	assert.False(t, g.store.HasPost(pid))
	assert.Zero(t, g.store.LikeCount(pid))
	assert.Zero(t, g.store.CommentCount(pid))
	assert.Equal(t, 1, g.store.LikeCount(other))
	assert.Equal(t, []string{pid}, events.deleted)
}

func TestDeletePost_NonOwnerLeavesEverything(t *testing.T) {
	g := newGraph()
	pid := g.pb.ID.Hex()
	g.store.AddLike(pid, g.a.ID)
	g.store.AddComment(pid, g.a.ID, "hi")
	g.store.AddComment(pid, g.c.ID, "hey")
	svc := newService(g.store, nil)

	err := svc.DeletePost(context.Background(), viewerOf(g.a), pid)
	require.ErrorIs(t, err, feed.ErrNotFoundOrUnauthorized)
	assert.True(t, g.store.HasPost(pid))
	assert.Equal(t, 1, g.store.LikeCount(pid))
	assert.Equal(t, 2, g.store.CommentCount(pid))

	err = svc.DeletePost(context.Background(), viewerOf(g.a), "65f000000000000000000000")
	assert.ErrorIs(t, err, feed.ErrNotFoundOrUnauthorized)
}

func TestDeletePost_RollsBackWhenPostDeleteFails(t *testing.T) {
	g := newGraph()
	pid := g.pb.ID.Hex()
	g.store.AddLike(pid, g.a.ID)
	g.store.AddComment(pid, g.a.ID, "hi")
	boom := errors.New("mongo unavailable")
	g.store.SetHook(func(op, _ string) error {
		if op == feedtest.OpDeletePost {
			return boom
		}
		return nil
	})
	svc := newService(g.store, nil)

	err := svc.DeletePost(context.Background(), viewerOf(g.b), pid)
	require.ErrorIs(t, err, boom)
	assert.True(t, g.store.HasPost(pid))
	assert.Equal(t, 1, g.store.LikeCount(pid))
	assert.Equal(t, 1, g.store.CommentCount(pid))
}

// afterCallbackTx runs fn in the store's transaction, then calls after
// before committing; an error from after aborts the commit.
type afterCallbackTx struct {
	inner repositories.Transactor
	after func() error
}

func (t afterCallbackTx) WithinTransaction(ctx context.Context, fn func(repositories.CommentRepository, repositories.LikeRepository) error) error {
	return t.inner.WithinTransaction(ctx, func(c repositories.CommentRepository, l repositories.LikeRepository) error {
		if err := fn(c, l); err != nil {
			return err
		}
		return t.after()
	})
}

func newServiceWithTx(store *feedtest.Store, tx repositories.Transactor) *feed.Service {
	return feed.NewService(feed.Dependencies{
		Posts:    store.Posts(),
		Likes:    store.Likes(),
		Comments: store.Comments(),
		Follows:  store.Follows(),
		Users:    store.Users(),
		Tx:       tx,
	})
}

func TestDeletePost_RestoresPostWhenCommitFails(t *testing.T) {
	g := newGraph()
	pid := g.pb.ID.Hex()
	g.store.AddLike(pid, g.a.ID)
	g.store.AddComment(pid, g.a.ID, "hi")
	commitErr := errors.New("commit failed")
	svc := newServiceWithTx(g.store, afterCallbackTx{
		inner: g.store.Tx(),
		after: func() error { return commitErr },
	})

	err := svc.DeletePost(context.Background(), viewerOf(g.b), pid)
	require.ErrorIs(t, err, commitErr)
	assert.True(t, g.store.HasPost(pid))
	assert.Equal(t, 1, g.store.LikeCount(pid))
	assert.Equal(t, 1, g.store.CommentCount(pid))

	detail, err := svc.AggregatePost(context.Background(), viewerOf(g.a), pid)
	require.NoError(t, err)
	assert.Equal(t, g.pb.CreatedAt, detail.CreatedAt)
	assert.EqualValues(t, 1, detail.LikeCount)
}

func TestDeletePost_SweepsRowsWrittenDuringDelete(t *testing.T) {
	g := newGraph()
	pid := g.pb.ID.Hex()
	g.store.AddLike(pid, g.a.ID)
	// a like and a comment from requests that loaded the post before it was removed
	svc := newServiceWithTx(g.store, afterCallbackTx{
		inner: g.store.Tx(),
		after: func() error {
			g.store.AddLike(pid, g.c.ID)
			g.store.AddComment(pid, g.c.ID, "too late")
			return nil
		},
	})

	require.NoError(t, svc.DeletePost(context.Background(), viewerOf(g.b), pid))
	assert.False(t, g.store.HasPost(pid))
	assert.Zero(t, g.store.LikeCount(pid))
	assert.Zero(t, g.store.CommentCount(pid))
}

func TestLikePost_OncePerUser(t *testing.T) {
	g := newGraph()
	svc := newService(g.store, nil)
	ctx := context.Background()
	pid := g.pb.ID.Hex()

	_, err := svc.LikePost(ctx, viewerOf(g.a), pid)
	require.NoError(t, err)
	_, err = svc.LikePost(ctx, viewerOf(g.a), pid)
	assert.ErrorIs(t, err, feed.ErrConflict)
	assert.Equal(t, 1, g.store.LikeCount(pid))

	assert.ErrorIs(t, svc.UnlikePost(ctx, viewerOf(g.c), pid), feed.ErrNotFound)
	_, err = svc.LikePost(ctx, viewerOf(g.a), "65f000000000000000000000")
	assert.ErrorIs(t, err, feed.ErrNotFound)
	_, err = svc.LikePost(ctx, feed.Anonymous, pid)
	assert.ErrorIs(t, err, feed.ErrUnauthorized)
}

func TestAddComment_Validation(t *testing.T) {
	g := newGraph()
	svc := newService(g.store, nil)

	_, err := svc.AddComment(context.Background(), viewerOf(g.a), g.pb.ID.Hex(), "   ")
	assert.ErrorIs(t, err, feed.ErrValidation)

	view, err := svc.AddComment(context.Background(), viewerOf(g.a), g.pb.ID.Hex(), " hi ")
	require.NoError(t, err)
	assert.Equal(t, "hi", view.Text)
	assert.Equal(t, "alice", view.User.Name)

	err = svc.DeleteComment(context.Background(), viewerOf(g.b), view.ID)
	assert.ErrorIs(t, err, feed.ErrNotFoundOrUnauthorized)
}

func TestFollow(t *testing.T) {
	g := newGraph()
	svc := newService(g.store, nil)
	ctx := context.Background()

	assert.ErrorIs(t, svc.Follow(ctx, viewerOf(g.a), g.a.ID), feed.ErrValidation)
	assert.ErrorIs(t, svc.Follow(ctx, viewerOf(g.a), g.b.ID), feed.ErrConflict)
	assert.ErrorIs(t, svc.Follow(ctx, viewerOf(g.a), "nobody"), feed.ErrNotFound)
	require.NoError(t, svc.Follow(ctx, viewerOf(g.a), g.d.ID))

	posts, err := svc.SelectFeed(ctx, viewerOf(g.a), false)
	require.NoError(t, err)
	assert.Len(t, posts, 3)

	require.NoError(t, svc.Unfollow(ctx, viewerOf(g.a), g.b.ID))
	assert.ErrorIs(t, svc.Unfollow(ctx, viewerOf(g.a), g.b.ID), feed.ErrNotFound)

	profile, err := svc.Profile(ctx, viewerOf(g.a), g.c.ID)
	require.NoError(t, err)
	assert.True(t, profile.IsFollowing)
	assert.False(t, profile.IsMe)
	assert.Equal(t, int64(1), profile.FollowersCount)
	assert.Equal(t, int64(0), profile.FollowingCount)

	profile, err = svc.Profile(ctx, viewerOf(g.a), g.a.ID)
	require.NoError(t, err)
	assert.True(t, profile.IsMe)
	assert.Equal(t, int64(2), profile.FollowingCount)
}
