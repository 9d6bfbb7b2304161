package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/anonto42/photo-feed/backend/internal/models"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type message struct {
	subject string
	data    []byte
}

type fakeConn struct {
	sent []message
	err  error
}

func (c *fakeConn) Publish(subj string, data []byte) error {
	if c.err != nil {
		return c.err
	}
	c.sent = append(c.sent, message{subj, data})
	return nil
}

func TestPublishPostEvents(t *testing.T) {
	conn := &fakeConn{}
	pub := NewNatsPublisher(conn)
	post := models.Post{
		ID:        primitive.NewObjectID(),
		AuthorID:  "user-1",
		Text:      "hello",
		CreatedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		UpdatedAt: time.Date(2024, 5, 2, 12, 0, 0, 0, time.UTC),
	}
	ctx := context.Background()

	require.NoError(t, pub.PublishPostCreated(ctx, post))
	require.NoError(t, pub.PublishPostUpdated(ctx, post))
	require.NoError(t, pub.PublishPostDeleted(ctx, post.ID.Hex(), post.AuthorID))
	require.Len(t, conn.sent, 3)

	assert.Equal(t, SubjectPostCreated, conn.sent[0].subject)
	assert.Equal(t, SubjectPostUpdated, conn.sent[1].subject)
	assert.Equal(t, SubjectPostDeleted, conn.sent[2].subject)

	var created PostEvent
	require.NoError(t, json.Unmarshal(conn.sent[0].data, &created))
	assert.Equal(t, PostEvent{PostID: post.ID.Hex(), AuthorID: "user-1", Text: "hello", Timestamp: "2024-05-01T12:00:00Z"}, created)

	var updated PostEvent
	require.NoError(t, json.Unmarshal(conn.sent[1].data, &updated))
	assert.Equal(t, "2024-05-02T12:00:00Z", updated.Timestamp)
}

func TestPublishPropagatesConnError(t *testing.T) {
	pub := NewNatsPublisher(&fakeConn{err: nats.ErrConnectionClosed})
	err := pub.PublishPostDeleted(context.Background(), "p", "u")
	assert.True(t, errors.Is(err, nats.ErrConnectionClosed))
}

func TestNATS_RoundTrip(t *testing.T) {
	// Skip if no NATS connection
	url := os.Getenv("NATS_URL")
	if url == "" {
		t.Skip("Skipping test - no NATS connection configured")
	}

	nc, err := Connect(url)
	require.NoError(t, err)
	defer nc.Close()

	received := make(chan *nats.Msg, 1)
	sub, err := nc.ChanSubscribe("posts.*", received)
	require.NoError(t, err)
	defer sub.Unsubscribe()

	require.NoError(t, NewNatsPublisher(nc).PublishPostDeleted(context.Background(), "p1", "u1"))

	select {
	case msg := <-received:
		assert.Equal(t, SubjectPostDeleted, msg.Subject)
	case <-time.After(5 * time.Second):
		t.Fatal("Timeout waiting for NATS message")
	}
}
