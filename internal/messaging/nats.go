package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/anonto42/photo-feed/backend/internal/models"
	"github.com/nats-io/nats.go"
)

const (
	SubjectPostCreated = "posts.created"
	SubjectPostUpdated = "posts.updated"
	SubjectPostDeleted = "posts.deleted"
)

// Conn is the subset of *nats.Conn the publisher needs
type Conn interface {
	Publish(subj string, data []byte) error
}

// NatsPublisher publishes post lifecycle events as JSON
type NatsPublisher struct {
	conn Conn
}

func NewNatsPublisher(conn Conn) *NatsPublisher {
	return &NatsPublisher{conn: conn}
}

// Connect dials the NATS server at url
func Connect(url string) (*nats.Conn, error) {
	nc, err := nats.Connect(url,
		nats.Name("photo-feed"),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Printf("NATS disconnected: %v", err)
			}
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS at %s: %w", url, err)
	}
	log.Println("NATS connected successfully")
	return nc, nil
}

// PostEvent is the payload of every post event
type PostEvent struct {
	PostID    string `json:"post_id"`
	AuthorID  string `json:"author_id"`
	Text      string `json:"text,omitempty"`
	Timestamp string `json:"timestamp"`
}

func (p *NatsPublisher) PublishPostCreated(_ context.Context, post models.Post) error {
	return p.publish(SubjectPostCreated, PostEvent{
		PostID:    post.ID.Hex(),
		AuthorID:  post.AuthorID,
		Text:      post.Text,
		Timestamp: post.CreatedAt.UTC().Format(time.RFC3339),
	})
}

func (p *NatsPublisher) PublishPostUpdated(_ context.Context, post models.Post) error {
	return p.publish(SubjectPostUpdated, PostEvent{
		PostID:    post.ID.Hex(),
		AuthorID:  post.AuthorID,
		Text:      post.Text,
		Timestamp: post.UpdatedAt.UTC().Format(time.RFC3339),
	})
}

func (p *NatsPublisher) PublishPostDeleted(_ context.Context, postID, authorID string) error {
	return p.publish(SubjectPostDeleted, PostEvent{
		PostID:    postID,
		AuthorID:  authorID,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func (p *NatsPublisher) publish(subject string, event PostEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.conn.Publish(subject, data)
}
