package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/anonto42/photo-feed/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	CreatePost(ctx context.Context, post *models.Post) error
	GetPostByID(ctx context.Context, id string) (*models.Post, error)
	GetAllPosts(ctx context.Context) ([]models.Post, error)
	GetPostsByAuthorIDs(ctx context.Context, authorIDs []string) ([]models.Post, error)
	UpdateOwnedPost(ctx context.Context, id, authorID string, photo, text *string) (*models.Post, error)
	DeleteOwnedPost(ctx context.Context, id, authorID string) error
	RestorePost(ctx context.Context, post *models.Post) error
}

// MongoPostRepository implements PostRepository for MongoDB
type MongoPostRepository struct {
	collection *mongo.Collection
}

// NewMongoPostRepository creates a new MongoPostRepository
func NewMongoPostRepository(db *mongo.Database) *MongoPostRepository {
	return &MongoPostRepository{collection: db.Collection("posts")}
}

// EnsureIndexes creates the author index used by the following-scoped feed
func (r *MongoPostRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{Keys: bson.D{{Key: "user", Value: 1}}})
	if err != nil {
		return fmt.Errorf("create posts.user index: %w", err)
	}
	return nil
}

// CreatePost creates a new post in MongoDB
func (r *MongoPostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	now := time.Now().UTC()
	post.ID = primitive.NewObjectID()
	post.CreatedAt = now
	post.UpdatedAt = now
	if _, err := r.collection.InsertOne(ctx, post); err != nil {
		return fmt.Errorf("insert post: %w", err)
	}
	return nil
}

// RestorePost re-inserts a previously deleted post, keeping its ID and timestamps
func (r *MongoPostRepository) RestorePost(ctx context.Context, post *models.Post) error {
	if _, err := r.collection.InsertOne(ctx, post); err != nil {
		return fmt.Errorf("restore post %s: %w", post.ID.Hex(), err)
	}
	return nil
}

// GetPostByID retrieves a post by ID. A malformed ID is reported as ErrNotFound.
func (r *MongoPostRepository) GetPostByID(ctx context.Context, id string) (*models.Post, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	var post models.Post
	err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&post)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find post %s: %w", id, err)
	}
	return &post, nil
}

// GetAllPosts retrieves every post in the collection's natural order
func (r *MongoPostRepository) GetAllPosts(ctx context.Context) ([]models.Post, error) {
	return r.find(ctx, bson.D{})
}

// GetPostsByAuthorIDs retrieves every post written by one of the given authors
func (r *MongoPostRepository) GetPostsByAuthorIDs(ctx context.Context, authorIDs []string) ([]models.Post, error) {
	if len(authorIDs) == 0 {
		return []models.Post{}, nil
	}
	return r.find(ctx, bson.M{"user": bson.M{"$in": authorIDs}})
}

func (r *MongoPostRepository) find(ctx context.Context, filter interface{}) ([]models.Post, error) {
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("find posts: %w", err)
	}
	defer cursor.Close(ctx)

	posts := []models.Post{}
	if err = cursor.All(ctx, &posts); err != nil {
		return nil, fmt.Errorf("decode posts: %w", err)
	}
	return posts, nil
}

// UpdateOwnedPost applies the given fields to the post only if it is owned by
// authorID, returning the post after the update. No match yields ErrNotFound.
func (r *MongoPostRepository) UpdateOwnedPost(ctx context.Context, id, authorID string, photo, text *string) (*models.Post, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	set := bson.M{"updated_at": time.Now().UTC()}
	if photo != nil {
		set["photo"] = *photo
	}
	if text != nil {
		set["text"] = *text
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var post models.Post
	err = r.collection.FindOneAndUpdate(ctx, bson.M{"_id": objID, "user": authorID}, bson.M{"$set": set}, opts).Decode(&post)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update post %s: %w", id, err)
	}
	return &post, nil
}

// DeleteOwnedPost deletes the post only if it is owned by authorID
func (r *MongoPostRepository) DeleteOwnedPost(ctx context.Context, id, authorID string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": objID, "user": authorID})
	if err != nil {
		return fmt.Errorf("delete post %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
