package repositories

import (
	"context"
	"fmt"

	"github.com/anonto42/photo-feed/backend/internal/models"
	"gorm.io/gorm"
)

// CommentRepository defines the interface for comment data operations
type CommentRepository interface {
	CreateComment(ctx context.Context, comment *models.Comment) error
	GetCommentsByPostID(ctx context.Context, postID string) ([]models.Comment, error)
	CountByPostID(ctx context.Context, postID string) (int64, error)
	DeleteOwnedComment(ctx context.Context, id uint, authorID string) error
	DeleteByPostID(ctx context.Context, postID string) error
}

// GormCommentRepository implements CommentRepository on top of GORM
type GormCommentRepository struct {
	db *gorm.DB
}

// NewGormCommentRepository creates a new GormCommentRepository
func NewGormCommentRepository(db *gorm.DB) *GormCommentRepository {
	return &GormCommentRepository{db: db}
}

func (r *GormCommentRepository) CreateComment(ctx context.Context, comment *models.Comment) error {
	return translate(r.db.WithContext(ctx).Create(comment).Error)
}

// GetCommentsByPostID retrieves all comments for a post, oldest first
func (r *GormCommentRepository) GetCommentsByPostID(ctx context.Context, postID string) ([]models.Comment, error) {
	comments := []models.Comment{}
	if err := r.db.WithContext(ctx).Where("post_id = ?", postID).Order("created_at ASC, id ASC").Find(&comments).Error; err != nil {
		return nil, fmt.Errorf("find comments: %w", err)
	}
	return comments, nil
}

func (r *GormCommentRepository) CountByPostID(ctx context.Context, postID string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Comment{}).Where("post_id = ?", postID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count comments: %w", err)
	}
	return count, nil
}

// DeleteOwnedComment deletes the comment only if it was written by authorID
func (r *GormCommentRepository) DeleteOwnedComment(ctx context.Context, id uint, authorID string) error {
	res := r.db.WithContext(ctx).Where("id = ? AND author_id = ?", id, authorID).Delete(&models.Comment{})
	if res.Error != nil {
		return fmt.Errorf("delete comment %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormCommentRepository) DeleteByPostID(ctx context.Context, postID string) error {
	if err := r.db.WithContext(ctx).Where("post_id = ?", postID).Delete(&models.Comment{}).Error; err != nil {
		return fmt.Errorf("delete comments of post %s: %w", postID, err)
	}
	return nil
}
