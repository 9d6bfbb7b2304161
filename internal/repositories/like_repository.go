package repositories

import (
	"context"
	"fmt"

	"github.com/anonto42/photo-feed/backend/internal/models"
	"gorm.io/gorm"
)

// LikeRepository defines the interface for like data operations
type LikeRepository interface {
	CreateLike(ctx context.Context, like *models.Like) error
	DeleteLike(ctx context.Context, postID, userID string) error
	HasUserLikedPost(ctx context.Context, postID, userID string) (bool, error)
	CountByPostID(ctx context.Context, postID string) (int64, error)
	DeleteByPostID(ctx context.Context, postID string) error
}

// GormLikeRepository implements LikeRepository on top of GORM
type GormLikeRepository struct {
	db *gorm.DB
}

// NewGormLikeRepository creates a new GormLikeRepository
func NewGormLikeRepository(db *gorm.DB) *GormLikeRepository {
	return &GormLikeRepository{db: db}
}

// CreateLike inserts a like; a second like for the same (post, user) yields ErrDuplicate
func (r *GormLikeRepository) CreateLike(ctx context.Context, like *models.Like) error {
	return translate(r.db.WithContext(ctx).Create(like).Error)
}

// DeleteLike removes the user's like on the post
func (r *GormLikeRepository) DeleteLike(ctx context.Context, postID, userID string) error {
	res := r.db.WithContext(ctx).Where("post_id = ? AND user_id = ?", postID, userID).Delete(&models.Like{})
	if res.Error != nil {
		return fmt.Errorf("delete like: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// HasUserLikedPost checks if a user has liked a specific post
func (r *GormLikeRepository) HasUserLikedPost(ctx context.Context, postID, userID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Like{}).Where("post_id = ? AND user_id = ?", postID, userID).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check like: %w", err)
	}
	return count > 0, nil
}

// CountByPostID returns the number of likes on a post
func (r *GormLikeRepository) CountByPostID(ctx context.Context, postID string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Like{}).Where("post_id = ?", postID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count likes: %w", err)
	}
	return count, nil
}

// DeleteByPostID removes every like on a post
func (r *GormLikeRepository) DeleteByPostID(ctx context.Context, postID string) error {
	if err := r.db.WithContext(ctx).Where("post_id = ?", postID).Delete(&models.Like{}).Error; err != nil {
		return fmt.Errorf("delete likes of post %s: %w", postID, err)
	}
	return nil
}
