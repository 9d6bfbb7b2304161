package repositories

import (
	"context"
	"fmt"

	"github.com/anonto42/photo-feed/backend/internal/models"
	"gorm.io/gorm"
)

// FollowRepository defines the interface for follow data operations
type FollowRepository interface {
	CreateFollow(ctx context.Context, follow *models.Follow) error
	DeleteFollow(ctx context.Context, followerID, followingID string) error
	IsFollowing(ctx context.Context, followerID, followingID string) (bool, error)
	GetFollowingIDs(ctx context.Context, followerID string) ([]string, error)
	GetFollowersCount(ctx context.Context, userID string) (int64, error)
	GetFollowingCount(ctx context.Context, userID string) (int64, error)
}

// GormFollowRepository implements FollowRepository on top of GORM
type GormFollowRepository struct {
	db *gorm.DB
}

// NewGormFollowRepository creates a new GormFollowRepository
func NewGormFollowRepository(db *gorm.DB) *GormFollowRepository {
	return &GormFollowRepository{db: db}
}

func (r *GormFollowRepository) CreateFollow(ctx context.Context, follow *models.Follow) error {
	return translate(r.db.WithContext(ctx).Create(follow).Error)
}

func (r *GormFollowRepository) DeleteFollow(ctx context.Context, followerID, followingID string) error {
	res := r.db.WithContext(ctx).Where("follower_id = ? AND following_id = ?", followerID, followingID).Delete(&models.Follow{})
	if res.Error != nil {
		return fmt.Errorf("delete follow: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormFollowRepository) IsFollowing(ctx context.Context, followerID, followingID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Follow{}).Where("follower_id = ? AND following_id = ?", followerID, followingID).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check follow: %w", err)
	}
	return count > 0, nil
}

// GetFollowingIDs returns the IDs of every user followerID follows
func (r *GormFollowRepository) GetFollowingIDs(ctx context.Context, followerID string) ([]string, error) {
	ids := []string{}
	if err := r.db.WithContext(ctx).Model(&models.Follow{}).Where("follower_id = ?", followerID).Pluck("following_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("list followed users: %w", err)
	}
	return ids, nil
}

func (r *GormFollowRepository) GetFollowersCount(ctx context.Context, userID string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Follow{}).Where("following_id = ?", userID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count followers: %w", err)
	}
	return count, nil
}

func (r *GormFollowRepository) GetFollowingCount(ctx context.Context, userID string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Follow{}).Where("follower_id = ?", userID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count followed users: %w", err)
	}
	return count, nil
}
