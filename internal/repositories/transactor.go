package repositories

import (
	"context"

	"gorm.io/gorm"
)

// Transactor runs fn with comment and like repositories bound to one SQL
// transaction. A non-nil error from fn rolls the transaction back.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(comments CommentRepository, likes LikeRepository) error) error
}

// GormTransactor implements Transactor with gorm.DB.Transaction
type GormTransactor struct {
	db *gorm.DB
}

func NewGormTransactor(db *gorm.DB) *GormTransactor {
	return &GormTransactor{db: db}
}

func (t *GormTransactor) WithinTransaction(ctx context.Context, fn func(comments CommentRepository, likes LikeRepository) error) error {
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewGormCommentRepository(tx), NewGormLikeRepository(tx))
	})
}
