package repositories

import (
	"fmt"

	"github.com/anonto42/photo-feed/backend/internal/models"
	"gorm.io/gorm"
)

// AutoMigrate creates or updates the SQL tables. Posts live in MongoDB and
// are not migrated here.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Like{},
		&models.Comment{},
		&models.Follow{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
