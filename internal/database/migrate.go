package database

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/pageza/recipefinder/backend/internal/models"
)

// Migrate brings the profile schema up to date. It works the same on
// postgres and on the sqlite databases used in tests.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.UserProfile{}); err != nil {
		return fmt.Errorf("failed to migrate profile schema: %w", err)
	}
	return nil
}
