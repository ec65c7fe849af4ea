package db

import (
	"fmt"
	"time"

	"github.com/opsline/helpdesk/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DefaultCategories are seeded on initialization. Existing rows are left
// untouched, so renames and deletes done by the main admin survive restarts.
var DefaultCategories = []models.Category{
	{Name: "General Question", Description: "General questions and inquiries"},
	{Name: "Bug Report", Description: "Report bugs and technical issues"},
	{Name: "Partnership", Description: "Partnership and collaboration requests"},
}

// AllModels returns the list of all GORM models for migration.
func AllModels() []interface{} {
	return []interface{}{
		&models.Ticket{},
		&models.TicketMessage{},
		&models.TicketPhoto{},
		&models.CleanupJob{},
		&models.Category{},
		&models.Admin{},
	}
}

// AutoMigrate creates or updates all helpdesk tables.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(AllModels()...); err != nil {
		return fmt.Errorf("db: auto-migrate: %w", err)
	}
	return nil
}

// SeedCategories inserts the default categories, ignoring ones that exist.
func SeedCategories(db *gorm.DB) error {
	for _, c := range DefaultCategories {
		result := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoNothing: true,
		}).Create(&models.Category{Name: c.Name, Description: c.Description})
		if result.Error != nil {
			return fmt.Errorf("db: seed category %q: %w", c.Name, result.Error)
		}
	}
	return nil
}

// SeedMainAdmin upserts the main admin roster row. The role is reasserted
// on every run so the seed row cannot be demoted by accident.
func SeedMainAdmin(db *gorm.DB, userID string) error {
	if userID == "" {
		return fmt.Errorf("db: seed main admin: user id is required")
	}
	admin := models.Admin{
		UserID:   userID,
		UserName: "Main Admin",
		Role:     models.RoleMainAdmin,
		AddedBy:  userID,
		AddedAt:  time.Now(),
	}
	result := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"role"}),
	}).Create(&admin)
	if result.Error != nil {
		return fmt.Errorf("db: seed main admin %q: %w", userID, result.Error)
	}
	return nil
}

// Init migrates the schema and seeds categories and the main admin row.
func Init(db *gorm.DB, mainAdminID string) error {
	if err := AutoMigrate(db); err != nil {
		return err
	}
	if err := SeedCategories(db); err != nil {
		return err
	}
	return SeedMainAdmin(db, mainAdminID)
}
