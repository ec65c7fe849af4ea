package ticket

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/opsline/helpdesk/internal/models"
	"gorm.io/gorm"
)

// Input limits for category management.
const (
	MaxCategoryNameLen = 64
	MaxCategoryDescLen = 512
)

// Directory answers role questions and manages the category taxonomy and
// the admin roster. Taxonomy and roster writes require the main admin.
type Directory struct {
	db *gorm.DB
}

// NewDirectory creates a Directory.
func NewDirectory(db *gorm.DB) *Directory {
	return &Directory{db: db}
}

// Categories returns all categories ordered by name.
func (d *Directory) Categories() ([]models.Category, error) {
	var cats []models.Category
	if err := d.db.Order("name ASC").Find(&cats).Error; err != nil {
		return nil, fmt.Errorf("ticket: categories: %w", err)
	}
	return cats, nil
}

// CategoryExists reports whether a category with the given name exists.
func (d *Directory) CategoryExists(name string) (bool, error) {
	var count int64
	if err := d.db.Model(&models.Category{}).Where("name = ?", name).Count(&count).Error; err != nil {
		return false, fmt.Errorf("ticket: category exists: %w", err)
	}
	return count > 0, nil
}

// AddCategory inserts a new category. Main admin only.
func (d *Directory) AddCategory(actorID, name, description string) (*models.Category, error) {
	if err := d.requireMainAdmin(actorID); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("ticket: add category: empty name: %w", ErrValidation)
	}
	if len(name) > MaxCategoryNameLen {
		return nil, fmt.Errorf("ticket: add category: name exceeds %d chars: %w", MaxCategoryNameLen, ErrValidation)
	}
	if len(description) > MaxCategoryDescLen {
		return nil, fmt.Errorf("ticket: add category: description exceeds %d chars: %w", MaxCategoryDescLen, ErrValidation)
	}

	cat := &models.Category{Name: name, Description: description}
	if err := d.db.Create(cat).Error; err != nil {
		if isDuplicate(err) {
			return nil, fmt.Errorf("ticket: add category %q: %w", name, ErrDuplicate)
		}
		return nil, fmt.Errorf("ticket: add category %q: %w", name, err)
	}
	return cat, nil
}

// DeleteCategory removes a category by name. Main admin only. Existing
// tickets keep their category string; only the taxonomy entry goes away.
func (d *Directory) DeleteCategory(actorID, name string) error {
	if err := d.requireMainAdmin(actorID); err != nil {
		return err
	}
	result := d.db.Where("name = ?", name).Delete(&models.Category{})
	if result.Error != nil {
		return fmt.Errorf("ticket: delete category %q: %w", name, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("ticket: delete category %q: %w", name, ErrNotFound)
	}
	return nil
}

// IsAdmin reports whether the user is on the admin roster.
func (d *Directory) IsAdmin(userID string) (bool, error) {
	var count int64
	if err := d.db.Model(&models.Admin{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return false, fmt.Errorf("ticket: is admin: %w", err)
	}
	return count > 0, nil
}

// IsMainAdmin reports whether the user holds the main_admin role.
func (d *Directory) IsMainAdmin(userID string) (bool, error) {
	var count int64
	if err := d.db.Model(&models.Admin{}).
		Where("user_id = ? AND role = ?", userID, models.RoleMainAdmin).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("ticket: is main admin: %w", err)
	}
	return count > 0, nil
}

// Admins returns the full roster ordered by join time.
func (d *Directory) Admins() ([]models.Admin, error) {
	var admins []models.Admin
	if err := d.db.Order("added_at ASC").Find(&admins).Error; err != nil {
		return nil, fmt.Errorf("ticket: admins: %w", err)
	}
	return admins, nil
}

// AddAdmin inserts a roster row with the plain admin role. Main admin
// only. Chat platform user ids are numeric; anything else is rejected.
func (d *Directory) AddAdmin(actorID, userID, userName string) (*models.Admin, error) {
	if err := d.requireMainAdmin(actorID); err != nil {
		return nil, err
	}
	userID = strings.TrimSpace(userID)
	if _, err := strconv.ParseUint(userID, 10, 64); err != nil {
		return nil, fmt.Errorf("ticket: add admin: id %q is not numeric: %w", userID, ErrValidation)
	}

	admin := &models.Admin{
		UserID:   userID,
		UserName: userName,
		Role:     models.RoleAdmin,
		AddedBy:  actorID,
		AddedAt:  time.Now(),
	}
	if err := d.db.Create(admin).Error; err != nil {
		if isDuplicate(err) {
			return nil, fmt.Errorf("ticket: add admin %s: %w", userID, ErrDuplicate)
		}
		return nil, fmt.Errorf("ticket: add admin %s: %w", userID, err)
	}
	return admin, nil
}

// RemoveAdmin deletes a roster row. Main admin only; the main admin row
// itself cannot be removed.
func (d *Directory) RemoveAdmin(actorID, userID string) error {
	if err := d.requireMainAdmin(actorID); err != nil {
		return err
	}
	result := d.db.Where("user_id = ? AND role <> ?", userID, models.RoleMainAdmin).
		Delete(&models.Admin{})
	if result.Error != nil {
		return fmt.Errorf("ticket: remove admin %s: %w", userID, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("ticket: remove admin %s: %w", userID, ErrNotFound)
	}
	return nil
}

// requireMainAdmin returns ErrForbidden unless actorID is the main admin.
func (d *Directory) requireMainAdmin(actorID string) error {
	ok, err := d.IsMainAdmin(actorID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("ticket: actor %s: %w", actorID, ErrForbidden)
	}
	return nil
}

// isDuplicate detects unique-constraint violations from either backend:
// GORM's translated sentinel covers sqlite, MySQL error 1062 covers a
// driver error that escaped translation.
func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var myErr *mysql.MySQLError
	return errors.As(err, &myErr) && myErr.Number == 1062
}
