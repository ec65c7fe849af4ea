package models

import "time"

// Admin roles.
const (
	RoleAdmin     = "admin"
	RoleMainAdmin = "main_admin"
)

// Admin is a member of the support roster. Exactly one main_admin row is
// seeded at initialization; that role gates category and roster management.
type Admin struct {
	UserID   string `gorm:"primaryKey;size:64"`
	UserName string `gorm:"size:64"`
	Role     string `gorm:"size:16;default:admin"`
	AddedBy  string `gorm:"size:64"`
	AddedAt  time.Time
}
