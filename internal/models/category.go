package models

import "time"

// Category is a ticket classification. Names are unique; tickets reference
// categories by name.
type Category struct {
	ID          uint   `gorm:"primaryKey;autoIncrement"`
	Name        string `gorm:"size:64;uniqueIndex;not null"`
	Description string `gorm:"type:text"`
	CreatedAt   time.Time
}
