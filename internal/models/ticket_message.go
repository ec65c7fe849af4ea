package models

import "time"

// Message kinds.
const (
	MessageText  = "text"
	MessagePhoto = "photo"
)

// TicketMessage is a single entry in a ticket's conversation thread.
// Rows are append-only and ordered by CreatedAt for reconstruction;
// a photo message always carries a non-empty FileRef.
type TicketMessage struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	TicketID  uint   `gorm:"not null;index"`
	UserID    string `gorm:"size:64;not null"`
	UserName  string `gorm:"size:64"`
	Body      string `gorm:"type:text"`
	Kind      string `gorm:"size:8;default:text"`
	FileRef   string `gorm:"size:128"`
	FromAdmin bool   `gorm:"default:false"`
	CreatedAt time.Time

	Ticket Ticket `gorm:"foreignKey:TicketID"`
}
