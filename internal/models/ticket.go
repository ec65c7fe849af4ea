// Package models defines the GORM entities persisted by the helpdesk.
package models

import "time"

// Ticket statuses.
const (
	TicketOpen   = "open"
	TicketClosed = "closed"
)

// Ticket is a single support request and its lifecycle record.
//
// ClosedAt is set exactly once, when Status transitions to "closed".
// After retention cleanup the row survives with Description and UserName
// overwritten by anonymization sentinels; children are hard-deleted.
type Ticket struct {
	ID            uint    `gorm:"primaryKey;autoIncrement"`
	UserID        string  `gorm:"size:64;not null;index"`
	UserName      string  `gorm:"size:64"`
	Category      string  `gorm:"size:64;not null"`
	Subject       string  `gorm:"size:256;not null"`
	Description   string  `gorm:"type:text"`
	Status        string  `gorm:"size:16;default:open;index"`
	AssignedAdmin *string `gorm:"size:64"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
	ClosedAt      *time.Time

	Messages []TicketMessage `gorm:"foreignKey:TicketID"`
	Photos   []TicketPhoto   `gorm:"foreignKey:TicketID"`
}
