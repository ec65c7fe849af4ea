package models

import "time"

// TicketPhoto records a durably stored image attachment. The storage path
// is derived deterministically from (ticket, uploader role, uploader,
// timestamp, sequence), so it is unique even for same-second uploads.
type TicketPhoto struct {
	ID           uint   `gorm:"primaryKey;autoIncrement"`
	TicketID     uint   `gorm:"not null;index"`
	FileRef      string `gorm:"size:128"`
	Path         string `gorm:"size:256;uniqueIndex"`
	Filename     string `gorm:"size:128"`
	Size         int64
	UploaderID   string `gorm:"size:64"`
	UploaderRole string `gorm:"size:16"`
	CreatedAt    time.Time

	Ticket Ticket `gorm:"foreignKey:TicketID"`
}
