package models

import "time"

// Cleanup job statuses.
const (
	CleanupScheduled = "scheduled"
	CleanupCompleted = "completed"
)

// CleanupJob tracks retention processing per ticket. The unique index on
// TicketID means a ticket is cleaned at most once; the sweeper skips any
// ticket that already has a completed row.
type CleanupJob struct {
	ID           uint      `gorm:"primaryKey;autoIncrement"`
	TicketID     uint      `gorm:"not null;uniqueIndex"`
	ScheduledAt  time.Time `gorm:"not null"`
	ExecutedAt   *time.Time
	FilesCleaned int
	Status       string `gorm:"size:16;default:scheduled"`
	CreatedAt    time.Time
}
