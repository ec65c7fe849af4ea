// Package retention enforces the attachment retention window: closed
// tickets past the window lose their files and message bodies, keeping
// only the anonymized ticket shell and a cleanup audit row.
package retention

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/opsline/helpdesk/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Redacted replaces personal content on anonymized tickets.
const Redacted = "[redacted]"

// FileRemover deletes the on-disk files for a ticket's photos.
// Implemented by the attachment store.
type FileRemover interface {
	RemoveTicketFiles(ctx context.Context, ticketID uint) (int, error)
}

// Sweeper finds closed tickets past the retention window and scrubs
// them. Each ticket is cleaned independently; one failure never stops
// the rest, and re-running over already-cleaned tickets is a no-op.
type Sweeper struct {
	db     *gorm.DB
	files  FileRemover
	window time.Duration
	now    func() time.Time
}

// SweeperOpts holds parameters for creating a Sweeper.
type SweeperOpts struct {
	DB     *gorm.DB
	Files  FileRemover
	Window time.Duration    // retention window after closure
	Now    func() time.Time // defaults to time.Now
}

// NewSweeper creates a Sweeper.
func NewSweeper(opts SweeperOpts) (*Sweeper, error) {
	if opts.DB == nil {
		return nil, fmt.Errorf("retention: sweeper: db is required")
	}
	if opts.Files == nil {
		return nil, fmt.Errorf("retention: sweeper: file remover is required")
	}
	if opts.Window <= 0 {
		return nil, fmt.Errorf("retention: sweeper: window must be positive")
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Sweeper{
		db:     opts.DB,
		files:  opts.Files,
		window: opts.Window,
		now:    now,
	}, nil
}

// Result summarizes one sweep pass.
type Result struct {
	Scanned      int // eligible tickets examined
	Cleaned      int // tickets scrubbed this pass
	FilesRemoved int // on-disk files deleted
	Failed       int // tickets whose cleanup errored
}

// Sweep runs one retention pass. It scans closed tickets whose closure
// is older than the window, skips those with a completed cleanup job,
// and scrubs the rest.
func (s *Sweeper) Sweep(ctx context.Context) (Result, error) {
	cutoff := s.now().Add(-s.window)

	var tickets []models.Ticket
	err := s.db.WithContext(ctx).
		Where("status = ? AND closed_at IS NOT NULL AND closed_at <= ?", models.TicketClosed, cutoff).
		Where("id NOT IN (?)", s.db.Model(&models.CleanupJob{}).
			Select("ticket_id").Where("status = ?", models.CleanupCompleted)).
		Find(&tickets).Error
	if err != nil {
		return Result{}, fmt.Errorf("retention: scan: %w", err)
	}

	res := Result{Scanned: len(tickets)}
	for _, t := range tickets {
		removed, err := s.cleanTicket(ctx, t)
		if err != nil {
			log.Printf("retention: ticket %d: %v", t.ID, err)
			res.Failed++
			continue
		}
		res.Cleaned++
		res.FilesRemoved += removed
	}
	return res, nil
}

// cleanTicket scrubs a single ticket: files first, then rows, then the
// anonymization update, and finally the completed audit row. If any step
// fails the job row stays scheduled and the next sweep retries.
func (s *Sweeper) cleanTicket(ctx context.Context, t models.Ticket) (int, error) {
	if err := s.markScheduled(ctx, t.ID); err != nil {
		return 0, err
	}

	removed, err := s.files.RemoveTicketFiles(ctx, t.ID)
	if err != nil {
		return 0, fmt.Errorf("remove files: %w", err)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("ticket_id = ?", t.ID).Delete(&models.TicketPhoto{}).Error; err != nil {
			return fmt.Errorf("delete photo rows: %w", err)
		}
		if err := tx.Where("ticket_id = ?", t.ID).Delete(&models.TicketMessage{}).Error; err != nil {
			return fmt.Errorf("delete messages: %w", err)
		}
		if err := tx.Model(&models.Ticket{}).Where("id = ?", t.ID).Updates(map[string]interface{}{
			"description": Redacted,
			"user_name":   Redacted,
		}).Error; err != nil {
			return fmt.Errorf("anonymize: %w", err)
		}

		executed := s.now()
		return tx.Model(&models.CleanupJob{}).Where("ticket_id = ?", t.ID).Updates(map[string]interface{}{
			"executed_at":   executed,
			"files_cleaned": removed,
			"status":        models.CleanupCompleted,
		}).Error
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

// markScheduled records the pending cleanup job for the ticket. Safe to
// call again for a job left scheduled by an earlier failed pass.
func (s *Sweeper) markScheduled(ctx context.Context, ticketID uint) error {
	job := models.CleanupJob{
		TicketID:    ticketID,
		ScheduledAt: s.now(),
		Status:      models.CleanupScheduled,
	}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "ticket_id"}},
			DoNothing: true,
		}).Create(&job).Error
	if err != nil {
		return fmt.Errorf("schedule job: %w", err)
	}
	return nil
}

// History returns the most recent cleanup jobs, newest first.
func History(db *gorm.DB, limit int) ([]models.CleanupJob, error) {
	if limit <= 0 {
		limit = 20
	}
	var jobs []models.CleanupJob
	if err := db.Order("scheduled_at DESC").Limit(limit).Find(&jobs).Error; err != nil {
		return nil, fmt.Errorf("retention: history: %w", err)
	}
	return jobs, nil
}
