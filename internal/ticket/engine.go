// Package ticket implements the support ticket lifecycle: creation,
// conversation appends, assignment, and closure.
package ticket

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/opsline/helpdesk/internal/models"
	"gorm.io/gorm"
)

// Actor identifies the party performing an operation.
type Actor struct {
	ID    string
	Name  string
	Admin bool
}

// Role returns the uploader/author role string recorded for this actor.
func (a Actor) Role() string {
	if a.Admin {
		return "admin"
	}
	return "user"
}

// PhotoInput references an image delivered by the chat platform. FileRef
// is the platform token or URL the attachment store can fetch.
type PhotoInput struct {
	FileRef  string
	Filename string
}

// PhotoStore persists an inbound image to durable storage and records
// its metadata row. Implemented by the attachment package.
type PhotoStore interface {
	Store(ctx context.Context, fileRef, filename string, ticketID uint, uploader Actor) (*models.TicketPhoto, error)
}

// Notifier receives lifecycle events after the transaction committed.
// All methods are best-effort: the engine never fails an operation
// because a notification could not be delivered.
type Notifier interface {
	TicketCreated(ctx context.Context, t *models.Ticket)
	TicketUpdated(ctx context.Context, t *models.Ticket, msg *models.TicketMessage)
	TicketClosed(ctx context.Context, t *models.Ticket, closedBy Actor)
}

// Engine owns ticket and ticket-message entities and their transitions.
type Engine struct {
	db       *gorm.DB
	photos   PhotoStore // optional; photo messages keep their FileRef without it
	notifier Notifier   // optional
}

// EngineOpts holds parameters for creating an Engine.
type EngineOpts struct {
	DB       *gorm.DB
	Photos   PhotoStore
	Notifier Notifier
}

// NewEngine creates an Engine.
func NewEngine(opts EngineOpts) (*Engine, error) {
	if opts.DB == nil {
		return nil, fmt.Errorf("ticket: engine: db is required")
	}
	return &Engine{
		db:       opts.DB,
		photos:   opts.Photos,
		notifier: opts.Notifier,
	}, nil
}

// Create opens a new ticket with an initial message authored by the
// requester. The category must exist; subject and description must be
// non-empty. The returned ticket is immediately appendable.
func (e *Engine) Create(ctx context.Context, requester Actor, category, subject, description string, photo *PhotoInput) (*models.Ticket, error) {
	if strings.TrimSpace(subject) == "" {
		return nil, fmt.Errorf("ticket: create: empty subject: %w", ErrValidation)
	}
	if strings.TrimSpace(description) == "" {
		return nil, fmt.Errorf("ticket: create: empty description: %w", ErrValidation)
	}

	var count int64
	if err := e.db.Model(&models.Category{}).Where("name = ?", category).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("ticket: create: check category: %w", err)
	}
	if count == 0 {
		return nil, fmt.Errorf("ticket: create: category %q: %w", category, ErrNotFound)
	}

	t := &models.Ticket{
		UserID:      requester.ID,
		UserName:    requester.Name,
		Category:    category,
		Subject:     subject,
		Description: description,
		Status:      models.TicketOpen,
	}
	initial := &models.TicketMessage{
		UserID:    requester.ID,
		UserName:  requester.Name,
		Body:      description,
		Kind:      models.MessageText,
		FromAdmin: false,
	}
	if photo != nil {
		initial.Kind = models.MessagePhoto
		initial.FileRef = photo.FileRef
	}

	err := e.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(t).Error; err != nil {
			return fmt.Errorf("insert ticket: %w", err)
		}
		initial.TicketID = t.ID
		if err := tx.Create(initial).Error; err != nil {
			return fmt.Errorf("insert initial message: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("ticket: create: %w", err)
	}

	e.storePhoto(ctx, photo, t.ID, requester)

	if e.notifier != nil {
		e.notifier.TicketCreated(ctx, t)
	}
	return t, nil
}

// Append adds a message to an open ticket and bumps its updated_at.
// Appends to closed tickets are rejected with ErrAlreadyClosed.
func (e *Engine) Append(ctx context.Context, ticketID uint, author Actor, body string, photo *PhotoInput) (*models.TicketMessage, error) {
	t, err := e.Get(ticketID)
	if err != nil {
		return nil, err
	}

	msg := &models.TicketMessage{
		TicketID:  ticketID,
		UserID:    author.ID,
		UserName:  author.Name,
		Body:      body,
		Kind:      models.MessageText,
		FromAdmin: author.Admin,
	}
	if photo != nil {
		msg.Kind = models.MessagePhoto
		msg.FileRef = photo.FileRef
	}

	err = e.db.Transaction(func(tx *gorm.DB) error {
		// The open check is part of the update itself, so a Close that
		// lands between the Get above and this transaction cannot end
		// up with a message on a closed ticket.
		res := tx.Model(&models.Ticket{}).
			Where("id = ? AND status = ?", ticketID, models.TicketOpen).
			Update("updated_at", time.Now())
		if res.Error != nil {
			return fmt.Errorf("bump updated_at: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrAlreadyClosed
		}
		if err := tx.Create(msg).Error; err != nil {
			return fmt.Errorf("insert message: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("ticket: append to %d: %w", ticketID, err)
	}

	e.storePhoto(ctx, photo, ticketID, author)

	if e.notifier != nil {
		e.notifier.TicketUpdated(ctx, t, msg)
	}
	return msg, nil
}

// Assign sets the ticket's assigned admin. Any admin may (re)assign;
// the admin must exist in the roster.
func (e *Engine) Assign(ticketID uint, adminID string) error {
	var count int64
	if err := e.db.Model(&models.Admin{}).Where("user_id = ?", adminID).Count(&count).Error; err != nil {
		return fmt.Errorf("ticket: assign %d: check admin: %w", ticketID, err)
	}
	if count == 0 {
		return fmt.Errorf("ticket: assign %d: admin %q: %w", ticketID, adminID, ErrNotFound)
	}

	result := e.db.Model(&models.Ticket{}).Where("id = ?", ticketID).
		Updates(map[string]interface{}{
			"assigned_admin": adminID,
			"updated_at":     time.Now(),
		})
	if result.Error != nil {
		return fmt.Errorf("ticket: assign %d: %w", ticketID, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("ticket: assign %d: %w", ticketID, ErrNotFound)
	}
	return nil
}

// Close transitions a ticket to closed. Only the ticket's requester or an
// admin may close it. Concurrent closers are safe: the conditional update
// guarantees exactly one caller wins; the loser sees ErrAlreadyClosed.
func (e *Engine) Close(ctx context.Context, ticketID uint, closedBy Actor) error {
	t, err := e.Get(ticketID)
	if err != nil {
		return err
	}
	if !closedBy.Admin && closedBy.ID != t.UserID {
		return fmt.Errorf("ticket: close %d by %s: %w", ticketID, closedBy.ID, ErrForbidden)
	}

	now := time.Now()
	result := e.db.Model(&models.Ticket{}).
		Where("id = ? AND status = ?", ticketID, models.TicketOpen).
		Updates(map[string]interface{}{
			"status":     models.TicketClosed,
			"closed_at":  now,
			"updated_at": now,
		})
	if result.Error != nil {
		return fmt.Errorf("ticket: close %d: %w", ticketID, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("ticket: close %d: %w", ticketID, ErrAlreadyClosed)
	}

	if e.notifier != nil {
		t.Status = models.TicketClosed
		t.ClosedAt = &now
		e.notifier.TicketClosed(ctx, t, closedBy)
	}
	return nil
}

// Get returns a ticket by id.
func (e *Engine) Get(ticketID uint) (*models.Ticket, error) {
	var t models.Ticket
	if err := e.db.First(&t, ticketID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("ticket: %d: %w", ticketID, ErrNotFound)
		}
		return nil, fmt.Errorf("ticket: get %d: %w", ticketID, err)
	}
	return &t, nil
}

// Messages returns a ticket's conversation in timestamp order. The id
// tiebreak keeps same-second inserts in append order.
func (e *Engine) Messages(ticketID uint) ([]models.TicketMessage, error) {
	var msgs []models.TicketMessage
	if err := e.db.Where("ticket_id = ?", ticketID).
		Order("created_at ASC, id ASC").Find(&msgs).Error; err != nil {
		return nil, fmt.Errorf("ticket: messages for %d: %w", ticketID, err)
	}
	return msgs, nil
}

// ActiveTicketFor returns the user's most-recently-updated open ticket,
// or nil when the user has no open tickets. Free-form follow-up messages
// are routed here rather than to an explicitly named ticket.
func (e *Engine) ActiveTicketFor(userID string) (*models.Ticket, error) {
	var t models.Ticket
	err := e.db.Where("user_id = ? AND status = ?", userID, models.TicketOpen).
		Order("updated_at DESC").First(&t).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ticket: active ticket for %s: %w", userID, err)
	}
	return &t, nil
}

// TicketsFor returns all tickets owned by a user, newest first.
func (e *Engine) TicketsFor(userID string) ([]models.Ticket, error) {
	var tickets []models.Ticket
	if err := e.db.Where("user_id = ?", userID).
		Order("created_at DESC").Find(&tickets).Error; err != nil {
		return nil, fmt.Errorf("ticket: tickets for %s: %w", userID, err)
	}
	return tickets, nil
}

// storePhoto persists an attachment best-effort. A download or disk
// failure must not undo the committed message append; it is logged and
// the message keeps its FileRef only.
func (e *Engine) storePhoto(ctx context.Context, photo *PhotoInput, ticketID uint, uploader Actor) {
	if photo == nil || e.photos == nil {
		return
	}
	if _, err := e.photos.Store(ctx, photo.FileRef, photo.Filename, ticketID, uploader); err != nil {
		log.Printf("ticket: store photo for %d: %v", ticketID, err)
	}
}
