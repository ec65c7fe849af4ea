package dashboard

import (
	"fmt"
	"time"

	"github.com/opsline/helpdesk/internal/models"
	"gorm.io/gorm"
)

// StatusSummary holds aggregate ticket counts for the overview page.
type StatusSummary struct {
	Total      int64
	Open       int64
	Closed     int64
	OldestOpen *time.Time
}

// Summarize returns the overall ticket counts plus the age of the oldest
// open ticket.
func Summarize(db *gorm.DB) (StatusSummary, error) {
	var s StatusSummary
	if db == nil {
		return s, nil
	}
	if err := db.Model(&models.Ticket{}).Count(&s.Total).Error; err != nil {
		return s, err
	}
	if err := db.Model(&models.Ticket{}).Where("status = ?", models.TicketOpen).Count(&s.Open).Error; err != nil {
		return s, err
	}
	s.Closed = s.Total - s.Open

	var oldest models.Ticket
	if err := db.Where("status = ?", models.TicketOpen).
		Order("created_at ASC").Limit(1).First(&oldest).Error; err == nil {
		t := oldest.CreatedAt
		s.OldestOpen = &t
	}
	return s, nil
}

// CategoryCount holds per-category ticket counts.
type CategoryCount struct {
	Category string
	Open     int
	Closed   int
	Total    int
}

// CategoryBreakdown returns ticket counts grouped by category.
func CategoryBreakdown(db *gorm.DB) ([]CategoryCount, error) {
	if db == nil {
		return []CategoryCount{}, nil
	}

	type row struct {
		Category string
		Status   string
		Count    int
	}
	var rows []row
	if err := db.Model(&models.Ticket{}).
		Select("category, status, count(*) as count").
		Group("category, status").
		Order("category ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	byName := make(map[string]*CategoryCount)
	order := make([]string, 0)
	for _, r := range rows {
		cc, ok := byName[r.Category]
		if !ok {
			cc = &CategoryCount{Category: r.Category}
			byName[r.Category] = cc
			order = append(order, r.Category)
		}
		cc.Total += r.Count
		switch r.Status {
		case models.TicketOpen:
			cc.Open += r.Count
		case models.TicketClosed:
			cc.Closed += r.Count
		}
	}

	result := make([]CategoryCount, 0, len(order))
	for _, name := range order {
		result = append(result, *byName[name])
	}
	return result, nil
}

// TicketRow holds ticket data for the list view.
type TicketRow struct {
	ID        uint
	Subject   string
	Category  string
	Status    string
	UserName  string
	Assignee  string
	CreatedAt time.Time
	ClosedAt  *time.Time
}

// TicketListResult holds the ticket list plus distinct values for filter
// dropdowns.
type TicketListResult struct {
	Tickets    []TicketRow
	Categories []string
	Statuses   []string
}

// TicketList returns tickets matching filters, newest first.
func TicketList(db *gorm.DB, status, category string) TicketListResult {
	if db == nil {
		return TicketListResult{Tickets: []TicketRow{}}
	}

	q := db.Model(&models.Ticket{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if category != "" {
		q = q.Where("category = ?", category)
	}

	var tickets []models.Ticket
	q.Order("created_at DESC").Limit(200).Find(&tickets)

	rows := make([]TicketRow, len(tickets))
	for i, t := range tickets {
		rows[i] = TicketRow{
			ID:        t.ID,
			Subject:   t.Subject,
			Category:  t.Category,
			Status:    t.Status,
			UserName:  t.UserName,
			CreatedAt: t.CreatedAt,
			ClosedAt:  t.ClosedAt,
		}
		if t.AssignedAdmin != nil {
			rows[i].Assignee = *t.AssignedAdmin
		}
	}

	var categories []string
	db.Model(&models.Ticket{}).Distinct("category").Order("category ASC").Pluck("category", &categories)

	return TicketListResult{
		Tickets:    rows,
		Categories: categories,
		Statuses:   []string{models.TicketOpen, models.TicketClosed},
	}
}

// MessageRow holds a conversation entry for the detail view.
type MessageRow struct {
	UserName  string
	Body      string
	Kind      string
	FromAdmin bool
	CreatedAt time.Time
}

// TicketDetail holds full ticket data for the detail page.
type TicketDetail struct {
	ID          uint
	Subject     string
	Description string
	Category    string
	Status      string
	UserID      string
	UserName    string
	Assignee    string
	CreatedAt   time.Time
	ClosedAt    *time.Time

	Messages   []MessageRow
	PhotoCount int64
}

// GetTicketDetail returns full ticket data including the conversation
// transcript.
func GetTicketDetail(db *gorm.DB, id uint) (*TicketDetail, error) {
	if db == nil {
		return nil, fmt.Errorf("no database connection")
	}

	var t models.Ticket
	if err := db.Preload("Messages", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("created_at ASC, id ASC")
	}).Where("id = ?", id).First(&t).Error; err != nil {
		return nil, err
	}

	detail := &TicketDetail{
		ID:          t.ID,
		Subject:     t.Subject,
		Description: t.Description,
		Category:    t.Category,
		Status:      t.Status,
		UserID:      t.UserID,
		UserName:    t.UserName,
		CreatedAt:   t.CreatedAt,
		ClosedAt:    t.ClosedAt,
	}
	if t.AssignedAdmin != nil {
		detail.Assignee = *t.AssignedAdmin
	}

	detail.Messages = make([]MessageRow, len(t.Messages))
	for i, m := range t.Messages {
		detail.Messages[i] = MessageRow{
			UserName:  m.UserName,
			Body:      m.Body,
			Kind:      m.Kind,
			FromAdmin: m.FromAdmin,
			CreatedAt: m.CreatedAt,
		}
	}

	db.Model(&models.TicketPhoto{}).Where("ticket_id = ?", t.ID).Count(&detail.PhotoCount)

	return detail, nil
}

// CleanupRow holds a retention job for the cleanup history page.
type CleanupRow struct {
	TicketID     uint
	ScheduledAt  time.Time
	ExecutedAt   *time.Time
	FilesCleaned int
	Status       string
}

// CleanupHistory returns retention jobs, most recently scheduled first.
func CleanupHistory(db *gorm.DB) ([]CleanupRow, error) {
	if db == nil {
		return []CleanupRow{}, nil
	}
	var jobs []models.CleanupJob
	if err := db.Order("scheduled_at DESC").Limit(100).Find(&jobs).Error; err != nil {
		return nil, err
	}

	rows := make([]CleanupRow, len(jobs))
	for i, j := range jobs {
		rows[i] = CleanupRow{
			TicketID:     j.TicketID,
			ScheduledAt:  j.ScheduledAt,
			ExecutedAt:   j.ExecutedAt,
			FilesCleaned: j.FilesCleaned,
			Status:       j.Status,
		}
	}
	return rows, nil
}

// AdminRow holds a support roster entry for display.
type AdminRow struct {
	UserID   string
	UserName string
	Role     string
	AddedAt  time.Time
}

// Roster returns the support roster, longest-standing first.
func Roster(db *gorm.DB) ([]AdminRow, error) {
	if db == nil {
		return []AdminRow{}, nil
	}
	var admins []models.Admin
	if err := db.Order("added_at ASC").Find(&admins).Error; err != nil {
		return nil, err
	}
	rows := make([]AdminRow, len(admins))
	for i, a := range admins {
		rows[i] = AdminRow{
			UserID:   a.UserID,
			UserName: a.UserName,
			Role:     a.Role,
			AddedAt:  a.AddedAt,
		}
	}
	return rows, nil
}

// TimeAgo formats a past time as a short relative string like "3h ago".
func TimeAgo(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds ago", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours())/24)
	}
}
