package ticket

import (
	"fmt"

	"github.com/opsline/helpdesk/internal/models"
	"gorm.io/gorm"
)

// Summary holds top-line ticket counts for dashboards.
type Summary struct {
	Total  int
	Open   int
	Closed int
}

// CategoryCount holds per-category ticket counts.
type CategoryCount struct {
	Category string
	Total    int
	Open     int
}

// Summarize returns total/open/closed ticket counts.
func Summarize(db *gorm.DB) (*Summary, error) {
	type row struct {
		Status string
		Count  int
	}
	var rows []row
	if err := db.Model(&models.Ticket{}).
		Select("status, count(*) as count").
		Group("status").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("ticket: summarize: %w", err)
	}

	var s Summary
	for _, r := range rows {
		s.Total += r.Count
		switch r.Status {
		case models.TicketOpen:
			s.Open = r.Count
		case models.TicketClosed:
			s.Closed = r.Count
		}
	}
	return &s, nil
}

// CountByCategory returns per-category totals ordered by volume.
func CountByCategory(db *gorm.DB) ([]CategoryCount, error) {
	type row struct {
		Category string
		Status   string
		Count    int
	}
	var rows []row
	if err := db.Model(&models.Ticket{}).
		Select("category, status, count(*) as count").
		Group("category, status").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("ticket: count by category: %w", err)
	}

	byName := map[string]*CategoryCount{}
	var order []string
	for _, r := range rows {
		cc, ok := byName[r.Category]
		if !ok {
			cc = &CategoryCount{Category: r.Category}
			byName[r.Category] = cc
			order = append(order, r.Category)
		}
		cc.Total += r.Count
		if r.Status == models.TicketOpen {
			cc.Open += r.Count
		}
	}

	out := make([]CategoryCount, 0, len(order))
	for _, name := range order {
		out = append(out, *byName[name])
	}
	return out, nil
}

// Recent returns the most recently created tickets, newest first.
func Recent(db *gorm.DB, limit int) ([]models.Ticket, error) {
	if limit <= 0 {
		limit = 10
	}
	var tickets []models.Ticket
	if err := db.Order("created_at DESC").Limit(limit).Find(&tickets).Error; err != nil {
		return nil, fmt.Errorf("ticket: recent: %w", err)
	}
	return tickets, nil
}

// OpenTickets returns all open tickets, most recently updated first.
func OpenTickets(db *gorm.DB) ([]models.Ticket, error) {
	var tickets []models.Ticket
	if err := db.Where("status = ?", models.TicketOpen).
		Order("updated_at DESC").Find(&tickets).Error; err != nil {
		return nil, fmt.Errorf("ticket: open tickets: %w", err)
	}
	return tickets, nil
}
