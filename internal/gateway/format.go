package gateway

import (
	"fmt"
	"strings"
	"time"

	"github.com/opsline/helpdesk/internal/models"
	"github.com/opsline/helpdesk/internal/ticket"
)

// formatTicketLine renders a one-line ticket summary for lists.
func formatTicketLine(t models.Ticket) string {
	subject := t.Subject
	if len(subject) > 40 {
		subject = subject[:37] + "..."
	}
	return fmt.Sprintf("#%-5d %-8s %-20s %s", t.ID, t.Status, truncate(t.Category, 20), subject)
}

// formatTicketTable formats a slice of tickets as a monospace table.
func formatTicketTable(title string, tickets []models.Ticket) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("**%s** (%d)\n", title, len(tickets)))
	b.WriteString(fmt.Sprintf("%-6s %-8s %-20s %s\n", "ID", "STATUS", "CATEGORY", "SUBJECT"))
	for _, t := range tickets {
		b.WriteString(formatTicketLine(t))
		b.WriteByte('\n')
	}
	return b.String()
}

// formatTicketDetail renders a ticket header plus its full transcript.
func formatTicketDetail(t *models.Ticket, msgs []models.TicketMessage) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("**Ticket #%d** — %s\n", t.ID, t.Subject))
	b.WriteString(fmt.Sprintf("Status: %s | Category: %s | Opened by: %s\n", t.Status, t.Category, t.UserName))
	if t.AssignedAdmin != nil {
		b.WriteString(fmt.Sprintf("Assigned: <@%s>\n", *t.AssignedAdmin))
	}
	b.WriteString(fmt.Sprintf("Created: %s\n", t.CreatedAt.Format("2006-01-02 15:04")))
	if t.ClosedAt != nil {
		b.WriteString(fmt.Sprintf("Closed: %s\n", t.ClosedAt.Format("2006-01-02 15:04")))
	}
	b.WriteByte('\n')
	for _, m := range msgs {
		author := "user"
		if m.FromAdmin {
			author = "admin"
		}
		body := m.Body
		if m.Kind == models.MessagePhoto && body == "" {
			body = "[photo]"
		}
		b.WriteString(fmt.Sprintf("[%s %s] %s\n", m.CreatedAt.Format("01-02 15:04"), author, body))
	}
	return b.String()
}

// formatSummary renders top-line counts for the stats command.
func formatSummary(s *ticket.Summary, byCategory []ticket.CategoryCount) string {
	var b strings.Builder
	b.WriteString("**Ticket Stats**\n")
	b.WriteString(fmt.Sprintf("Total: %d | Open: %d | Closed: %d\n", s.Total, s.Open, s.Closed))
	if len(byCategory) > 0 {
		b.WriteByte('\n')
		b.WriteString(fmt.Sprintf("%-24s %-6s %s\n", "CATEGORY", "TOTAL", "OPEN"))
		for _, c := range byCategory {
			b.WriteString(fmt.Sprintf("%-24s %-6d %d\n", truncate(c.Category, 24), c.Total, c.Open))
		}
	}
	return b.String()
}

// formatDashboard renders the open-ticket overview for admins.
func formatDashboard(open []models.Ticket, now time.Time) string {
	if len(open) == 0 {
		return "**Dashboard**\nNo open tickets. All clear."
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("**Dashboard** — %d open\n", len(open)))
	b.WriteString(fmt.Sprintf("%-6s %-20s %-10s %s\n", "ID", "CATEGORY", "AGE", "SUBJECT"))
	for _, t := range open {
		age := formatAge(now.Sub(t.CreatedAt))
		subject := t.Subject
		if len(subject) > 40 {
			subject = subject[:37] + "..."
		}
		b.WriteString(fmt.Sprintf("#%-5d %-20s %-10s %s\n", t.ID, truncate(t.Category, 20), age, subject))
	}
	return b.String()
}

// formatAge renders a duration as a compact age like "3d4h" or "25m".
func formatAge(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	switch {
	case d >= 24*time.Hour:
		days := int(d.Hours()) / 24
		hours := int(d.Hours()) % 24
		return fmt.Sprintf("%dd%dh", days, hours)
	case d >= time.Hour:
		return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
	default:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	}
}

// truncate returns s truncated to maxLen with "..." appended if needed.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

// categoryChoices builds one pick button per category.
func categoryChoices(cats []models.Category) []Choice {
	choices := make([]Choice, 0, len(cats))
	for _, c := range cats {
		choices = append(choices, CategoryChoice(c.Name))
	}
	return choices
}
