package dashboard

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/opsline/helpdesk/internal/models"
	"gorm.io/gorm"
)

// ticketEvent holds data for a new-ticket SSE event.
type ticketEvent struct {
	ID       uint   `json:"id"`
	Subject  string `json:"subject"`
	Category string `json:"category"`
	UserName string `json:"user_name"`
	Open     int64  `json:"open"`
}

// handleSSE streams new-ticket notifications to the browser. It polls the
// tickets table and emits an event when a ticket newer than the last seen
// one appears.
func handleSSE(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/event-stream")
		c.Header("Cache-Control", "no-cache")
		c.Header("Connection", "keep-alive")
		c.Header("X-Accel-Buffering", "no")

		writeSSE(c.Writer, "connected", map[string]string{"type": "connected"})
		c.Writer.Flush()

		if db == nil {
			return
		}

		// Only alert on tickets created after the stream opened.
		var lastSeenID uint
		var newest models.Ticket
		if err := db.Order("id DESC").Limit(1).First(&newest).Error; err == nil {
			lastSeenID = newest.ID
		}

		ctx := c.Request.Context()
		ticker := time.NewTicker(3 * time.Second)
		heartbeat := time.NewTicker(15 * time.Second)
		defer ticker.Stop()
		defer heartbeat.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-heartbeat.C:
				writeSSE(c.Writer, "heartbeat", map[string]string{
					"timestamp": time.Now().UTC().Format(time.RFC3339),
				})
				c.Writer.Flush()
			case <-ticker.C:
				var created []models.Ticket
				db.Where("id > ?", lastSeenID).Order("id ASC").Find(&created)
				if len(created) == 0 {
					continue
				}
				lastSeenID = created[len(created)-1].ID

				var open int64
				db.Model(&models.Ticket{}).Where("status = ?", models.TicketOpen).Count(&open)

				latest := created[len(created)-1]
				writeSSE(c.Writer, "ticket", ticketEvent{
					ID:       latest.ID,
					Subject:  latest.Subject,
					Category: latest.Category,
					UserName: latest.UserName,
					Open:     open,
				})
				c.Writer.Flush()
			}
		}
	}
}

// writeSSE writes a single SSE event to the writer.
func writeSSE(w io.Writer, event string, data any) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, string(jsonData))
}
