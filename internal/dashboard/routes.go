package dashboard

import (
	"io/fs"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// registerRoutes sets up all dashboard routes on the Gin router.
func registerRoutes(router *gin.Engine, db *gorm.DB) {
	// Embedded static assets (served from assets/ subdir of the embed.FS).
	staticFS, _ := fs.Sub(assetsFS, "assets")
	router.StaticFS("/static", http.FS(staticFS))

	// Pages.
	router.GET("/", handleIndex(db))
	router.GET("/tickets", handleTicketList(db))
	router.GET("/tickets/:id", handleTicketDetail(db))
	router.GET("/cleanup", handleCleanup(db))

	// SSE endpoint for live ticket counts.
	router.GET("/api/events", handleSSE(db))
}

// overviewData collects everything the index page renders. Query failures
// degrade to empty sections rather than a 500; the dashboard is read-only
// and best-effort.
func overviewData(db *gorm.DB) gin.H {
	summary, _ := Summarize(db)
	byCategory, _ := CategoryBreakdown(db)
	if byCategory == nil {
		byCategory = []CategoryCount{}
	}
	roster, _ := Roster(db)
	if roster == nil {
		roster = []AdminRow{}
	}
	recent := TicketList(db, "", "")

	return gin.H{
		"page":       "overview",
		"Summary":    summary,
		"Categories": byCategory,
		"Roster":     roster,
		"Recent":     recent.Tickets,
	}
}

func handleIndex(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.HTML(http.StatusOK, "layout.html", overviewData(db))
	}
}

func handleTicketList(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		result := TicketList(db, c.Query("status"), c.Query("category"))
		c.HTML(http.StatusOK, "layout.html", gin.H{
			"page":           "tickets",
			"Tickets":        result.Tickets,
			"Categories":     result.Categories,
			"Statuses":       result.Statuses,
			"FilterStatus":   c.Query("status"),
			"FilterCategory": c.Query("category"),
		})
	}
}

func handleTicketDetail(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.String(http.StatusBadRequest, "bad ticket id")
			return
		}
		detail, err := GetTicketDetail(db, uint(id))
		if err != nil {
			c.String(http.StatusNotFound, "ticket not found")
			return
		}
		c.HTML(http.StatusOK, "layout.html", gin.H{
			"page":   "ticket-detail",
			"Ticket": detail,
		})
	}
}

func handleCleanup(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		history, _ := CleanupHistory(db)
		if history == nil {
			history = []CleanupRow{}
		}
		c.HTML(http.StatusOK, "layout.html", gin.H{
			"page":    "cleanup",
			"History": history,
		})
	}
}
