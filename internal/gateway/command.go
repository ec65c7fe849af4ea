package gateway

import (
	"fmt"
	"time"

	"github.com/opsline/helpdesk/internal/ticket"
	"gorm.io/gorm"
)

// commandPrefix marks a chat message as a command.
const commandPrefix = "/"

// CommandHandler renders the read-only commands: ticket lists, stats, and
// the open-ticket dashboard. It never mutates tickets; all writes go
// through the Router's wizards and actions.
type CommandHandler struct {
	db     *gorm.DB
	engine *ticket.Engine
	dir    *ticket.Directory
	now    func() time.Time
}

// CommandHandlerOpts holds parameters for creating a CommandHandler.
type CommandHandlerOpts struct {
	DB        *gorm.DB
	Engine    *ticket.Engine
	Directory *ticket.Directory
	Now       func() time.Time // defaults to time.Now
}

// NewCommandHandler creates a CommandHandler.
func NewCommandHandler(opts CommandHandlerOpts) (*CommandHandler, error) {
	if opts.DB == nil {
		return nil, fmt.Errorf("gateway: command handler: db is required")
	}
	if opts.Engine == nil {
		return nil, fmt.Errorf("gateway: command handler: engine is required")
	}
	if opts.Directory == nil {
		return nil, fmt.Errorf("gateway: command handler: directory is required")
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &CommandHandler{
		db:     opts.DB,
		engine: opts.Engine,
		dir:    opts.Directory,
		now:    now,
	}, nil
}

// MyTickets renders the actor's own tickets, newest first.
func (ch *CommandHandler) MyTickets(userID string) string {
	tickets, err := ch.engine.TicketsFor(userID)
	if err != nil {
		return fmt.Sprintf("Error listing tickets: %v", err)
	}
	if len(tickets) == 0 {
		return "You have no tickets yet. Send /start to open one."
	}
	return formatTicketTable("Your tickets", tickets)
}

// Stats renders totals and per-category counts. Admin only; the caller
// checks the roster.
func (ch *CommandHandler) Stats() string {
	summary, err := ticket.Summarize(ch.db)
	if err != nil {
		return fmt.Sprintf("Error computing stats: %v", err)
	}
	byCategory, err := ticket.CountByCategory(ch.db)
	if err != nil {
		return fmt.Sprintf("Error computing stats: %v", err)
	}
	return formatSummary(summary, byCategory)
}

// Dashboard renders all open tickets with their age. Admin only.
func (ch *CommandHandler) Dashboard() string {
	open, err := ticket.OpenTickets(ch.db)
	if err != nil {
		return fmt.Sprintf("Error loading dashboard: %v", err)
	}
	return formatDashboard(open, ch.now())
}

// UserHelp returns usage information for requesters.
func (ch *CommandHandler) UserHelp() string {
	return "**Helpdesk Commands**\n" +
		"`/start` — Open a new ticket\n" +
		"`/mytickets` — List your tickets\n" +
		"`/cancel` — Abandon the current wizard\n" +
		"`/help` — This message\n\n" +
		"While you have an open ticket, any message you send here is added to it."
}

// AdminHelp returns usage information for admins, on top of the user set.
func (ch *CommandHandler) AdminHelp() string {
	return ch.UserHelp() + "\n\n**Admin Commands**\n" +
		"`/dashboard` — Open tickets overview\n" +
		"`/stats` — Ticket totals by category\n" +
		"`/addcategory` — Add a ticket category (main admin)\n" +
		"`/delcategory <name>` — Remove a category (main admin)\n" +
		"`/addadmin` — Add an admin (main admin)\n" +
		"`/removeadmin <id>` — Remove an admin (main admin)"
}
