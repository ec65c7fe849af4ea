package gateway

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/opsline/helpdesk/internal/ticket"
)

// Router classifies inbound chat messages and routes them to the
// appropriate handler: typed actions for button presses, the wizard state
// machine for multi-turn flows, or the active ticket for free-form text.
type Router struct {
	engine     *ticket.Engine
	dir        *ticket.Directory
	contexts   *ContextStore
	cmdHandler *CommandHandler
	adapter    Adapter
	botUserID  string // the bot's own user ID (to filter self-messages)
	out        io.Writer
}

// RouterOpts holds parameters for creating a Router.
type RouterOpts struct {
	Engine     *ticket.Engine
	Directory  *ticket.Directory
	Contexts   *ContextStore // defaults to a fresh store
	CmdHandler *CommandHandler
	Adapter    Adapter
	BotUserID  string    // bot's user ID for self-message filtering
	Out        io.Writer // defaults to os.Stdout
}

// NewRouter creates a Router.
func NewRouter(opts RouterOpts) (*Router, error) {
	if opts.Engine == nil {
		return nil, fmt.Errorf("gateway: router: engine is required")
	}
	if opts.Directory == nil {
		return nil, fmt.Errorf("gateway: router: directory is required")
	}
	if opts.CmdHandler == nil {
		return nil, fmt.Errorf("gateway: router: command handler is required")
	}
	if opts.Adapter == nil {
		return nil, fmt.Errorf("gateway: router: adapter is required")
	}
	contexts := opts.Contexts
	if contexts == nil {
		contexts = NewContextStore()
	}
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	return &Router{
		engine:     opts.Engine,
		dir:        opts.Directory,
		contexts:   contexts,
		cmdHandler: opts.CmdHandler,
		adapter:    opts.Adapter,
		botUserID:  opts.BotUserID,
		out:        out,
	}, nil
}

// Handle classifies and routes a single inbound message. Routing paths:
//  1. Bot self-message → ignore
//  2. Button press (ChoiceValue set) → typed action
//  3. Command prefix "/" → command handler, may start a wizard
//  4. Actor mid-wizard → wizard state machine
//  5. Direct message with an open ticket → append to it
//  6. Everything else → "no active ticket" prompt or ignore
func (r *Router) Handle(ctx context.Context, msg InboundMessage) {
	if r.isSelfMessage(msg) {
		return
	}

	text := strings.TrimSpace(msg.Text)
	fmt.Fprintf(r.out, "gateway: router: recv [ch=%s user=%s choice=%q] %q\n",
		msg.ChannelID, msg.UserName, msg.ChoiceValue, truncate(text, 80))

	if msg.ChoiceValue != "" {
		r.handleChoice(ctx, msg)
		return
	}

	if strings.HasPrefix(text, commandPrefix) {
		r.handleCommand(ctx, msg, text)
		return
	}

	if c := r.contexts.Get(msg.UserID); c.State != StateIdle {
		r.handleWizardTurn(ctx, msg, c, text)
		return
	}

	// Free-form text only routes to a ticket in a direct conversation;
	// admin channel chatter is not ticket traffic.
	if !msg.Direct {
		fmt.Fprintf(r.out, "gateway: router: → ignore (channel chatter)\n")
		return
	}

	r.handleFreeText(ctx, msg, text)
}

// isSelfMessage returns true if the message is from the bot itself.
func (r *Router) isSelfMessage(msg InboundMessage) bool {
	return r.botUserID != "" && msg.UserID == r.botUserID
}

// actor builds the lifecycle actor for the message sender.
func (r *Router) actor(msg InboundMessage) ticket.Actor {
	isAdmin, err := r.dir.IsAdmin(msg.UserID)
	if err != nil {
		log.Printf("gateway: router: admin lookup for %s: %v", msg.UserID, err)
	}
	return ticket.Actor{ID: msg.UserID, Name: msg.UserName, Admin: isAdmin}
}

// reply answers the sender where they spoke: DM for direct messages,
// channel otherwise. Best-effort.
func (r *Router) reply(ctx context.Context, msg InboundMessage, text string, choices ...Choice) {
	out := OutboundMessage{Text: text, Choices: choices}
	if msg.Direct {
		out.UserID = msg.UserID
	} else {
		out.ChannelID = msg.ChannelID
	}
	if err := r.adapter.Send(ctx, out); err != nil {
		log.Printf("gateway: router: reply: %v", err)
	}
}

// photoInput extracts the attachment reference, if any.
func photoInput(msg InboundMessage) *ticket.PhotoInput {
	if msg.AttachmentRef == "" {
		return nil
	}
	return &ticket.PhotoInput{FileRef: msg.AttachmentRef, Filename: msg.AttachmentName}
}

// --- Commands ---

// handleCommand dispatches a "/" command. Write commands start wizards;
// read-only rendering is delegated to the CommandHandler.
func (r *Router) handleCommand(ctx context.Context, msg InboundMessage, text string) {
	fields := strings.Fields(strings.TrimPrefix(text, commandPrefix))
	if len(fields) == 0 {
		r.reply(ctx, msg, r.helpFor(msg))
		return
	}
	cmd, args := strings.ToLower(fields[0]), fields[1:]
	fmt.Fprintf(r.out, "gateway: router: → command %q\n", cmd)

	switch cmd {
	case "start", "new":
		r.startTicketWizard(ctx, msg)
	case "mytickets":
		r.reply(ctx, msg, r.cmdHandler.MyTickets(msg.UserID))
	case "cancel":
		r.contexts.Clear(msg.UserID)
		r.reply(ctx, msg, "Cancelled. Send /start to open a ticket.")
	case "help":
		r.reply(ctx, msg, r.helpFor(msg))
	case "dashboard":
		if !r.requireAdmin(ctx, msg) {
			return
		}
		r.reply(ctx, msg, r.cmdHandler.Dashboard())
	case "stats":
		if !r.requireAdmin(ctx, msg) {
			return
		}
		r.reply(ctx, msg, r.cmdHandler.Stats())
	case "addcategory":
		if !r.requireMainAdmin(ctx, msg) {
			return
		}
		r.contexts.Set(msg.UserID, Context{State: StateAwaitingCategoryName})
		r.reply(ctx, msg, "Send the name for the new category, or /cancel.")
	case "delcategory":
		r.cmdDelCategory(ctx, msg, args)
	case "addadmin":
		if !r.requireMainAdmin(ctx, msg) {
			return
		}
		r.contexts.Set(msg.UserID, Context{State: StateAwaitingAdminID})
		r.reply(ctx, msg, "Send the numeric user ID of the new admin, or /cancel.")
	case "removeadmin":
		r.cmdRemoveAdmin(ctx, msg, args)
	default:
		r.reply(ctx, msg, fmt.Sprintf("Unknown command: `/%s`\n\n%s", cmd, r.helpFor(msg)))
	}
}

func (r *Router) helpFor(msg InboundMessage) string {
	if r.actor(msg).Admin {
		return r.cmdHandler.AdminHelp()
	}
	return r.cmdHandler.UserHelp()
}

// requireAdmin replies with a refusal and returns false for non-admins.
func (r *Router) requireAdmin(ctx context.Context, msg InboundMessage) bool {
	if r.actor(msg).Admin {
		return true
	}
	r.reply(ctx, msg, "That command is for support staff.")
	return false
}

// requireMainAdmin replies with a refusal and returns false unless the
// sender is the main admin. Management wizards check this before the
// first prompt so the refusal does not arrive mid-wizard.
func (r *Router) requireMainAdmin(ctx context.Context, msg InboundMessage) bool {
	ok, err := r.dir.IsMainAdmin(msg.UserID)
	if err != nil {
		log.Printf("gateway: router: main admin lookup for %s: %v", msg.UserID, err)
	}
	if ok {
		return true
	}
	r.reply(ctx, msg, "Only the main admin can manage categories and admins.")
	return false
}

// startTicketWizard begins the ticket creation flow. Any wizard already
// in progress for this actor is discarded.
func (r *Router) startTicketWizard(ctx context.Context, msg InboundMessage) {
	cats, err := r.dir.Categories()
	if err != nil {
		log.Printf("gateway: router: list categories: %v", err)
		r.reply(ctx, msg, "Something went wrong, please try again.")
		return
	}
	if len(cats) == 0 {
		r.reply(ctx, msg, "No ticket categories are configured yet. Please try again later.")
		return
	}
	r.contexts.Set(msg.UserID, Context{State: StateAwaitingCategory})
	r.reply(ctx, msg, "What is your request about?", categoryChoices(cats)...)
}

func (r *Router) cmdDelCategory(ctx context.Context, msg InboundMessage, args []string) {
	if len(args) == 0 {
		r.reply(ctx, msg, "Usage: `/delcategory <name>`")
		return
	}
	name := strings.Join(args, " ")
	if err := r.dir.DeleteCategory(msg.UserID, name); err != nil {
		r.reply(ctx, msg, friendlyError(err))
		return
	}
	r.reply(ctx, msg, fmt.Sprintf("Category %q removed.", name))
}

func (r *Router) cmdRemoveAdmin(ctx context.Context, msg InboundMessage, args []string) {
	if len(args) != 1 {
		r.reply(ctx, msg, "Usage: `/removeadmin <user-id>`")
		return
	}
	if err := r.dir.RemoveAdmin(msg.UserID, args[0]); err != nil {
		r.reply(ctx, msg, friendlyError(err))
		return
	}
	r.reply(ctx, msg, fmt.Sprintf("Admin %s removed.", args[0]))
}

// --- Button actions ---

// handleChoice decodes and executes a button press.
func (r *Router) handleChoice(ctx context.Context, msg InboundMessage) {
	action, err := ParseAction(msg.ChoiceValue)
	if err != nil {
		log.Printf("gateway: router: %v", err)
		return
	}
	fmt.Fprintf(r.out, "gateway: router: → action %s\n", action.Kind)

	switch action.Kind {
	case ActionCategory:
		r.actionCategory(ctx, msg, action.Category)
	case ActionReply:
		if !r.requireAdmin(ctx, msg) {
			return
		}
		r.contexts.Set(msg.UserID, Context{State: StateAdminReplying, TicketID: action.TicketID})
		r.reply(ctx, msg, fmt.Sprintf("Send your reply for ticket #%d, or /cancel.", action.TicketID))
	case ActionView:
		if !r.requireAdmin(ctx, msg) {
			return
		}
		r.actionView(ctx, msg, action.TicketID)
	case ActionTake:
		if !r.requireAdmin(ctx, msg) {
			return
		}
		r.actionTake(ctx, msg, action.TicketID)
	case ActionClose:
		r.actionClose(ctx, msg, action.TicketID)
	case ActionAdminClose:
		if !r.requireAdmin(ctx, msg) {
			return
		}
		r.actionClose(ctx, msg, action.TicketID)
	}
}

// actionCategory records the picked category and asks for a subject. The
// pick is honored even without a prior /start so stale buttons keep
// working; it overwrites any wizard in progress.
func (r *Router) actionCategory(ctx context.Context, msg InboundMessage, category string) {
	ok, err := r.dir.CategoryExists(category)
	if err != nil {
		log.Printf("gateway: router: category lookup: %v", err)
		r.reply(ctx, msg, "Something went wrong, please try again.")
		return
	}
	if !ok {
		r.reply(ctx, msg, fmt.Sprintf("Category %q no longer exists. Send /start to pick again.", category))
		return
	}
	r.contexts.Set(msg.UserID, Context{State: StateAwaitingSubject, Category: category})
	r.reply(ctx, msg, "Got it. Now send a short subject line for your request.")
}

func (r *Router) actionView(ctx context.Context, msg InboundMessage, ticketID uint) {
	t, err := r.engine.Get(ticketID)
	if err != nil {
		r.reply(ctx, msg, friendlyError(err))
		return
	}
	msgs, err := r.engine.Messages(ticketID)
	if err != nil {
		r.reply(ctx, msg, friendlyError(err))
		return
	}
	r.reply(ctx, msg, formatTicketDetail(t, msgs))
}

func (r *Router) actionTake(ctx context.Context, msg InboundMessage, ticketID uint) {
	if err := r.engine.Assign(ticketID, msg.UserID); err != nil {
		r.reply(ctx, msg, friendlyError(err))
		return
	}
	r.reply(ctx, msg, fmt.Sprintf("Ticket #%d is yours, %s.", ticketID, msg.UserName))
}

func (r *Router) actionClose(ctx context.Context, msg InboundMessage, ticketID uint) {
	if err := r.engine.Close(ctx, ticketID, r.actor(msg)); err != nil {
		r.reply(ctx, msg, friendlyError(err))
		return
	}
	r.contexts.Clear(msg.UserID)
	r.reply(ctx, msg, fmt.Sprintf("Ticket #%d closed.", ticketID))
}

// --- Wizard turns ---

// handleWizardTurn advances a multi-turn flow with the received text.
// Terminal transitions always clear the context.
func (r *Router) handleWizardTurn(ctx context.Context, msg InboundMessage, c Context, text string) {
	fmt.Fprintf(r.out, "gateway: router: → wizard %s\n", c.State)

	switch c.State {
	case StateAwaitingCategory:
		// Typed instead of pressing a button; accept an exact name.
		r.actionCategory(ctx, msg, text)

	case StateAwaitingSubject:
		if text == "" {
			r.reply(ctx, msg, "The subject cannot be empty. Send a short subject line.")
			return
		}
		if len(text) > 256 {
			r.reply(ctx, msg, "That subject is too long. Keep it under 256 characters.")
			return
		}
		c.Subject = text
		c.State = StateAwaitingDescription
		r.contexts.Set(msg.UserID, c)
		r.reply(ctx, msg, "And now describe the issue in as much detail as you like. You can attach a photo.")

	case StateAwaitingDescription:
		if text == "" && msg.AttachmentRef == "" {
			r.reply(ctx, msg, "The description cannot be empty.")
			return
		}
		if text == "" {
			text = "[photo]"
		}
		t, err := r.engine.Create(ctx, r.actor(msg), c.Category, c.Subject, text, photoInput(msg))
		r.contexts.Clear(msg.UserID)
		if err != nil {
			r.reply(ctx, msg, friendlyError(err))
			return
		}
		fmt.Fprintf(r.out, "gateway: router: ticket #%d created\n", t.ID)

	case StateAdminReplying:
		if text == "" && msg.AttachmentRef == "" {
			r.reply(ctx, msg, "Send the reply text, or /cancel.")
			return
		}
		_, err := r.engine.Append(ctx, c.TicketID, r.actor(msg), text, photoInput(msg))
		r.contexts.Clear(msg.UserID)
		if err != nil {
			r.reply(ctx, msg, friendlyError(err))
			return
		}
		r.reply(ctx, msg, fmt.Sprintf("Reply sent on ticket #%d.", c.TicketID))

	case StateAwaitingCategoryName:
		c.CategoryName = text
		c.State = StateAwaitingCategoryDescription
		r.contexts.Set(msg.UserID, c)
		r.reply(ctx, msg, "Send a description for the category, or `-` for none.")

	case StateAwaitingCategoryDescription:
		desc := text
		if desc == "-" {
			desc = ""
		}
		_, err := r.dir.AddCategory(msg.UserID, c.CategoryName, desc)
		r.contexts.Clear(msg.UserID)
		if err != nil {
			r.reply(ctx, msg, friendlyError(err))
			return
		}
		r.reply(ctx, msg, fmt.Sprintf("Category %q added.", strings.TrimSpace(c.CategoryName)))

	case StateAwaitingAdminID:
		_, err := r.dir.AddAdmin(msg.UserID, text, "")
		r.contexts.Clear(msg.UserID)
		if err != nil {
			r.reply(ctx, msg, friendlyError(err))
			return
		}
		r.reply(ctx, msg, fmt.Sprintf("Admin %s added.", text))

	default:
		r.contexts.Clear(msg.UserID)
	}
}

// --- Free text ---

// handleFreeText appends a direct message to the sender's open ticket,
// or prompts them to open one.
func (r *Router) handleFreeText(ctx context.Context, msg InboundMessage, text string) {
	t, err := r.engine.ActiveTicketFor(msg.UserID)
	if err != nil {
		log.Printf("gateway: router: active ticket lookup: %v", err)
		r.reply(ctx, msg, "Something went wrong, please try again.")
		return
	}
	if t == nil {
		if text == "" && msg.AttachmentRef == "" {
			return
		}
		fmt.Fprintf(r.out, "gateway: router: → no active ticket\n")
		r.reply(ctx, msg, "You have no open ticket. Send /start to open one.")
		return
	}

	fmt.Fprintf(r.out, "gateway: router: → append to ticket #%d\n", t.ID)
	if text == "" {
		text = "[photo]"
	}
	if _, err := r.engine.Append(ctx, t.ID, r.actor(msg), text, photoInput(msg)); err != nil {
		r.reply(ctx, msg, friendlyError(err))
	}
}

// friendlyError maps lifecycle errors to chat-facing text.
func friendlyError(err error) string {
	switch {
	case errors.Is(err, ticket.ErrNotFound):
		return "That ticket does not exist."
	case errors.Is(err, ticket.ErrAlreadyClosed):
		return "That ticket is already closed. Send /start to open a new one."
	case errors.Is(err, ticket.ErrForbidden):
		return "You are not allowed to do that."
	case errors.Is(err, ticket.ErrDuplicate):
		return "That already exists."
	case errors.Is(err, ticket.ErrValidation):
		return "That input is not valid: " + err.Error()
	default:
		log.Printf("gateway: router: %v", err)
		return "Something went wrong, please try again."
	}
}
