package gateway

import (
	"context"
	"fmt"
	"log"

	"github.com/opsline/helpdesk/internal/models"
	"github.com/opsline/helpdesk/internal/ticket"
)

// Notifier delivers lifecycle notifications to the admin channel and to
// requesters. Every delivery is best-effort: the lifecycle operation has
// already committed, so failures are logged and swallowed.
type Notifier struct {
	adapter      Adapter
	adminChannel string
}

// NotifierOpts holds parameters for creating a Notifier.
type NotifierOpts struct {
	Adapter      Adapter
	AdminChannel string
}

// NewNotifier creates a Notifier.
func NewNotifier(opts NotifierOpts) (*Notifier, error) {
	if opts.Adapter == nil {
		return nil, fmt.Errorf("gateway: notifier: adapter is required")
	}
	if opts.AdminChannel == "" {
		return nil, fmt.Errorf("gateway: notifier: admin channel is required")
	}
	return &Notifier{
		adapter:      opts.Adapter,
		adminChannel: opts.AdminChannel,
	}, nil
}

var _ ticket.Notifier = (*Notifier)(nil)

// TicketCreated announces a new ticket in the admin channel with action
// buttons, and confirms to the requester.
func (n *Notifier) TicketCreated(ctx context.Context, t *models.Ticket) {
	n.send(ctx, OutboundMessage{
		ChannelID: n.adminChannel,
		Text: fmt.Sprintf("New ticket #%d [%s] from %s\n**%s**\n%s",
			t.ID, t.Category, t.UserName, t.Subject, t.Description),
		Choices: []Choice{
			TicketChoice("Reply", ActionReply, t.ID),
			TicketChoice("View", ActionView, t.ID),
			TicketChoice("Take", ActionTake, t.ID),
			TicketChoice("Close", ActionAdminClose, t.ID),
		},
	})
	n.send(ctx, OutboundMessage{
		UserID: t.UserID,
		Text: fmt.Sprintf("Your ticket #%d has been opened. Our team will get back to you here.\n"+
			"Any further message you send is added to the ticket.", t.ID),
		Choices: []Choice{TicketChoice("Close ticket", ActionClose, t.ID)},
	})
}

// TicketUpdated relays a new message to the other side of the
// conversation: admin replies go to the requester, requester messages go
// to the admin channel.
func (n *Notifier) TicketUpdated(ctx context.Context, t *models.Ticket, msg *models.TicketMessage) {
	body := msg.Body
	if msg.Kind == models.MessagePhoto && body == "" {
		body = "[photo]"
	}

	if msg.FromAdmin {
		n.send(ctx, OutboundMessage{
			UserID: t.UserID,
			Text:   fmt.Sprintf("Support reply on ticket #%d:\n%s", t.ID, body),
			Choices: []Choice{
				TicketChoice("Close ticket", ActionClose, t.ID),
			},
		})
		return
	}

	n.send(ctx, OutboundMessage{
		ChannelID: n.adminChannel,
		Text:      fmt.Sprintf("Ticket #%d — new message from %s:\n%s", t.ID, t.UserName, body),
		Choices: []Choice{
			TicketChoice("Reply", ActionReply, t.ID),
			TicketChoice("View", ActionView, t.ID),
			TicketChoice("Close", ActionAdminClose, t.ID),
		},
	})
}

// TicketClosed tells both sides the ticket is done.
func (n *Notifier) TicketClosed(ctx context.Context, t *models.Ticket, closedBy ticket.Actor) {
	who := "the requester"
	if closedBy.Admin {
		who = "support"
	}
	n.send(ctx, OutboundMessage{
		ChannelID: n.adminChannel,
		Text:      fmt.Sprintf("Ticket #%d closed by %s.", t.ID, who),
	})
	if !closedBy.Admin && closedBy.ID == t.UserID {
		// The requester already knows; skip the echo DM.
		return
	}
	n.send(ctx, OutboundMessage{
		UserID: t.UserID,
		Text:   fmt.Sprintf("Your ticket #%d has been closed. Send /start if you need anything else.", t.ID),
	})
}

func (n *Notifier) send(ctx context.Context, msg OutboundMessage) {
	if err := n.adapter.Send(ctx, msg); err != nil {
		log.Printf("gateway: notify: %v", err)
	}
}
