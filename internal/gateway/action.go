package gateway

import (
	"fmt"
	"strconv"
	"strings"
)

// ActionKind enumerates the button actions the gateway understands.
type ActionKind string

const (
	ActionCategory   ActionKind = "cat"         // requester picked a category
	ActionReply      ActionKind = "reply"       // admin wants to reply to a ticket
	ActionView       ActionKind = "view"        // admin wants the full transcript
	ActionTake       ActionKind = "take"        // admin claims a ticket
	ActionClose      ActionKind = "close"       // requester closes own ticket
	ActionAdminClose ActionKind = "admin_close" // admin closes a ticket
)

// Action is a decoded button press. Category actions carry the category
// name; every other kind carries a ticket ID.
type Action struct {
	Kind     ActionKind
	Category string
	TicketID uint
}

// ParseAction decodes a choice value of the form "kind:payload". Decoding
// happens once at the gateway boundary; handlers only ever see typed
// actions.
func ParseAction(value string) (Action, error) {
	kind, payload, ok := strings.Cut(value, ":")
	if !ok {
		return Action{}, fmt.Errorf("gateway: malformed action %q", value)
	}

	switch ActionKind(kind) {
	case ActionCategory:
		if payload == "" {
			return Action{}, fmt.Errorf("gateway: action %q: empty category", value)
		}
		return Action{Kind: ActionCategory, Category: payload}, nil
	case ActionReply, ActionView, ActionTake, ActionClose, ActionAdminClose:
		id, err := strconv.ParseUint(payload, 10, 32)
		if err != nil {
			return Action{}, fmt.Errorf("gateway: action %q: bad ticket id: %w", value, err)
		}
		return Action{Kind: ActionKind(kind), TicketID: uint(id)}, nil
	default:
		return Action{}, fmt.Errorf("gateway: unknown action kind %q", kind)
	}
}

// CategoryChoice encodes a category pick button.
func CategoryChoice(name string) Choice {
	return Choice{Label: name, Value: string(ActionCategory) + ":" + name}
}

// TicketChoice encodes a ticket action button.
func TicketChoice(label string, kind ActionKind, ticketID uint) Choice {
	return Choice{Label: label, Value: fmt.Sprintf("%s:%d", kind, ticketID)}
}
