// Package gateway bridges the helpdesk to chat platforms (Slack, Discord,
// etc.). It classifies inbound chat traffic, drives the ticket wizards, and
// delivers lifecycle notifications.
package gateway

import (
	"context"
	"time"
)

// Adapter is the interface that platform-specific implementations must
// satisfy. Each adapter handles connection management and message
// sending/receiving for a single chat platform.
type Adapter interface {
	// Connect establishes a connection to the chat platform.
	Connect(ctx context.Context) error

	// Listen returns a channel of inbound messages from the platform.
	// The channel is closed when the context is cancelled or the adapter
	// is closed. Listen must only be called after Connect.
	Listen(ctx context.Context) (<-chan InboundMessage, error)

	// Send delivers an outbound message to the platform.
	Send(ctx context.Context, msg OutboundMessage) error

	// Close gracefully shuts down the adapter connection.
	Close() error
}

// InboundMessage represents a message or interaction received from the
// chat platform. A button press arrives with ChoiceValue set and Text
// empty; a photo upload carries its platform reference in AttachmentRef.
type InboundMessage struct {
	Platform       string    // e.g. "slack", "discord"
	ChannelID      string    // platform-specific channel identifier
	UserID         string    // platform-specific user identifier
	UserName       string    // human-readable username
	Text           string    // raw message text
	ChoiceValue    string    // encoded value of a pressed button, empty for plain text
	AttachmentRef  string    // platform file reference or URL, empty if none
	AttachmentName string    // original filename of the attachment
	Direct         bool      // true for a direct message to the bot
	Timestamp      time.Time // when the message was sent
}

// OutboundMessage represents a message to be sent to the chat platform.
// Exactly one of ChannelID or UserID is the target; a set UserID makes
// the adapter deliver a direct message to that user.
type OutboundMessage struct {
	ChannelID string   // target channel
	UserID    string   // target user for a direct message
	Text      string   // message text (platform-native formatting)
	Choices   []Choice // buttons rendered under the message
}

// Choice is a button the recipient can press. Value round-trips back as
// InboundMessage.ChoiceValue.
type Choice struct {
	Label string
	Value string
}

// BotUserIDer is an optional interface that adapters can implement to
// expose the bot's own user ID. This enables self-message filtering.
type BotUserIDer interface {
	BotUserID() string
}
