// Package discord implements the gateway Adapter for Discord using the Gateway WebSocket.
package discord

import (
	"context"
	"fmt"
	"log"
	"math"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/opsline/helpdesk/internal/gateway"
)

const (
	// maxRetries is the max number of retries for rate-limited API calls.
	maxRetries = 3
	// baseBackoff is the initial backoff duration for retries.
	baseBackoff = 2 * time.Second
	// maxBackoff caps the exponential backoff for retries.
	maxBackoff = 2 * time.Minute
	// buttonsPerRow is Discord's component limit per action row.
	buttonsPerRow = 5
)

// session abstracts the discordgo.Session methods we use, enabling test mocks.
type session interface {
	Open() error
	Close() error
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
	UserChannelCreate(recipientID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
	AddHandler(handler interface{}) func()
}

// realSession wraps *discordgo.Session to implement the session interface.
type realSession struct {
	s *discordgo.Session
}

func (r *realSession) Open() error  { return r.s.Open() }
func (r *realSession) Close() error { return r.s.Close() }
func (r *realSession) ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	return r.s.ChannelMessageSendComplex(channelID, data, options...)
}
func (r *realSession) UserChannelCreate(recipientID string, options ...discordgo.RequestOption) (*discordgo.Channel, error) {
	return r.s.UserChannelCreate(recipientID, options...)
}
func (r *realSession) InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error {
	return r.s.InteractionRespond(interaction, resp, options...)
}
func (r *realSession) AddHandler(handler interface{}) func() {
	return r.s.AddHandler(handler)
}

// Adapter implements gateway.Adapter for Discord via the Gateway WebSocket.
// Chat messages and button interactions both surface as InboundMessages;
// button presses carry their custom ID as the ChoiceValue.
type Adapter struct {
	sess           session
	botToken       string
	channelID      string // default channel for messages
	botUserID      string
	mu             sync.Mutex
	connected      bool
	closed         bool
	inbound        chan gateway.InboundMessage
	cancelFunc     context.CancelFunc
	removeHandlers []func()
	baseBackoff    time.Duration
	maxBackoff     time.Duration
}

// AdapterOpts holds parameters for creating a Discord Adapter.
type AdapterOpts struct {
	BotToken  string // Discord bot token
	ChannelID string // default channel to post to
	// For testing: inject a mock session instead of real Discord API.
	Session session
}

// New creates a Discord Adapter.
func New(opts AdapterOpts) (*Adapter, error) {
	if opts.Session == nil && opts.BotToken == "" {
		return nil, fmt.Errorf("discord: bot token is required")
	}

	a := &Adapter{
		botToken:    opts.BotToken,
		channelID:   opts.ChannelID,
		inbound:     make(chan gateway.InboundMessage, 100),
		baseBackoff: baseBackoff,
		maxBackoff:  maxBackoff,
	}

	if opts.Session != nil {
		a.sess = opts.Session
	}

	return a, nil
}

// Connect establishes the Discord Gateway WebSocket connection.
func (a *Adapter) Connect(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return fmt.Errorf("discord: adapter already closed")
	}
	if a.connected {
		return nil
	}

	// Create real session if not injected (production path).
	if a.sess == nil {
		dg, err := discordgo.New("Bot " + a.botToken)
		if err != nil {
			return fmt.Errorf("discord: create session: %w", err)
		}
		dg.Identify.Intents = discordgo.IntentsGuildMessages |
			discordgo.IntentsDirectMessages | discordgo.IntentsMessageContent
		a.sess = &realSession{s: dg}
	}

	// Register Ready handler to capture bot user ID on connect/reconnect.
	a.sess.AddHandler(func(_ *discordgo.Session, r *discordgo.Ready) {
		a.mu.Lock()
		a.botUserID = r.User.ID
		a.mu.Unlock()
		log.Printf("discord: connected as %s (ID: %s)", r.User.Username, r.User.ID)
	})

	// discordgo handles reconnection automatically; log for observability.
	a.sess.AddHandler(func(_ *discordgo.Session, d *discordgo.Disconnect) {
		log.Printf("discord: gateway disconnected, discordgo will auto-reconnect")
	})
	a.sess.AddHandler(func(_ *discordgo.Session, r *discordgo.Resumed) {
		log.Printf("discord: gateway session resumed")
	})

	if err := a.sess.Open(); err != nil {
		return fmt.Errorf("discord: open gateway: %w", err)
	}

	a.connected = true
	return nil
}

// Listen returns a channel of inbound messages from Discord. Registers
// message and interaction handlers on the Gateway session. Must be called
// after Connect.
func (a *Adapter) Listen(ctx context.Context) (<-chan gateway.InboundMessage, error) {
	a.mu.Lock()
	if !a.connected {
		a.mu.Unlock()
		return nil, fmt.Errorf("discord: not connected")
	}
	a.mu.Unlock()

	_, cancel := context.WithCancel(ctx)
	a.mu.Lock()
	a.cancelFunc = cancel
	a.mu.Unlock()

	removeMsg := a.sess.AddHandler(func(_ *discordgo.Session, m *discordgo.MessageCreate) {
		a.handleMessage(m)
	})
	removeInteraction := a.sess.AddHandler(func(_ *discordgo.Session, i *discordgo.InteractionCreate) {
		a.handleInteraction(i)
	})
	a.mu.Lock()
	a.removeHandlers = append(a.removeHandlers, removeMsg, removeInteraction)
	a.mu.Unlock()

	return a.inbound, nil
}

// Send delivers a message to Discord. A set UserID opens (or reuses) the
// DM channel with that user; Choices become button components.
func (a *Adapter) Send(ctx context.Context, msg gateway.OutboundMessage) error {
	a.mu.Lock()
	if !a.connected {
		a.mu.Unlock()
		return fmt.Errorf("discord: not connected")
	}
	a.mu.Unlock()

	channelID := msg.ChannelID
	if msg.UserID != "" {
		var dm *discordgo.Channel
		err := a.retryOnRateLimit(ctx, func() error {
			var apiErr error
			dm, apiErr = a.sess.UserChannelCreate(msg.UserID)
			return apiErr
		})
		if err != nil {
			return fmt.Errorf("discord: open dm with %s: %w", msg.UserID, err)
		}
		channelID = dm.ID
	}
	if channelID == "" {
		channelID = a.channelID
	}
	if channelID == "" {
		return fmt.Errorf("discord: no channel specified")
	}

	data := buildMessageSend(msg)
	err := a.retryOnRateLimit(ctx, func() error {
		_, sendErr := a.sess.ChannelMessageSendComplex(channelID, data)
		return sendErr
	})
	if err != nil {
		return fmt.Errorf("discord: send message: %w", err)
	}
	return nil
}

// Close gracefully shuts down the adapter connection.
func (a *Adapter) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return nil
	}
	a.closed = true
	a.connected = false
	if a.cancelFunc != nil {
		a.cancelFunc()
	}
	for _, remove := range a.removeHandlers {
		remove()
	}
	close(a.inbound)
	if a.sess != nil {
		return a.sess.Close()
	}
	return nil
}

// BotUserID returns the bot's Discord user ID (available after Connect).
func (a *Adapter) BotUserID() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.botUserID
}

// SetBotUserID sets the bot user ID (used for self-message filtering).
func (a *Adapter) SetBotUserID(id string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.botUserID = id
}

// handleMessage converts a Discord message event to an InboundMessage.
func (a *Adapter) handleMessage(m *discordgo.MessageCreate) {
	if m.Author == nil {
		return
	}

	a.mu.Lock()
	botID := a.botUserID
	a.mu.Unlock()

	if m.Author.ID == botID || m.Author.Bot {
		return
	}

	msg := gateway.InboundMessage{
		Platform:  "discord",
		ChannelID: m.ChannelID,
		UserID:    m.Author.ID,
		UserName:  m.Author.Username,
		Text:      m.Content,
		// Messages without a guild arrive over the DM channel.
		Direct: m.GuildID == "",
	}
	if len(m.Attachments) > 0 && m.Attachments[0] != nil {
		msg.AttachmentRef = m.Attachments[0].URL
		msg.AttachmentName = m.Attachments[0].Filename
	}
	if ts, err := discordgo.SnowflakeTimestamp(m.ID); err == nil {
		msg.Timestamp = ts
	}

	a.inbound <- msg
}

// handleInteraction converts a button press to a choice InboundMessage.
// The interaction is acknowledged immediately so Discord does not show
// a failure spinner; the actual response goes out as a regular message.
func (a *Adapter) handleInteraction(i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionMessageComponent {
		return
	}

	if err := a.sess.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredMessageUpdate,
	}); err != nil {
		log.Printf("discord: ack interaction: %v", err)
	}

	user := i.User // set for DM interactions
	if user == nil && i.Member != nil {
		user = i.Member.User // set for guild interactions
	}
	if user == nil {
		return
	}

	a.inbound <- gateway.InboundMessage{
		Platform:    "discord",
		ChannelID:   i.ChannelID,
		UserID:      user.ID,
		UserName:    user.Username,
		ChoiceValue: i.MessageComponentData().CustomID,
		Direct:      i.GuildID == "",
		Timestamp:   time.Now(),
	}
}

// buildMessageSend translates an OutboundMessage into a Discord MessageSend.
func buildMessageSend(msg gateway.OutboundMessage) *discordgo.MessageSend {
	data := &discordgo.MessageSend{
		Content: msg.Text,
	}
	for i := 0; i < len(msg.Choices); i += buttonsPerRow {
		end := i + buttonsPerRow
		if end > len(msg.Choices) {
			end = len(msg.Choices)
		}
		row := discordgo.ActionsRow{}
		for _, c := range msg.Choices[i:end] {
			row.Components = append(row.Components, discordgo.Button{
				Label:    c.Label,
				Style:    discordgo.SecondaryButton,
				CustomID: c.Value,
			})
		}
		data.Components = append(data.Components, row)
	}
	return data
}

// retryOnRateLimit calls fn and retries with exponential backoff on Discord
// rate limit errors. It respects context cancellation.
func (a *Adapter) retryOnRateLimit(ctx context.Context, fn func() error) error {
	for attempt := 0; attempt <= maxRetries; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}

		restErr, ok := err.(*discordgo.RESTError)
		if !ok || restErr.Response == nil || restErr.Response.StatusCode != 429 {
			return err // not a rate limit error
		}

		if attempt == maxRetries {
			return err
		}

		wait := time.Duration(math.Pow(2, float64(attempt))) * a.baseBackoff
		if wait > a.maxBackoff {
			wait = a.maxBackoff
		}

		log.Printf("discord: rate limited (attempt %d/%d), retrying in %v",
			attempt+1, maxRetries, wait)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
	return nil // unreachable
}
