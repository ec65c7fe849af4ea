// Package slack implements the gateway Adapter for Slack using Socket Mode.
package slack

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	slackapi "github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"
	"github.com/slack-go/slack/socketmode"

	"github.com/opsline/helpdesk/internal/gateway"
)

const (
	// maxRetries is the max number of retries for rate-limited API calls.
	maxRetries = 3
	// baseBackoff is the initial backoff duration for reconnection.
	baseBackoff = 2 * time.Second
	// maxBackoff caps the exponential backoff for reconnection.
	maxBackoff = 2 * time.Minute
	// maxReconnectAttempts limits reconnection retries before giving up.
	maxReconnectAttempts = 10
)

// slackClient abstracts the Slack API methods we use, enabling test mocks.
type slackClient interface {
	AuthTest() (*slackapi.AuthTestResponse, error)
	PostMessage(channelID string, options ...slackapi.MsgOption) (string, string, error)
	OpenConversation(params *slackapi.OpenConversationParameters) (*slackapi.Channel, bool, bool, error)
	GetUserInfo(userID string) (*slackapi.User, error)
}

// socketClient abstracts the Socket Mode client methods we use.
type socketClient interface {
	Run() error
	EventsChan() chan socketmode.Event
	Ack(req socketmode.Request, payload ...interface{})
}

// realSocketClient wraps *socketmode.Client to implement socketClient.
type realSocketClient struct {
	client *socketmode.Client
}

func (r *realSocketClient) Run() error                        { return r.client.Run() }
func (r *realSocketClient) EventsChan() chan socketmode.Event { return r.client.Events }
func (r *realSocketClient) Ack(req socketmode.Request, payload ...interface{}) {
	r.client.Ack(req, payload...)
}

// Adapter implements gateway.Adapter for Slack Socket Mode. Messages,
// file shares, and block-action button presses all surface as
// InboundMessages.
type Adapter struct {
	client       slackClient
	socket       socketClient
	botUserID    string
	appToken     string
	botToken     string
	channelID    string // default channel for messages without explicit channel
	mu           sync.Mutex
	connected    bool
	closed       bool
	inbound      chan gateway.InboundMessage
	cancelFunc   context.CancelFunc
	baseBackoff  time.Duration
	maxBackoff   time.Duration
	maxReconnect int
}

// AdapterOpts holds parameters for creating a Slack Adapter.
type AdapterOpts struct {
	AppToken  string // xapp-... Slack app-level token for Socket Mode
	BotToken  string // xoxb-... Slack bot token
	ChannelID string // default channel to post to
	// For testing: inject mock clients instead of real Slack API.
	Client slackClient
	Socket socketClient
}

// New creates a Slack Adapter.
func New(opts AdapterOpts) (*Adapter, error) {
	if opts.Client == nil && opts.BotToken == "" {
		return nil, fmt.Errorf("slack: bot token is required")
	}
	if opts.Socket == nil && opts.AppToken == "" {
		return nil, fmt.Errorf("slack: app token is required for socket mode")
	}

	a := &Adapter{
		appToken:     opts.AppToken,
		botToken:     opts.BotToken,
		channelID:    opts.ChannelID,
		inbound:      make(chan gateway.InboundMessage, 100),
		baseBackoff:  baseBackoff,
		maxBackoff:   maxBackoff,
		maxReconnect: maxReconnectAttempts,
	}

	if opts.Client != nil {
		a.client = opts.Client
	}
	if opts.Socket != nil {
		a.socket = opts.Socket
	}

	return a, nil
}

// Connect establishes the Socket Mode WebSocket connection.
func (a *Adapter) Connect(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return fmt.Errorf("slack: adapter already closed")
	}
	if a.connected {
		return nil
	}

	// Create real clients if not injected (production path).
	if a.client == nil {
		api := slackapi.New(a.botToken, slackapi.OptionAppLevelToken(a.appToken))
		a.client = api
		a.socket = &realSocketClient{client: socketmode.New(api)}
	}

	// Get bot user ID for self-message filtering.
	auth, err := a.client.AuthTest()
	if err != nil {
		return fmt.Errorf("slack: auth test: %w", err)
	}
	a.botUserID = auth.UserID

	a.connected = true
	return nil
}

// Listen returns a channel of inbound messages. Starts the Socket Mode
// event pump in a background goroutine. Must be called after Connect.
func (a *Adapter) Listen(ctx context.Context) (<-chan gateway.InboundMessage, error) {
	a.mu.Lock()
	if !a.connected {
		a.mu.Unlock()
		return nil, fmt.Errorf("slack: not connected")
	}
	a.mu.Unlock()

	listenCtx, cancel := context.WithCancel(ctx)
	a.mu.Lock()
	a.cancelFunc = cancel
	a.mu.Unlock()

	// Start socket mode in background with reconnection logic.
	go a.runWithReconnect(listenCtx)

	// Pump events from socket mode to inbound channel.
	go a.pumpEvents(listenCtx)

	return a.inbound, nil
}

// Send delivers a message to Slack. A set UserID opens (or reuses) the
// IM conversation with that user; Choices become interactive buttons.
func (a *Adapter) Send(ctx context.Context, msg gateway.OutboundMessage) error {
	a.mu.Lock()
	if !a.connected {
		a.mu.Unlock()
		return fmt.Errorf("slack: not connected")
	}
	a.mu.Unlock()

	channelID := msg.ChannelID
	if msg.UserID != "" {
		var ch *slackapi.Channel
		err := retryOnRateLimit(ctx, func() error {
			var apiErr error
			ch, _, _, apiErr = a.client.OpenConversation(&slackapi.OpenConversationParameters{
				Users: []string{msg.UserID},
			})
			return apiErr
		})
		if err != nil {
			return fmt.Errorf("slack: open im with %s: %w", msg.UserID, err)
		}
		channelID = ch.ID
	}
	if channelID == "" {
		channelID = a.channelID
	}
	if channelID == "" {
		return fmt.Errorf("slack: no channel specified")
	}

	options := buildMessageOptions(msg)

	err := retryOnRateLimit(ctx, func() error {
		_, _, postErr := a.client.PostMessage(channelID, options...)
		return postErr
	})
	if err != nil {
		return fmt.Errorf("slack: post message: %w", err)
	}
	return nil
}

// Close shuts down the adapter and closes the inbound channel.
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
	close(a.inbound)
	return nil
}

// BotUserID returns the bot's Slack user ID (available after Connect).
func (a *Adapter) BotUserID() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.botUserID
}

// runWithReconnect runs the Socket Mode client and retries with exponential
// backoff when Run() returns an error (e.g., reconnection failure).
func (a *Adapter) runWithReconnect(ctx context.Context) {
	for attempt := 0; attempt < a.maxReconnect; attempt++ {
		err := a.socket.Run()
		if err == nil {
			return // clean shutdown
		}

		// Check if we're shutting down.
		select {
		case <-ctx.Done():
			return
		default:
		}

		wait := time.Duration(math.Pow(2, float64(attempt))) * a.baseBackoff
		if wait > a.maxBackoff {
			wait = a.maxBackoff
		}

		log.Printf("slack: socket mode disconnected (attempt %d/%d): %v, reconnecting in %v",
			attempt+1, a.maxReconnect, err, wait)

		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
		}
	}
	log.Printf("slack: socket mode exhausted %d reconnection attempts, giving up", a.maxReconnect)
}

// pumpEvents reads Socket Mode events and converts them to InboundMessages.
func (a *Adapter) pumpEvents(ctx context.Context) {
	events := a.socket.EventsChan()
	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-events:
			if !ok {
				return
			}
			a.handleSocketEvent(evt)
		}
	}
}

// handleSocketEvent processes a single Socket Mode event.
func (a *Adapter) handleSocketEvent(evt socketmode.Event) {
	switch evt.Type {
	case socketmode.EventTypeEventsAPI:
		eventsAPIEvent, ok := evt.Data.(slackevents.EventsAPIEvent)
		if !ok {
			return
		}
		var raw json.RawMessage
		if evt.Request != nil {
			raw = evt.Request.Payload
			a.socket.Ack(*evt.Request)
		}
		a.handleEventsAPI(eventsAPIEvent, raw)

	case socketmode.EventTypeInteractive:
		callback, ok := evt.Data.(slackapi.InteractionCallback)
		if !ok {
			return
		}
		if evt.Request != nil {
			a.socket.Ack(*evt.Request)
		}
		a.handleInteraction(callback)

	case socketmode.EventTypeConnecting:
		log.Printf("slack: connecting to Socket Mode...")

	case socketmode.EventTypeConnected:
		log.Printf("slack: connected to Socket Mode")

	case socketmode.EventTypeConnectionError:
		log.Printf("slack: connection error: %v", evt.Data)

	case socketmode.EventTypeDisconnect:
		log.Printf("slack: server requested disconnect, will reconnect")
	}
}

// handleEventsAPI processes Events API callbacks. raw is the envelope
// payload the event was decoded from; it carries fields the typed
// events drop.
func (a *Adapter) handleEventsAPI(event slackevents.EventsAPIEvent, raw json.RawMessage) {
	switch event.Type {
	case slackevents.CallbackEvent:
		innerEvent := event.InnerEvent
		if ev, ok := innerEvent.Data.(*slackevents.MessageEvent); ok {
			a.handleMessage(ev, raw)
		}
	}
}

// sharedFile is the slice of a file object we need from a file_share
// message. slackevents.MessageEvent has no files field, so the files
// array is decoded straight from the envelope payload.
type sharedFile struct {
	Name               string `json:"name"`
	URLPrivate         string `json:"url_private"`
	URLPrivateDownload string `json:"url_private_download"`
}

// firstSharedFile extracts the first file from a raw event envelope.
func firstSharedFile(raw json.RawMessage) (sharedFile, bool) {
	var envelope struct {
		Event struct {
			Files []sharedFile `json:"files"`
		} `json:"event"`
	}
	if len(raw) == 0 || json.Unmarshal(raw, &envelope) != nil {
		return sharedFile{}, false
	}
	if len(envelope.Event.Files) == 0 {
		return sharedFile{}, false
	}
	return envelope.Event.Files[0], true
}

// handleMessage converts a Slack message event to an InboundMessage.
func (a *Adapter) handleMessage(ev *slackevents.MessageEvent, raw json.RawMessage) {
	// Filter bot self-messages and other bots.
	if ev.User == a.botUserID || ev.BotID != "" {
		return
	}
	// Edits, deletes and the like are not ticket traffic. File shares are.
	if ev.SubType != "" && ev.SubType != "file_share" {
		return
	}

	msg := gateway.InboundMessage{
		Platform:  "slack",
		ChannelID: ev.Channel,
		UserID:    ev.User,
		UserName:  a.resolveUserName(ev.User),
		Text:      ev.Text,
		Direct:    ev.ChannelType == "im",
		Timestamp: parseSlackTimestamp(ev.TimeStamp),
	}
	if ev.SubType == "file_share" {
		if f, ok := firstSharedFile(raw); ok {
			msg.AttachmentRef = f.URLPrivateDownload
			if msg.AttachmentRef == "" {
				msg.AttachmentRef = f.URLPrivate
			}
			msg.AttachmentName = f.Name
		}
	}

	a.inbound <- msg
}

// handleInteraction converts a block-action button press to a choice
// InboundMessage.
func (a *Adapter) handleInteraction(callback slackapi.InteractionCallback) {
	if callback.Type != slackapi.InteractionTypeBlockActions {
		return
	}
	if len(callback.ActionCallback.BlockActions) == 0 {
		return
	}
	action := callback.ActionCallback.BlockActions[0]

	userName := callback.User.Name
	if userName == "" {
		userName = a.resolveUserName(callback.User.ID)
	}

	a.inbound <- gateway.InboundMessage{
		Platform:    "slack",
		ChannelID:   callback.Channel.ID,
		UserID:      callback.User.ID,
		UserName:    userName,
		ChoiceValue: action.Value,
		Direct:      strings.HasPrefix(callback.Channel.ID, "D"),
		Timestamp:   time.Now(),
	}
}

// resolveUserName looks up a user's display name. Falls back to user ID.
func (a *Adapter) resolveUserName(userID string) string {
	if userID == "" {
		return ""
	}
	user, err := a.client.GetUserInfo(userID)
	if err != nil {
		return userID
	}
	if user.Profile.DisplayName != "" {
		return user.Profile.DisplayName
	}
	return user.RealName
}

// buildMessageOptions translates an OutboundMessage into Slack MsgOptions.
func buildMessageOptions(msg gateway.OutboundMessage) []slackapi.MsgOption {
	if len(msg.Choices) == 0 {
		return []slackapi.MsgOption{slackapi.MsgOptionText(msg.Text, false)}
	}

	blocks := []slackapi.Block{
		slackapi.NewSectionBlock(
			slackapi.NewTextBlockObject(slackapi.MarkdownType, msg.Text, false, false),
			nil, nil),
	}
	var buttons []slackapi.BlockElement
	for _, c := range msg.Choices {
		buttons = append(buttons, slackapi.NewButtonBlockElement(
			c.Value, c.Value,
			slackapi.NewTextBlockObject(slackapi.PlainTextType, c.Label, false, false)))
	}
	blocks = append(blocks, slackapi.NewActionBlock("", buttons...))

	return []slackapi.MsgOption{
		slackapi.MsgOptionText(msg.Text, false),
		slackapi.MsgOptionBlocks(blocks...),
	}
}

// retryOnRateLimit calls fn and retries with backoff on Slack rate limit errors.
// It respects context cancellation and the RetryAfter duration from Slack.
func retryOnRateLimit(ctx context.Context, fn func() error) error {
	for attempt := 0; attempt <= maxRetries; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}

		var rle *slackapi.RateLimitedError
		if !errors.As(err, &rle) {
			return err // not a rate limit error, don't retry
		}

		if attempt == maxRetries {
			return err
		}

		wait := rle.RetryAfter
		if wait <= 0 {
			wait = time.Duration(math.Pow(2, float64(attempt))) * time.Second
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
	return nil // unreachable
}

// parseSlackTimestamp converts a Slack timestamp (e.g., "1234567890.123456")
// to a time.Time.
func parseSlackTimestamp(ts string) time.Time {
	parts := strings.SplitN(ts, ".", 2)
	if len(parts) == 0 {
		return time.Time{}
	}
	sec, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return time.Time{}
	}
	return time.Unix(sec, 0)
}
