// Package conversation is the client-side counterpart of the concierge
// backend: the message state machine, the single-slot send queue, the SSE
// stream consumer, and per-persona history persistence.
package conversation

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"playabot-backend/pkg/logx"
)

// Role of a message author.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one conversation entry. Ordering is insertion order; the only
// in-place mutation is the streaming fill of the newest assistant message.
type Message struct {
	ID        string `json:"id"`
	Role      Role   `json:"role"`
	Content   string `json:"content"`
	Timestamp int64  `json:"timestamp"` // epoch milliseconds
}

// Streamer produces the event stream for one chat request. Implemented by
// Client; tests substitute fakes.
type Streamer interface {
	StreamChat(ctx context.Context, req ChatRequest, onEvent func(StreamEvent) error) error
}

// Conversation holds the chat state for one active persona.
//
// State machine: idle → user message appended → assistant placeholder
// appended → streaming → settled (completed or errored). At most one
// assistant placeholder is unfilled at a time; Send while streaming parks
// the text in a single-slot queue (latest wins) instead of interleaving.
type Conversation struct {
	mu sync.Mutex

	personaID string
	messages  []Message
	streaming bool
	lastErr   string

	pending    string
	hasPending bool

	streamer      Streamer
	history       HistoryStore
	systemPrompt  string
	maxTokens     int
	onUpdate      func()
	dispatchDelay time.Duration
}

// Option configures a Conversation.
type Option func(*Conversation)

// WithHistory attaches a durable history store.
func WithHistory(h HistoryStore) Option {
	return func(c *Conversation) { c.history = h }
}

// WithSystemPrompt sets the system prompt sent with every turn. When empty
// the backend falls back to the persona default.
func WithSystemPrompt(prompt string) Option {
	return func(c *Conversation) { c.systemPrompt = prompt }
}

// WithMaxTokens caps the assistant response length.
func WithMaxTokens(n int) Option {
	return func(c *Conversation) { c.maxTokens = n }
}

// WithUpdateFunc registers a callback fired after every state change, for
// UI re-render.
func WithUpdateFunc(fn func()) Option {
	return func(c *Conversation) { c.onUpdate = fn }
}

// WithDispatchDelay overrides the pause before a queued message is sent
// once the in-flight stream settles.
func WithDispatchDelay(d time.Duration) Option {
	return func(c *Conversation) { c.dispatchDelay = d }
}

// New creates a Conversation backed by the given streamer.
func New(streamer Streamer, opts ...Option) *Conversation {
	c := &Conversation{
		streamer:      streamer,
		dispatchDelay: 100 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetPersona flushes any unsaved history for the outgoing persona, resets
// state, and loads the incoming persona's history.
func (c *Conversation) SetPersona(personaID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.history != nil && c.personaID != "" && len(c.messages) > 0 {
		if err := c.history.Save(c.personaID, c.messages); err != nil {
			// The in-memory conversation being replaced is not corrupted by
			// a failed persistence attempt.
			logx.Warn().Err(err).Str("persona", c.personaID).Msg("failed to flush outgoing history")
		}
	}

	c.personaID = personaID
	c.messages = nil
	c.streaming = false
	c.lastErr = ""
	c.pending = ""
	c.hasPending = false

	if c.history != nil && personaID != "" {
		loaded, err := c.history.Load(personaID)
		if err != nil {
			return err
		}
		c.messages = loaded
	}
	c.notify()
	return nil
}

// FirstVisit reports whether this persona has been seen before and marks it
// visited, for first-visit vs returning greeting selection.
func (c *Conversation) FirstVisit() bool {
	c.mu.Lock()
	personaID := c.personaID
	history := c.history
	c.mu.Unlock()

	if history == nil || personaID == "" {
		return true
	}
	visited, err := history.Visited(personaID)
	if err != nil {
		return true
	}
	if !visited {
		if err := history.MarkVisited(personaID); err != nil {
			logx.Warn().Err(err).Msg("failed to mark persona visited")
		}
	}
	return !visited
}

// Messages returns a snapshot copy of the message list.
func (c *Conversation) Messages() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// IsStreaming reports whether an assistant response is in flight.
func (c *Conversation) IsStreaming() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.streaming
}

// Err returns the error from the last settled stream, "" when it completed.
func (c *Conversation) Err() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// AddAssistantMessage appends assistant text directly, bypassing the model
// call. Used for greetings.
func (c *Conversation) AddAssistantMessage(text string) {
	c.mu.Lock()
	c.messages = append(c.messages, newMessage(RoleAssistant, text))
	c.persistLocked()
	c.mu.Unlock()
	c.notify()
}

// AddUserMessage appends user text without triggering a model response.
func (c *Conversation) AddUserMessage(text string) {
	c.mu.Lock()
	c.messages = append(c.messages, newMessage(RoleUser, strings.TrimSpace(text)))
	c.persistLocked()
	c.mu.Unlock()
	c.notify()
}

// Send appends the user message and streams the assistant response,
// updating the placeholder created here as deltas arrive. While a stream is
// in flight the text is parked in the single-slot queue instead (latest
// wins) and dispatched automatically once the stream settles. Send returns
// as soon as the stream is started; observe progress via the update
// callback and Messages.
func (c *Conversation) Send(ctx context.Context, text string) {
	c.sendWithContent(ctx, text, nil)
}

// SendWithAttachments is Send with image attachments. Attachments are
// released once the request content is built. A queued resend keeps only
// the text.
func (c *Conversation) SendWithAttachments(ctx context.Context, text string, attachments []*Attachment) {
	c.sendWithContent(ctx, text, attachments)
}

func (c *Conversation) sendWithContent(ctx context.Context, text string, attachments []*Attachment) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" && len(attachments) == 0 {
		return
	}

	c.mu.Lock()
	if c.streaming {
		// Single-slot queue, latest wins.
		c.pending = text
		c.hasPending = true
		c.mu.Unlock()
		return
	}

	c.lastErr = ""
	c.messages = append(c.messages, newMessage(RoleUser, displayText(trimmed, len(attachments))))

	placeholder := newMessage(RoleAssistant, "")
	c.messages = append(c.messages, placeholder)
	c.streaming = true

	req := ChatRequest{
		System:    c.systemPrompt,
		Messages:  c.wireMessagesLocked(placeholder.ID, trimmed, attachments),
		MaxTokens: c.maxTokens,
	}
	c.mu.Unlock()
	c.notify()

	for _, a := range attachments {
		a.Release()
	}

	go c.run(ctx, placeholder.ID, req)
}

// wireMessagesLocked builds the outgoing message list: the full history
// minus the placeholder, with the just-appended user turn carrying the
// attachment parts when present.
func (c *Conversation) wireMessagesLocked(placeholderID, userText string, attachments []*Attachment) []WireMessage {
	out := make([]WireMessage, 0, len(c.messages))
	for i, m := range c.messages {
		if m.ID == placeholderID {
			continue
		}
		if i == len(c.messages)-2 && len(attachments) > 0 {
			// The user turn that triggered this send.
			out = append(out, WireMessage{Role: string(RoleUser), Content: multimodalContent(userText, attachments)})
			continue
		}
		out = append(out, WireMessage{Role: string(m.Role), Content: m.Content})
	}
	return out
}

func (c *Conversation) run(ctx context.Context, placeholderID string, req ChatRequest) {
	var full strings.Builder
	var streamErr string

	err := c.streamer.StreamChat(ctx, req, func(ev StreamEvent) error {
		switch ev.Type {
		case "text":
			full.WriteString(ev.Text)
			c.updateAssistant(placeholderID, full.String())
		case "error":
			// The relay keeps streaming after an upstream error event; so do
			// we. The message is kept in case nothing else arrives.
			streamErr = ev.Error
		}
		return nil
	})

	c.settle(placeholderID, err, streamErr, full.Len() > 0)
}

// updateAssistant fills the placeholder identified by id. The id captured
// at creation time is the only lookup key; position is never used.
func (c *Conversation) updateAssistant(id, content string) {
	c.mu.Lock()
	for i := range c.messages {
		if c.messages[i].ID == id {
			c.messages[i].Content = content
			break
		}
	}
	c.mu.Unlock()
	c.notify()
}

func (c *Conversation) settle(placeholderID string, err error, streamErr string, gotText bool) {
	c.mu.Lock()
	c.streaming = false

	failed := err != nil || (streamErr != "" && !gotText)
	if failed {
		// Drop the unfilled placeholder; the user message stays.
		for i := range c.messages {
			if c.messages[i].ID == placeholderID && c.messages[i].Content == "" {
				c.messages = append(c.messages[:i], c.messages[i+1:]...)
				break
			}
		}
		if err != nil {
			c.lastErr = err.Error()
		} else {
			c.lastErr = streamErr
		}
	}

	// Persist on both settled states.
	c.persistLocked()

	dispatch := c.hasPending
	pendingText := c.pending
	c.pending = ""
	c.hasPending = false
	delay := c.dispatchDelay
	c.mu.Unlock()
	c.notify()

	if dispatch {
		time.AfterFunc(delay, func() {
			c.Send(context.Background(), pendingText)
		})
	}
}

// Flush persists the current history, for page-unload style checkpoints.
func (c *Conversation) Flush() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.history == nil || c.personaID == "" {
		return nil
	}
	return c.history.Save(c.personaID, c.messages)
}

func (c *Conversation) persistLocked() {
	if c.history == nil || c.personaID == "" {
		return
	}
	if err := c.history.Save(c.personaID, c.messages); err != nil {
		logx.Warn().Err(err).Str("persona", c.personaID).Msg("failed to persist history")
	}
}

func (c *Conversation) notify() {
	if c.onUpdate != nil {
		c.onUpdate()
	}
}

func newMessage(role Role, content string) Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now().UnixMilli(),
	}
}

func displayText(text string, imageCount int) string {
	if imageCount == 0 {
		return text
	}
	label := "📷 이미지"
	if text == "" {
		return label
	}
	return text + " " + label
}
