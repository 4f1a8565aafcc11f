// Package chatclient implements the chat orchestration client that a mobile
// or desktop frontend embeds. It owns the conversation state machine for one
// chat surface: request lifecycle, supersede-style cancellation, wall-clock
// timeout, typing simulation, recipe-card attachment, and conversation
// persistence.
package chatclient

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/handsapp/backend/internal/domain/chat"
	"go.uber.org/zap"
)

const (
	// DefaultTimeout bounds one whole request from send to full body.
	DefaultTimeout = 30 * time.Second
	// DefaultTypingDelay is the pause between revealed characters.
	DefaultTypingDelay = 6 * time.Millisecond

	streamPath = "/api/v1/chat/stream"

	timeoutMessage   = "Sorry, the request timed out. Please try again."
	errorMessage     = "Sorry, I encountered an error. Please try again."
	emptyBodyMessage = "I couldn't find any recipes for that. Try asking differently!"
)

// ErrTimeout is reported to the error callback when the wall-clock deadline
// aborts an in-flight request.
var ErrTimeout = errors.New("request timed out, please check your connection and try again")

// ConversationStore persists completed turns. The client only ever appends;
// persistence failures are logged and never fail the chat turn.
type ConversationStore interface {
	CreateConversation(ctx context.Context, firstMessage string) (string, error)
	AppendMessage(ctx context.Context, conversationID string, role chat.Role, content string, recipes []chat.ParsedRecipe) error
}

// Config configures a chat client.
type Config struct {
	// BaseURL of the recommendation API, without trailing slash.
	BaseURL string
	// APIKey is sent as the apikey header and used as the anonymous bearer.
	APIKey string
	// TokenProvider returns the current user's access token, or "" for
	// anonymous requests.
	TokenProvider func() string
	// Store is optional; without it turns are not persisted.
	Store ConversationStore
	// OnError is invoked once per failed turn. Cancellation never fires it.
	OnError func(error)
	// OnChange is invoked after every state mutation, outside the client's
	// lock. UIs use it to re-render.
	OnChange func()

	Timeout     time.Duration
	TypingDelay time.Duration

	Logger     *zap.Logger
	HTTPClient *resty.Client
}

// Client is the chat orchestration state machine. At most one request is in
// flight per client: sending while busy supersedes the prior request rather
// than queueing behind it.
type Client struct {
	http        *resty.Client
	apiKey      string
	tokens      func() string
	store       ConversationStore
	onError     func(error)
	onChange    func()
	timeout     time.Duration
	typingDelay time.Duration
	logger      *zap.Logger

	mu             sync.Mutex
	messages       []chat.Message
	recipeCards    []chat.RecipeCardData
	status         chat.StreamingStatus
	err            error
	conversationID string
	cancel         context.CancelFunc
	gen            uint64
	closed         bool
}

// NewClient creates a chat client. Zero-value durations fall back to the
// defaults; a nil logger falls back to zap.NewNop.
func NewClient(cfg Config) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = resty.New()
	}
	httpClient.SetBaseURL(cfg.BaseURL)

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	typingDelay := cfg.TypingDelay
	if typingDelay <= 0 {
		typingDelay = DefaultTypingDelay
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		http:        httpClient,
		apiKey:      cfg.APIKey,
		tokens:      cfg.TokenProvider,
		store:       cfg.Store,
		onError:     cfg.OnError,
		onChange:    cfg.OnChange,
		timeout:     timeout,
		typingDelay: typingDelay,
		logger:      logger,
		status:      chat.StatusIdle,
	}
}

type streamRequest struct {
	Prompt              string         `json:"prompt"`
	ConversationHistory []chat.Message `json:"conversationHistory,omitempty"`
}

// SendMessage runs one chat turn to completion. It returns once the turn
// reaches a terminal state (idle or error); superseded and cancelled turns
// return nil without touching state further.
func (c *Client) SendMessage(ctx context.Context, message string, conversationID string) error {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	// Supersede: the newest request wins, the prior one is aborted and its
	// remaining state transitions are suppressed by the generation check.
	if c.cancel != nil {
		c.cancel()
	}
	c.gen++
	gen := c.gen

	reqCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel

	history := make([]chat.Message, len(c.messages))
	copy(history, c.messages)

	c.messages = append(c.messages, chat.Message{Role: chat.RoleUser, Content: message})
	c.status = chat.StatusConnecting
	c.err = nil

	if conversationID == "" {
		conversationID = c.conversationID
	}
	c.mu.Unlock()
	c.notify()

	defer cancel()

	conversationID = c.resolveConversation(reqCtx, gen, conversationID, message)

	body, err := c.fetch(reqCtx, gen, message, history)
	if err != nil {
		return c.finishWithError(reqCtx, gen, err)
	}

	c.mutate(gen, func() { c.status = chat.StatusTyping })

	parsed := chat.ParseAnswerXML(body)

	var assistantIndex int
	c.mutate(gen, func() {
		assistantIndex = len(c.messages)
		c.messages = append(c.messages, chat.Message{Role: chat.RoleAssistant, Content: ""})
	})

	assistantText := body
	if parsed != nil {
		assistantText = parsed.Text
	}

	switch {
	case parsed != nil && parsed.Text != "":
		c.typeText(reqCtx, gen, parsed.Text)
		if len(parsed.Items) > 0 {
			c.mutate(gen, func() {
				c.recipeCards = append(c.recipeCards, chat.RecipeCardData{
					MessageIndex: assistantIndex,
					Recipes:      *parsed,
				})
			})
		}
	case body != "":
		// Unparseable body: show it verbatim rather than hiding the answer.
		assistantText = body
		c.typeText(reqCtx, gen, body)
	default:
		assistantText = emptyBodyMessage
		c.mutate(gen, func() {
			if assistantIndex < len(c.messages) {
				c.messages[assistantIndex].Content = emptyBodyMessage
			}
		})
	}

	if reqCtx.Err() != nil {
		c.mutate(gen, func() { c.status = chat.StatusIdle })
		return nil
	}

	c.persistAssistant(gen, conversationID, assistantText, parsed)

	c.mutate(gen, func() { c.status = chat.StatusIdle })
	return nil
}

// fetch posts the prompt and reads the full response body. The provider
// streams internally but the client consumes the complete text.
func (c *Client) fetch(ctx context.Context, gen uint64, message string, history []chat.Message) (string, error) {
	timeoutCtx, cancelTimeout := context.WithTimeout(ctx, c.timeout)
	// Typing simulation is not subject to the request deadline, so the timer
	// is released as soon as the body has been read.
	defer cancelTimeout()

	token := c.apiKey
	if c.tokens != nil {
		if t := c.tokens(); t != "" {
			token = t
		}
	}

	resp, err := c.http.R().
		SetContext(timeoutCtx).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "text/plain").
		SetHeader("apikey", c.apiKey).
		SetHeader("Authorization", "Bearer "+token).
		SetBody(streamRequest{Prompt: message, ConversationHistory: history}).
		Post(streamPath)
	if err != nil {
		if timeoutCtx.Err() == context.DeadlineExceeded && ctx.Err() == nil {
			return "", ErrTimeout
		}
		return "", err
	}

	c.mutate(gen, func() { c.status = chat.StatusStreaming })

	if resp.IsError() {
		return "", fmt.Errorf("server error (%d): %s", resp.StatusCode(), resp.String())
	}
	return resp.String(), nil
}

// finishWithError resolves a failed turn. Deliberate cancellation is not an
// error: the client returns to idle silently, leaving the already-appended
// user message in place.
func (c *Client) finishWithError(ctx context.Context, gen uint64, err error) error {
	if ctx.Err() == context.Canceled && !errors.Is(err, ErrTimeout) {
		c.mutate(gen, func() { c.status = chat.StatusIdle })
		return nil
	}

	fallback := errorMessage
	if errors.Is(err, ErrTimeout) {
		fallback = timeoutMessage
	}

	fired := c.mutate(gen, func() {
		c.err = err
		c.status = chat.StatusError
		c.messages = append(c.messages, chat.Message{Role: chat.RoleAssistant, Content: fallback})
	})

	if fired && c.onError != nil {
		c.onError(err)
	}
	c.logger.Error("chat turn failed", zap.Error(err))
	return err
}

// typeText reveals text into the last message one character at a time. The
// loop yields between increments so cancellation is observed promptly.
func (c *Client) typeText(ctx context.Context, gen uint64, text string) {
	runes := []rune(text)
	for i := range runes {
		if ctx.Err() != nil {
			return
		}

		current := string(runes[:i+1])
		if !c.mutate(gen, func() {
			if len(c.messages) > 0 {
				c.messages[len(c.messages)-1].Content = current
			}
		}) {
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(c.typingDelay):
		}
	}
}

// resolveConversation returns the conversation to append this turn to,
// creating one seeded with the user's message when none exists. Persistence
// failures never fail the turn.
func (c *Client) resolveConversation(ctx context.Context, gen uint64, conversationID, message string) string {
	if c.store == nil {
		return conversationID
	}

	if conversationID == "" {
		id, err := c.store.CreateConversation(ctx, message)
		if err != nil {
			c.logger.Warn("failed to create conversation", zap.Error(err))
			return ""
		}
		c.mutate(gen, func() { c.conversationID = id })
		return id
	}

	if err := c.store.AppendMessage(ctx, conversationID, chat.RoleUser, message, nil); err != nil {
		c.logger.Warn("failed to save user message", zap.Error(err))
	}
	return conversationID
}

func (c *Client) persistAssistant(gen uint64, conversationID, content string, parsed *chat.ParsedAnswer) {
	if c.store == nil || conversationID == "" {
		return
	}

	c.mu.Lock()
	superseded := c.closed || gen != c.gen
	c.mu.Unlock()
	if superseded {
		return
	}

	var recipes []chat.ParsedRecipe
	if parsed != nil && len(parsed.Items) > 0 {
		recipes = parsed.Items
	}

	// Persistence happens on a background context: the turn is already
	// complete from the user's point of view.
	if err := c.store.AppendMessage(context.Background(), conversationID, chat.RoleAssistant, content, recipes); err != nil {
		c.logger.Warn("failed to save assistant message", zap.Error(err))
	}
}

// CancelRequest aborts the in-flight request, if any, and returns to idle.
// The already-appended user message is not rolled back.
func (c *Client) CancelRequest() {
	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
	}
	if !c.closed {
		c.status = chat.StatusIdle
	}
	c.mu.Unlock()
	c.notify()
}

// ClearChat aborts in-flight work and resets all chat state.
func (c *Client) ClearChat() {
	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
	}
	c.gen++
	c.messages = nil
	c.recipeCards = nil
	c.status = chat.StatusIdle
	c.err = nil
	c.conversationID = ""
	c.mu.Unlock()
	c.notify()
}

// Close aborts in-flight work and suppresses all further state mutations.
// Late network completions and typing increments become no-ops.
func (c *Client) Close() {
	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
	}
	c.closed = true
	c.mu.Unlock()
}

// Messages returns a snapshot of the message sequence.
func (c *Client) Messages() []chat.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]chat.Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// RecipeCards returns a snapshot of the attached recipe cards.
func (c *Client) RecipeCards() []chat.RecipeCardData {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]chat.RecipeCardData, len(c.recipeCards))
	copy(out, c.recipeCards)
	return out
}

// Status returns the current request lifecycle state.
func (c *Client) Status() chat.StreamingStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Err returns the last terminal error, cleared at the start of each turn.
func (c *Client) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// ConversationID returns the conversation cached from a prior turn, if any.
func (c *Client) ConversationID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conversationID
}

// IsLoading reports whether a request is in flight: the union of the
// connecting, streaming, and typing states.
func (c *Client) IsLoading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status == chat.StatusConnecting || c.status == chat.StatusStreaming || c.status == chat.StatusTyping
}

// mutate applies fn under the lock if this generation is still the active
// one and the client is open. It reports whether fn ran, letting superseded
// turns notice they have been abandoned.
func (c *Client) mutate(gen uint64, fn func()) bool {
	c.mu.Lock()
	if c.closed || gen != c.gen {
		c.mu.Unlock()
		return false
	}
	fn()
	c.mu.Unlock()
	c.notify()
	return true
}

func (c *Client) notify() {
	if c.onChange != nil {
		c.onChange()
	}
}
