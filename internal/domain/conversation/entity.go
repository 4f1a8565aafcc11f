// Package conversation defines the persisted conversation entity. A
// conversation is an append-only sequence of message turns owned by a user.
package conversation

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/handsapp/backend/internal/domain/chat"
)

// StoredMessage is one persisted conversation turn. Assistant entries may
// carry the recipe items that were attached to them.
type StoredMessage struct {
	Role    chat.Role           `json:"role"`
	Content string              `json:"content"`
	Recipes []chat.ParsedRecipe `json:"recipes,omitempty"`
}

// Conversation is the aggregate root for one chat thread.
type Conversation struct {
	ID        uuid.UUID       `json:"id"`
	UserID    uuid.UUID       `json:"user_id"`
	Title     string          `json:"title"`
	Content   []StoredMessage `json:"content"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

const maxTitleLength = 50

// New creates a conversation seeded with the user's first message. The title
// is derived from the message the same way the mobile client displays it.
func New(userID uuid.UUID, firstMessage string) *Conversation {
	now := time.Now().UTC()
	return &Conversation{
		ID:     uuid.New(),
		UserID: userID,
		Title:  TitleFromMessage(firstMessage),
		Content: []StoredMessage{
			{Role: chat.RoleUser, Content: firstMessage},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// TitleFromMessage derives a conversation title from its opening message:
// the first 50 characters followed by an ellipsis marker.
func TitleFromMessage(message string) string {
	message = strings.TrimSpace(message)
	if len(message) > maxTitleLength {
		message = message[:maxTitleLength]
	}
	return message + "..."
}

// Append adds a turn to the conversation and bumps the update timestamp.
func (c *Conversation) Append(msg StoredMessage) {
	c.Content = append(c.Content, msg)
	c.UpdatedAt = time.Now().UTC()
}

// Messages returns the turns as plain chat messages, dropping any attached
// recipe payloads. This is the shape sent back to the model as history.
func (c *Conversation) Messages() []chat.Message {
	out := make([]chat.Message, len(c.Content))
	for i, m := range c.Content {
		out[i] = chat.Message{Role: m.Role, Content: m.Content}
	}
	return out
}
