package conversation

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/handsapp/backend/internal/domain/chat"
)

func TestNewSeedsFirstMessage(t *testing.T) {
	userID := uuid.New()
	c := New(userID, "What can I cook with leftover rice?")

	assert.Equal(t, userID, c.UserID)
	require.Len(t, c.Content, 1)
	assert.Equal(t, chat.RoleUser, c.Content[0].Role)
	assert.Equal(t, "What can I cook with leftover rice?", c.Content[0].Content)
	assert.Equal(t, "What can I cook with leftover rice?...", c.Title)
}

func TestTitleFromMessageTruncatesAtFifty(t *testing.T) {
	long := strings.Repeat("a", 80)
	title := TitleFromMessage(long)

	assert.Equal(t, strings.Repeat("a", 50)+"...", title)
}

func TestTitleFromMessageAlwaysAppendsEllipsis(t *testing.T) {
	assert.Equal(t, "hi...", TitleFromMessage("hi"))
	assert.Equal(t, "hi...", TitleFromMessage("  hi  "))
}

func TestAppendBumpsUpdatedAt(t *testing.T) {
	c := New(uuid.New(), "first")
	before := c.UpdatedAt

	c.Append(StoredMessage{Role: chat.RoleAssistant, Content: "answer", Recipes: []chat.ParsedRecipe{{ID: "r1", Title: "Soup"}}})

	require.Len(t, c.Content, 2)
	assert.Equal(t, chat.RoleAssistant, c.Content[1].Role)
	assert.False(t, c.UpdatedAt.Before(before))
}

func TestMessagesDropRecipePayloads(t *testing.T) {
	c := New(uuid.New(), "first")
	c.Append(StoredMessage{
		Role:    chat.RoleAssistant,
		Content: "Try this.",
		Recipes: []chat.ParsedRecipe{{ID: "r1", Title: "Soup"}},
	})

	msgs := c.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, chat.Message{Role: chat.RoleUser, Content: "first"}, msgs[0])
	assert.Equal(t, chat.Message{Role: chat.RoleAssistant, Content: "Try this."}, msgs[1])
}
