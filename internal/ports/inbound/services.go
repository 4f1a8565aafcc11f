// Package inbound defines the interfaces for inbound ports (primary/driving adapters)
// These are the interfaces that the application exposes to the outside world
package inbound

import (
	"context"
	"io"

	"github.com/google/uuid"

	"github.com/handsapp/backend/internal/domain/chat"
)

// RecommendService drives one streaming recommendation turn. The response
// body is written to w as it arrives from the model.
type RecommendService interface {
	Stream(ctx context.Context, req RecommendRequest, w io.Writer) error
}

// RecommendRequest carries one chat turn: the new prompt plus the prior
// message history the context extractor mines for ingredients and meal types.
type RecommendRequest struct {
	Prompt  string         `json:"prompt" validate:"required,max=2000"`
	History []chat.Message `json:"conversationHistory"`
}

// ConversationService defines the use cases for chat history management
type ConversationService interface {
	Create(ctx context.Context, userID uuid.UUID, firstMessage string) (*ConversationDTO, error)
	Get(ctx context.Context, id, userID uuid.UUID) (*ConversationDTO, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]ConversationSummaryDTO, error)
	AppendMessage(ctx context.Context, cmd AppendMessageCommand) error
	Delete(ctx context.Context, id, userID uuid.UUID) error
}

// AppendMessageCommand adds one turn to an existing conversation
type AppendMessageCommand struct {
	ConversationID uuid.UUID
	UserID         uuid.UUID
	Role           chat.Role
	Content        string
	Recipes        []chat.ParsedRecipe
}

// ConversationDTO is the data transfer object for a full conversation
type ConversationDTO struct {
	ID        uuid.UUID    `json:"id"`
	Title     string       `json:"title"`
	Messages  []MessageDTO `json:"messages"`
	CreatedAt string       `json:"created_at"`
	UpdatedAt string       `json:"updated_at"`
}

// ConversationSummaryDTO lists a conversation without its messages
type ConversationSummaryDTO struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	UpdatedAt string    `json:"updated_at"`
}

// MessageDTO is one stored chat turn
type MessageDTO struct {
	Role    chat.Role           `json:"role"`
	Content string              `json:"content"`
	Recipes []chat.ParsedRecipe `json:"recipes,omitempty"`
}

// RecipeService defines the use cases for the recipe catalog. Reads are
// public; image management requires an authenticated caller.
type RecipeService interface {
	Latest(ctx context.Context, limit int) ([]RecipeDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*RecipeDTO, error)
	Search(ctx context.Context, query string, limit int) ([]RecipeDTO, error)

	// UploadImage stores the image bytes for a recipe and returns the
	// resolved image URL.
	UploadImage(ctx context.Context, id uuid.UUID, data []byte, contentType string) (string, error)
	// DeleteImage removes a recipe's stored image, if any.
	DeleteImage(ctx context.Context, id uuid.UUID) error
}

// RecipeDTO is the data transfer object for catalog recipes
type RecipeDTO struct {
	ID          uuid.UUID           `json:"id"`
	Title       string              `json:"title"`
	Caption     string              `json:"caption"`
	Image       string              `json:"image"`
	URL         string              `json:"url,omitempty"`
	Steps       []string            `json:"steps,omitempty"`
	Tags        []string            `json:"tags,omitempty"`
	Ingredients map[string][]string `json:"ingredients,omitempty"`
	CreatedAt   string              `json:"created_at"`
}

// ProfileService derives structured taste preferences from free text
type ProfileService interface {
	GenerateTasteVectors(ctx context.Context, userID uuid.UUID, tasteText string) (map[string]any, error)
	GetTasteVectors(ctx context.Context, userID uuid.UUID) (map[string]any, error)
}
