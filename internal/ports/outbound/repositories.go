// Package outbound defines the interfaces for outbound ports (secondary/driven adapters)
// These are the interfaces that the application uses to interact with external systems
package outbound

import (
	"context"

	"github.com/google/uuid"

	"github.com/handsapp/backend/internal/domain/conversation"
	"github.com/handsapp/backend/internal/domain/recipe"
)

// RecipeRepository defines the interface for recipe catalog persistence
type RecipeRepository interface {
	Create(ctx context.Context, recipe *recipe.Recipe) error
	Update(ctx context.Context, recipe *recipe.Recipe) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*recipe.Recipe, error)

	// FindLatest returns the newest recipes first.
	FindLatest(ctx context.Context, limit int) ([]*recipe.Recipe, error)
	// SearchByTitle matches the normalized searchable title,
	// case-insensitive substring semantics.
	SearchByTitle(ctx context.Context, query string, limit int) ([]*recipe.Recipe, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*recipe.Recipe, error)
}

// ConversationRepository defines the interface for chat history persistence.
// Conversations are append-only: messages are never edited or removed,
// a new turn only extends the content and bumps updated_at.
type ConversationRepository interface {
	Create(ctx context.Context, conv *conversation.Conversation) error
	FindByID(ctx context.Context, id uuid.UUID) (*conversation.Conversation, error)
	FindByUserID(ctx context.Context, userID uuid.UUID, limit int) ([]*conversation.Conversation, error)
	AppendMessage(ctx context.Context, id uuid.UUID, msg conversation.StoredMessage) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ProfileRepository persists per-user taste preference vectors derived
// from free-text descriptions.
type ProfileRepository interface {
	SaveTasteVectors(ctx context.Context, userID uuid.UUID, vectors map[string]any) error
	GetTasteVectors(ctx context.Context, userID uuid.UUID) (map[string]any, error)
}
