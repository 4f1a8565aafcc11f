// Package gorm mapping between domain entities and persistence models
package gorm

import (
	"encoding/json"
	"fmt"

	"github.com/handsapp/backend/internal/domain/conversation"
	"github.com/handsapp/backend/internal/domain/recipe"
)

// RecipeToModel converts a domain recipe to its persistence model
func RecipeToModel(r *recipe.Recipe) (*RecipeModel, error) {
	ingredients, err := json.Marshal(r.Ingredients)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal ingredients: %w", err)
	}

	return &RecipeModel{
		ID:              r.ID,
		Title:           r.Title,
		Caption:         r.Caption,
		Image:           r.Image,
		URL:             r.URL,
		Steps:           StringSlice(r.Steps),
		Tags:            StringSlice(r.Tags),
		Ingredients:     JSONField(ingredients),
		SearchableTitle: r.SearchableTitle,
		UserID:          r.UserID,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}, nil
}

// ModelToRecipe converts a persistence model to the domain entity
func ModelToRecipe(m *RecipeModel) (*recipe.Recipe, error) {
	var ingredients map[string][]string
	if len(m.Ingredients) > 0 {
		if err := json.Unmarshal(m.Ingredients, &ingredients); err != nil {
			return nil, fmt.Errorf("failed to unmarshal ingredients: %w", err)
		}
	}

	return &recipe.Recipe{
		ID:              m.ID,
		Title:           m.Title,
		Caption:         m.Caption,
		Image:           m.Image,
		URL:             m.URL,
		Steps:           m.Steps,
		Tags:            m.Tags,
		Ingredients:     ingredients,
		SearchableTitle: m.SearchableTitle,
		UserID:          m.UserID,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}, nil
}

// ConversationToModel converts a domain conversation to its persistence model
func ConversationToModel(c *conversation.Conversation) (*ConversationModel, error) {
	content, err := json.Marshal(c.Content)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal conversation content: %w", err)
	}

	return &ConversationModel{
		ID:        c.ID,
		UserID:    c.UserID,
		Title:     c.Title,
		Content:   JSONField(content),
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}, nil
}

// ModelToConversation converts a persistence model to the domain entity
func ModelToConversation(m *ConversationModel) (*conversation.Conversation, error) {
	var content []conversation.StoredMessage
	if len(m.Content) > 0 {
		if err := json.Unmarshal(m.Content, &content); err != nil {
			return nil, fmt.Errorf("failed to unmarshal conversation content: %w", err)
		}
	}

	return &conversation.Conversation{
		ID:        m.ID,
		UserID:    m.UserID,
		Title:     m.Title,
		Content:   content,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}, nil
}
