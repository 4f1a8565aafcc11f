// Package testutils provides shared test data factories.
package testutils

import (
	"fmt"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"

	"github.com/handsapp/backend/internal/domain/chat"
	"github.com/handsapp/backend/internal/domain/conversation"
	"github.com/handsapp/backend/internal/domain/recipe"
)

// NewRecipe builds a catalog recipe with randomized but plausible fields.
func NewRecipe() *recipe.Recipe {
	title := fmt.Sprintf("%s %s", gofakeit.AdjectiveDescriptive(), gofakeit.Dinner())
	r, err := recipe.New(title, gofakeit.Sentence(8), gofakeit.URL())
	if err != nil {
		panic(err)
	}
	r.Steps = []string{gofakeit.Sentence(6), gofakeit.Sentence(6), gofakeit.Sentence(6)}
	r.Tags = []string{gofakeit.Word(), gofakeit.Word()}
	r.Ingredients = map[string][]string{
		"main":   {gofakeit.Vegetable(), gofakeit.Fruit()},
		"pantry": {"olive oil", "salt"},
	}
	return r
}

// NewRecipes builds n random recipes.
func NewRecipes(n int) []*recipe.Recipe {
	out := make([]*recipe.Recipe, n)
	for i := range out {
		out[i] = NewRecipe()
	}
	return out
}

// NewCandidate builds one retrieval candidate.
func NewCandidate() chat.Candidate {
	return chat.Candidate{
		ID:      uuid.New().String(),
		Title:   fmt.Sprintf("%s %s", gofakeit.AdjectiveDescriptive(), gofakeit.Dinner()),
		Caption: gofakeit.Sentence(6),
		Image:   gofakeit.URL(),
	}
}

// NewCandidates builds n retrieval candidates.
func NewCandidates(n int) []chat.Candidate {
	out := make([]chat.Candidate, n)
	for i := range out {
		out[i] = NewCandidate()
	}
	return out
}

// NewConversation builds a conversation with one user turn.
func NewConversation(userID uuid.UUID) *conversation.Conversation {
	return conversation.New(userID, gofakeit.Question())
}

// NewEmbedding builds a deterministic-length random embedding.
func NewEmbedding(dim int) []float32 {
	out := make([]float32, dim)
	for i := range out {
		out[i] = float32(gofakeit.Float64Range(-1, 1))
	}
	return out
}
