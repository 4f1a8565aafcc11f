package memory

import (
	"context"

	"github.com/handsapp/backend/internal/domain/chat"
	"github.com/handsapp/backend/internal/ports/outbound"
)

// VectorSearchRepository approximates similarity search without a vector
// store by returning the newest catalog entries. It exists for the local
// demo binary where pgvector is not available.
type VectorSearchRepository struct {
	recipes outbound.RecipeRepository
}

// NewVectorSearchRepository creates a catalog-backed stand-in for vector
// search.
func NewVectorSearchRepository(recipes outbound.RecipeRepository) outbound.VectorSearchRepository {
	return &VectorSearchRepository{recipes: recipes}
}

// MatchRecipes returns up to count recipes, newest first.
func (r *VectorSearchRepository) MatchRecipes(ctx context.Context, _ []float32, count int) ([]chat.Candidate, error) {
	recipes, err := r.recipes.FindLatest(ctx, count)
	if err != nil {
		return nil, err
	}

	candidates := make([]chat.Candidate, 0, len(recipes))
	for _, rec := range recipes {
		candidates = append(candidates, chat.Candidate{
			ID:      rec.ID.String(),
			Title:   rec.Title,
			Caption: rec.Caption,
			Image:   rec.Image,
		})
	}
	return candidates, nil
}
