// Package gorm provides GORM-based repository implementations
package gorm

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/handsapp/backend/internal/domain/recipe"
	"github.com/handsapp/backend/internal/ports/outbound"
)

// RecipeRepository implements the recipe repository interface using GORM
type RecipeRepository struct {
	db *gorm.DB
}

// NewRecipeRepository creates a new recipe repository
func NewRecipeRepository(db *gorm.DB) outbound.RecipeRepository {
	return &RecipeRepository{db: db}
}

// Create creates a new recipe
func (r *RecipeRepository) Create(ctx context.Context, entity *recipe.Recipe) error {
	model, err := RecipeToModel(entity)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(model).Error
}

// Update updates an existing recipe
func (r *RecipeRepository) Update(ctx context.Context, entity *recipe.Recipe) error {
	model, err := RecipeToModel(entity)
	if err != nil {
		return err
	}

	result := r.db.WithContext(ctx).Save(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return recipe.ErrRecipeNotFound
	}
	return nil
}

// Delete deletes a recipe by ID
func (r *RecipeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&RecipeModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return recipe.ErrRecipeNotFound
	}
	return nil
}

// FindByID finds a recipe by ID. A missing row returns (nil, nil) so the
// application layer decides how absence is reported.
func (r *RecipeRepository) FindByID(ctx context.Context, id uuid.UUID) (*recipe.Recipe, error) {
	var model RecipeModel

	result := r.db.WithContext(ctx).First(&model, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return ModelToRecipe(&model)
}

// FindLatest returns the newest recipes first
func (r *RecipeRepository) FindLatest(ctx context.Context, limit int) ([]*recipe.Recipe, error) {
	var models []RecipeModel

	result := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&models)
	if result.Error != nil {
		return nil, result.Error
	}
	return modelsToRecipes(models)
}

// SearchByTitle matches the normalized searchable title by substring
func (r *RecipeRepository) SearchByTitle(ctx context.Context, query string, limit int) ([]*recipe.Recipe, error) {
	var models []RecipeModel

	result := r.db.WithContext(ctx).
		Where("searchable_title LIKE ?", "%"+recipe.NormalizeTitle(query)+"%").
		Order("created_at DESC").
		Limit(limit).
		Find(&models)
	if result.Error != nil {
		return nil, result.Error
	}
	return modelsToRecipes(models)
}

// FindByIDs returns the recipes for the given IDs, skipping unknown ones
func (r *RecipeRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*recipe.Recipe, error) {
	if len(ids) == 0 {
		return []*recipe.Recipe{}, nil
	}

	var models []RecipeModel
	result := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&models)
	if result.Error != nil {
		return nil, result.Error
	}
	return modelsToRecipes(models)
}

func modelsToRecipes(models []RecipeModel) ([]*recipe.Recipe, error) {
	recipes := make([]*recipe.Recipe, 0, len(models))
	for i := range models {
		entity, err := ModelToRecipe(&models[i])
		if err != nil {
			return nil, err
		}
		recipes = append(recipes, entity)
	}
	return recipes, nil
}
