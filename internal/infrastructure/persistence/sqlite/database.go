// Package sqlite provides SQLite database setup for local development and
// the self-contained demo binary.
package sqlite

import (
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/handsapp/backend/internal/domain/recipe"
	gormModels "github.com/handsapp/backend/internal/infrastructure/persistence/gorm"
)

// SetupDatabase creates and configures the SQLite database
func SetupDatabase(dbPath string, logLevel logger.LogLevel) (*gorm.DB, error) {
	// Use in-memory database if no path provided
	if dbPath == "" {
		dbPath = ":memory:"
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	err = db.AutoMigrate(
		&gormModels.RecipeModel{},
		&gormModels.ConversationModel{},
		&gormModels.ProfileModel{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return db, nil
}

// SeedDatabase populates the catalog with demo recipes
func SeedDatabase(db *gorm.DB) error {
	var count int64
	db.Model(&gormModels.RecipeModel{}).Count(&count)
	if count > 0 {
		return nil // Already seeded
	}

	demo := []struct {
		title       string
		caption     string
		image       string
		steps       []string
		tags        []string
		ingredients map[string][]string
	}{
		{
			title:   "Garlic Butter Chicken",
			caption: "Pan-seared chicken in a rich garlic butter sauce",
			image:   "https://images.example.com/garlic-butter-chicken.jpg",
			steps: []string{
				"Season the chicken thighs with salt and pepper.",
				"Sear skin side down until golden, about 6 minutes.",
				"Add butter and garlic, baste until cooked through.",
			},
			tags:        []string{"dinner", "chicken", "quick"},
			ingredients: map[string][]string{"main": {"chicken thighs", "butter", "garlic"}},
		},
		{
			title:   "Lemon Herb Salmon",
			caption: "Oven-baked salmon with lemon and fresh herbs",
			image:   "https://images.example.com/lemon-herb-salmon.jpg",
			steps: []string{
				"Heat the oven to 200C.",
				"Lay the salmon on parchment, top with lemon slices and herbs.",
				"Bake 12 to 14 minutes until just opaque.",
			},
			tags:        []string{"dinner", "fish", "healthy"},
			ingredients: map[string][]string{"main": {"salmon", "lemon", "dill"}},
		},
		{
			title:   "Overnight Oats with Berries",
			caption: "No-cook breakfast with rolled oats and mixed berries",
			image:   "https://images.example.com/overnight-oats.jpg",
			steps: []string{
				"Combine oats, milk, and yogurt in a jar.",
				"Refrigerate overnight.",
				"Top with berries before serving.",
			},
			tags:        []string{"breakfast", "vegetarian"},
			ingredients: map[string][]string{"main": {"oats", "milk", "berries"}},
		},
		{
			title:   "Tofu Stir-Fry",
			caption: "Crispy tofu with broccoli in a savory sauce",
			image:   "https://images.example.com/tofu-stir-fry.jpg",
			steps: []string{
				"Press and cube the tofu, then fry until crispy.",
				"Stir-fry the broccoli and garlic.",
				"Toss everything with soy sauce and sesame oil.",
			},
			tags:        []string{"dinner", "lunch", "vegan"},
			ingredients: map[string][]string{"main": {"tofu", "broccoli", "garlic"}},
		},
		{
			title:   "Mushroom Spinach Omelette",
			caption: "Fluffy eggs folded over sauteed mushrooms and spinach",
			image:   "https://images.example.com/mushroom-omelette.jpg",
			steps: []string{
				"Saute the mushrooms until browned, wilt in the spinach.",
				"Pour in the beaten eggs and cook gently.",
				"Fold and serve immediately.",
			},
			tags:        []string{"breakfast", "brunch", "vegetarian"},
			ingredients: map[string][]string{"main": {"eggs", "mushroom", "spinach"}},
		},
	}

	for _, d := range demo {
		entity, err := recipe.New(d.title, d.caption, d.image)
		if err != nil {
			return err
		}
		entity.Steps = d.steps
		entity.Tags = d.tags
		entity.Ingredients = d.ingredients

		model, err := gormModels.RecipeToModel(entity)
		if err != nil {
			return err
		}
		if err := db.Create(model).Error; err != nil {
			return fmt.Errorf("failed to seed recipe %q: %w", d.title, err)
		}
	}

	return nil
}
