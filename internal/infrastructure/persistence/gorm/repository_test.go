package gorm

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/handsapp/backend/internal/domain/chat"
	"github.com/handsapp/backend/internal/domain/conversation"
	"github.com/handsapp/backend/internal/domain/recipe"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&RecipeModel{}, &ConversationModel{}, &ProfileModel{}))
	return db
}

func mustRecipe(t *testing.T, title string) *recipe.Recipe {
	t.Helper()
	r, err := recipe.New(title, title+" caption", "https://example.com/img.jpg")
	require.NoError(t, err)
	return r
}

func TestRecipeRoundTrip(t *testing.T) {
	repo := NewRecipeRepository(testDB(t))
	ctx := context.Background()

	r := mustRecipe(t, "Garlic Butter Chicken")
	r.Steps = []string{"Melt butter", "Sear chicken"}
	r.Tags = []string{"dinner", "quick"}
	r.Ingredients = map[string][]string{"main": {"chicken", "butter", "garlic"}}
	require.NoError(t, repo.Create(ctx, r))

	got, err := repo.FindByID(ctx, r.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, r.Title, got.Title)
	assert.Equal(t, r.Steps, got.Steps)
	assert.Equal(t, r.Ingredients, got.Ingredients)
	assert.Equal(t, "garlic butter chicken", got.SearchableTitle)
}

func TestRecipeFindByIDMissingReturnsNil(t *testing.T) {
	repo := NewRecipeRepository(testDB(t))

	got, err := repo.FindByID(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRecipeUpdateMissingReturnsNotFound(t *testing.T) {
	repo := NewRecipeRepository(testDB(t))

	err := repo.Update(context.Background(), mustRecipe(t, "Ghost"))
	assert.ErrorIs(t, err, recipe.ErrRecipeNotFound)
}

func TestRecipeSearchByTitleMatchesSubstring(t *testing.T) {
	repo := NewRecipeRepository(testDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, mustRecipe(t, "Garlic Butter Chicken")))
	require.NoError(t, repo.Create(ctx, mustRecipe(t, "Lemon Herb Salmon")))

	got, err := repo.SearchByTitle(ctx, "chicken", 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Garlic Butter Chicken", got[0].Title)
}

func TestRecipeFindLatestNewestFirst(t *testing.T) {
	repo := NewRecipeRepository(testDB(t))
	ctx := context.Background()

	older := mustRecipe(t, "Older")
	newer := mustRecipe(t, "Newer")
	newer.CreatedAt = newer.CreatedAt.Add(1)
	require.NoError(t, repo.Create(ctx, older))
	require.NoError(t, repo.Create(ctx, newer))

	got, err := repo.FindLatest(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Newer", got[0].Title)
}

func TestConversationAppendPersists(t *testing.T) {
	repo := NewConversationRepository(testDB(t))
	ctx := context.Background()

	conv := conversation.New(uuid.New(), "What can I cook with leftover rice?")
	require.NoError(t, repo.Create(ctx, conv))

	require.NoError(t, repo.AppendMessage(ctx, conv.ID, conversation.StoredMessage{
		Role:    chat.RoleAssistant,
		Content: "Try fried rice.",
		Recipes: []chat.ParsedRecipe{{ID: "r1", Title: "Fried Rice"}},
	}))

	got, err := repo.FindByID(ctx, conv.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Len(t, got.Content, 2)
	assert.Equal(t, "Try fried rice.", got.Content[1].Content)
	require.Len(t, got.Content[1].Recipes, 1)
	assert.Equal(t, "Fried Rice", got.Content[1].Recipes[0].Title)
}

func TestConversationFindByUserOrdersByUpdatedAt(t *testing.T) {
	repo := NewConversationRepository(testDB(t))
	ctx := context.Background()
	userID := uuid.New()

	first := conversation.New(userID, "first thread")
	second := conversation.New(userID, "second thread")
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))

	// Touch the first thread so it becomes the most recent.
	require.NoError(t, repo.AppendMessage(ctx, first.ID, conversation.StoredMessage{
		Role: chat.RoleUser, Content: "still here",
	}))

	got, err := repo.FindByUserID(ctx, userID, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, first.ID, got[0].ID)
}

func TestConversationDelete(t *testing.T) {
	repo := NewConversationRepository(testDB(t))
	ctx := context.Background()

	conv := conversation.New(uuid.New(), "temp")
	require.NoError(t, repo.Create(ctx, conv))
	require.NoError(t, repo.Delete(ctx, conv.ID))

	got, err := repo.FindByID(ctx, conv.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestProfileUpsert(t *testing.T) {
	repo := NewProfileRepository(testDB(t))
	ctx := context.Background()
	userID := uuid.New()

	require.NoError(t, repo.SaveTasteVectors(ctx, userID, map[string]any{"spice_tolerance": "high"}))
	require.NoError(t, repo.SaveTasteVectors(ctx, userID, map[string]any{"spice_tolerance": "medium"}))

	got, err := repo.GetTasteVectors(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "medium", got["spice_tolerance"])
}

func TestProfileGetUnsetReturnsNil(t *testing.T) {
	repo := NewProfileRepository(testDB(t))

	got, err := repo.GetTasteVectors(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, got)
}
