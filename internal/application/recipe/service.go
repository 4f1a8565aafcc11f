// Package recipe provides the application layer for the recipe catalog
// This implements the use cases defined in the inbound ports
package recipe

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/handsapp/backend/internal/domain/recipe"
	"github.com/handsapp/backend/internal/ports/inbound"
	"github.com/handsapp/backend/internal/ports/outbound"
	"github.com/handsapp/backend/pkg/errors"
)

const (
	// DefaultLimit is the page size for latest and search queries.
	DefaultLimit = 20
	// presignExpiry bounds how long resolved image URLs stay valid.
	presignExpiry = 24 * time.Hour
)

// RecipeService implements the catalog read use cases
type RecipeService struct {
	repo    outbound.RecipeRepository
	storage outbound.StorageService
	logger  *zap.Logger
}

// NewRecipeService creates a new recipe catalog service. storage may be nil
// when no object store is configured; stored image keys then pass through
// unresolved.
func NewRecipeService(
	repo outbound.RecipeRepository,
	storage outbound.StorageService,
	logger *zap.Logger,
) inbound.RecipeService {
	return &RecipeService{
		repo:    repo,
		storage: storage,
		logger:  logger.Named("recipe-service"),
	}
}

// Latest returns the newest catalog entries.
func (s *RecipeService) Latest(ctx context.Context, limit int) ([]inbound.RecipeDTO, error) {
	if limit <= 0 || limit > DefaultLimit {
		limit = DefaultLimit
	}

	recipes, err := s.repo.FindLatest(ctx, limit)
	if err != nil {
		return nil, errors.NewDatabaseError("find latest recipes", err)
	}
	return s.entitiesToDTOs(ctx, recipes), nil
}

// Get returns a single recipe by ID.
func (s *RecipeService) Get(ctx context.Context, id uuid.UUID) (*inbound.RecipeDTO, error) {
	entity, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.NewDatabaseError("find recipe", err)
	}
	if entity == nil {
		return nil, errors.NewRecipeNotFoundError(id.String())
	}

	dto := s.entityToDTO(ctx, entity)
	return &dto, nil
}

// Search matches recipe titles, case-insensitive substring semantics.
func (s *RecipeService) Search(ctx context.Context, query string, limit int) ([]inbound.RecipeDTO, error) {
	query = recipe.NormalizeTitle(query)
	if query == "" {
		return []inbound.RecipeDTO{}, nil
	}
	if limit <= 0 || limit > DefaultLimit {
		limit = DefaultLimit
	}

	recipes, err := s.repo.SearchByTitle(ctx, query, limit)
	if err != nil {
		return nil, errors.NewDatabaseError("search recipes", err)
	}
	return s.entitiesToDTOs(ctx, recipes), nil
}

func (s *RecipeService) entitiesToDTOs(ctx context.Context, recipes []*recipe.Recipe) []inbound.RecipeDTO {
	dtos := make([]inbound.RecipeDTO, 0, len(recipes))
	for _, entity := range recipes {
		dtos = append(dtos, s.entityToDTO(ctx, entity))
	}
	return dtos
}

func (s *RecipeService) entityToDTO(ctx context.Context, entity *recipe.Recipe) inbound.RecipeDTO {
	return inbound.RecipeDTO{
		ID:          entity.ID,
		Title:       entity.Title,
		Caption:     entity.Caption,
		Image:       s.resolveImage(ctx, entity),
		URL:         entity.URL,
		Steps:       entity.Steps,
		Tags:        entity.Tags,
		Ingredients: entity.Ingredients,
		CreatedAt:   entity.CreatedAt.Format(time.RFC3339),
	}
}

// UploadImage stores the image bytes under a deterministic object key and
// points the recipe at it. The previous stored object, if the key differs,
// is left to bucket lifecycle rules.
func (s *RecipeService) UploadImage(ctx context.Context, id uuid.UUID, data []byte, contentType string) (string, error) {
	if s.storage == nil {
		return "", errors.NewAppError(errors.CodeServiceUnavailable, "Image storage is not configured", "")
	}

	entity, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return "", errors.NewDatabaseError("find recipe", err)
	}
	if entity == nil {
		return "", errors.NewRecipeNotFoundError(id.String())
	}

	key := imageKey(id, contentType)
	if _, err := s.storage.Upload(ctx, key, data, contentType); err != nil {
		return "", errors.NewExternalServiceError("object storage", err)
	}

	entity.Image = key
	if err := s.repo.Update(ctx, entity); err != nil {
		return "", errors.NewDatabaseError("update recipe image", err)
	}

	s.logger.Info("recipe image uploaded",
		zap.String("recipe_id", id.String()),
		zap.String("key", key),
	)
	return s.resolveImage(ctx, entity), nil
}

// DeleteImage removes the stored object and clears the image reference.
// Absolute image URLs are only cleared; there is no object to delete.
func (s *RecipeService) DeleteImage(ctx context.Context, id uuid.UUID) error {
	entity, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return errors.NewDatabaseError("find recipe", err)
	}
	if entity == nil {
		return errors.NewRecipeNotFoundError(id.String())
	}
	if entity.Image == "" {
		return nil
	}

	if entity.HasStoredImage() && s.storage != nil {
		if err := s.storage.Delete(ctx, entity.Image); err != nil {
			return errors.NewExternalServiceError("object storage", err)
		}
	}

	entity.Image = ""
	if err := s.repo.Update(ctx, entity); err != nil {
		return errors.NewDatabaseError("update recipe image", err)
	}
	return nil
}

func imageKey(id uuid.UUID, contentType string) string {
	ext := ".jpg"
	switch contentType {
	case "image/png":
		ext = ".png"
	case "image/webp":
		ext = ".webp"
	}
	return "recipes/" + id.String() + ext
}

// resolveImage turns a storage object key into a presigned URL. Absolute
// URLs pass through untouched; presign failures degrade to the raw key so a
// broken image never fails the whole read.
func (s *RecipeService) resolveImage(ctx context.Context, entity *recipe.Recipe) string {
	if s.storage == nil || !entity.HasStoredImage() {
		return entity.Image
	}

	url, err := s.storage.GeneratePresignedURL(ctx, entity.Image, presignExpiry)
	if err != nil {
		s.logger.Warn("failed to presign recipe image",
			zap.String("recipe_id", entity.ID.String()),
			zap.Error(err),
		)
		return entity.Image
	}
	return url
}
