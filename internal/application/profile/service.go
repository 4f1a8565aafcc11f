// Package profile provides the application layer for taste preference
// profiles. Free-text descriptions of what a user likes are turned into a
// structured preference document by the completion model.
package profile

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/handsapp/backend/internal/ports/inbound"
	"github.com/handsapp/backend/internal/ports/outbound"
	"github.com/handsapp/backend/pkg/errors"
)

const tasteAnalyzerPrompt = `You are a taste preference analyzer. Given user's food preferences,
extract key taste vectors and return them as JSON. Include vectors for:
- Cuisine preferences (italian, asian, mexican, etc.)
- Dietary restrictions (vegetarian, vegan, gluten-free, etc.)
- Taste preferences (spicy, sweet, savory, etc.)
- Ingredient likes/dislikes
- Cooking style preferences

Return ONLY valid JSON with no markdown formatting.`

// ProfileService implements the taste profile use cases
type ProfileService struct {
	completions outbound.CompletionService
	repo        outbound.ProfileRepository
	logger      *zap.Logger
}

// NewProfileService creates a new profile service. repo may be nil, in which
// case generated vectors are returned without being persisted.
func NewProfileService(
	completions outbound.CompletionService,
	repo outbound.ProfileRepository,
	logger *zap.Logger,
) inbound.ProfileService {
	return &ProfileService{
		completions: completions,
		repo:        repo,
		logger:      logger.Named("profile-service"),
	}
}

// GenerateTasteVectors asks the model to structure the user's free-text
// preferences and persists the result.
func (s *ProfileService) GenerateTasteVectors(ctx context.Context, userID uuid.UUID, tasteText string) (map[string]any, error) {
	if strings.TrimSpace(tasteText) == "" {
		return nil, errors.NewValidationError("tasteText is required")
	}

	s.logger.Info("Generating taste vectors", zap.String("user_id", userID.String()))

	raw, err := s.completions.Complete(ctx, tasteAnalyzerPrompt,
		`Analyze these taste preferences: "`+tasteText+`"`)
	if err != nil {
		return nil, errors.NewExternalServiceError("completion provider", err)
	}

	var vectors map[string]any
	if err := json.Unmarshal([]byte(CleanJSON(raw)), &vectors); err != nil {
		return nil, errors.NewAppError(errors.CodeExternalServiceError,
			"External service error",
			"Model returned malformed taste vector JSON",
		).WithCause(err)
	}

	if s.repo != nil {
		if err := s.repo.SaveTasteVectors(ctx, userID, vectors); err != nil {
			return nil, errors.NewDatabaseError("save taste vectors", err)
		}
	}
	return vectors, nil
}

// GetTasteVectors returns the stored preference document for a user.
func (s *ProfileService) GetTasteVectors(ctx context.Context, userID uuid.UUID) (map[string]any, error) {
	if s.repo == nil {
		return map[string]any{}, nil
	}

	vectors, err := s.repo.GetTasteVectors(ctx, userID)
	if err != nil {
		return nil, errors.NewDatabaseError("load taste vectors", err)
	}
	if vectors == nil {
		vectors = map[string]any{}
	}
	return vectors, nil
}

// CleanJSON strips markdown code fences the model sometimes wraps around its
// JSON output.
func CleanJSON(s string) string {
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}
