package gorm

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/handsapp/backend/internal/ports/outbound"
)

// ProfileRepository implements the profile repository using GORM
type ProfileRepository struct {
	db *gorm.DB
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(db *gorm.DB) outbound.ProfileRepository {
	return &ProfileRepository{db: db}
}

// SaveTasteVectors upserts the user's preference document
func (r *ProfileRepository) SaveTasteVectors(ctx context.Context, userID uuid.UUID, vectors map[string]any) error {
	data, err := json.Marshal(vectors)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	model := ProfileModel{
		UserID:       userID,
		TasteVectors: JSONField(data),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"taste_vectors", "updated_at"}),
		}).
		Create(&model).Error
}

// GetTasteVectors returns the stored preference document, nil when unset
func (r *ProfileRepository) GetTasteVectors(ctx context.Context, userID uuid.UUID) (map[string]any, error) {
	var model ProfileModel

	result := r.db.WithContext(ctx).First(&model, "user_id = ?", userID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}

	if len(model.TasteVectors) == 0 {
		return nil, nil
	}
	var vectors map[string]any
	if err := json.Unmarshal(model.TasteVectors, &vectors); err != nil {
		return nil, err
	}
	return vectors, nil
}
