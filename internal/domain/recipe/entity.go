// Package recipe contains the catalog-side recipe entity. The catalog is a
// read-mostly collaborator: recipes are browsed, searched, and retrieved for
// grounding; authoring happens out of band.
package recipe

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Recipe is one catalog entry. Image holds either a full URL or a storage
// object key that is resolved to a presigned URL at read time.
type Recipe struct {
	ID              uuid.UUID           `json:"id"`
	Title           string              `json:"title"`
	Caption         string              `json:"caption"`
	Image           string              `json:"image"`
	URL             string              `json:"url"`
	Steps           []string            `json:"steps"`
	Tags            []string            `json:"tags"`
	Ingredients     map[string][]string `json:"ingredients"`
	SearchableTitle string              `json:"searchable_title"`
	UserID          *uuid.UUID          `json:"user_id,omitempty"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

// New creates a catalog recipe with a normalized searchable title.
func New(title, caption, image string) (*Recipe, error) {
	if strings.TrimSpace(title) == "" {
		return nil, ErrEmptyTitle
	}

	now := time.Now().UTC()
	return &Recipe{
		ID:              uuid.New(),
		Title:           title,
		Caption:         caption,
		Image:           image,
		SearchableTitle: NormalizeTitle(title),
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// NormalizeTitle lowercases and collapses whitespace for substring search.
func NormalizeTitle(title string) string {
	return strings.Join(strings.Fields(strings.ToLower(title)), " ")
}

// HasStoredImage reports whether Image is a storage object key rather than an
// absolute URL.
func (r *Recipe) HasStoredImage() bool {
	return r.Image != "" && !strings.HasPrefix(r.Image, "http://") && !strings.HasPrefix(r.Image, "https://")
}
