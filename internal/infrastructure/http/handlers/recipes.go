package handlers

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/handsapp/backend/internal/ports/inbound"
)

// maxImageBytes bounds uploaded recipe image bodies.
const maxImageBytes = 5 << 20

// RecipeHandlers serves the read-only recipe catalog routes.
type RecipeHandlers struct {
	recipes inbound.RecipeService
	logger  *zap.Logger
}

// NewRecipeHandlers creates recipe handlers.
func NewRecipeHandlers(recipes inbound.RecipeService, logger *zap.Logger) *RecipeHandlers {
	return &RecipeHandlers{
		recipes: recipes,
		logger:  logger.Named("recipes"),
	}
}

// List handles GET /api/v1/recipes, newest first. An optional q parameter
// switches to a title search.
func (h *RecipeHandlers) List(w http.ResponseWriter, r *http.Request) {
	limit, ok := queryLimit(w, r)
	if !ok {
		return
	}

	var (
		recipes []inbound.RecipeDTO
		err     error
	)
	if q := r.URL.Query().Get("q"); q != "" {
		recipes, err = h.recipes.Search(r.Context(), q, limit)
	} else {
		recipes, err = h.recipes.Latest(r.Context(), limit)
	}
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"recipes": recipes})
}

// Get handles GET /api/v1/recipes/{id}.
func (h *RecipeHandlers) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	recipe, err := h.recipes.Get(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, recipe)
}

// UploadImage handles POST /api/v1/recipes/{id}/image. The body carries the
// raw image bytes and the Content-Type header names the format.
func (h *RecipeHandlers) UploadImage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	contentType := r.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Body must be an image"})
		return
	}

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxImageBytes))
	if err != nil {
		writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": "Image too large"})
		return
	}

	url, err := h.recipes.UploadImage(r.Context(), id, data, contentType)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"image": url})
}

// DeleteImage handles DELETE /api/v1/recipes/{id}/image.
func (h *RecipeHandlers) DeleteImage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	if err := h.recipes.DeleteImage(r.Context(), id); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func queryLimit(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid limit"})
		return 0, false
	}
	return limit, true
}
