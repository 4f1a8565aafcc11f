package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/handsapp/backend/internal/ports/inbound"
)

// ProfileHandlers serves the taste profile routes.
type ProfileHandlers struct {
	profiles inbound.ProfileService
	logger   *zap.Logger
}

// NewProfileHandlers creates profile handlers.
func NewProfileHandlers(profiles inbound.ProfileService, logger *zap.Logger) *ProfileHandlers {
	return &ProfileHandlers{
		profiles: profiles,
		logger:   logger.Named("profile"),
	}
}

type tasteVectorsRequest struct {
	TasteText string `json:"tasteText"`
}

// GenerateTasteVectors handles POST /api/v1/profile/taste-vectors. The
// free-text preferences are turned into a structured preference document by
// the completion provider and stored on the profile.
func (h *ProfileHandlers) GenerateTasteVectors(w http.ResponseWriter, r *http.Request) {
	userID, ok := authedUser(w, r)
	if !ok {
		return
	}

	var req tasteVectorsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}

	vectors, err := h.profiles.GenerateTasteVectors(r.Context(), userID, req.TasteText)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"tasteVectors": vectors})
}

// GetTasteVectors handles GET /api/v1/profile/taste-vectors.
func (h *ProfileHandlers) GetTasteVectors(w http.ResponseWriter, r *http.Request) {
	userID, ok := authedUser(w, r)
	if !ok {
		return
	}

	vectors, err := h.profiles.GetTasteVectors(r.Context(), userID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"tasteVectors": vectors})
}
