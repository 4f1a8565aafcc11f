package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/handsapp/backend/internal/domain/chat"
	"github.com/handsapp/backend/internal/infrastructure/http/middleware"
	"github.com/handsapp/backend/internal/ports/inbound"
)

// ConversationHandlers serves the chat history CRUD routes. All routes
// require authentication; the user id always comes from the token.
type ConversationHandlers struct {
	conversations inbound.ConversationService
	logger        *zap.Logger
}

// NewConversationHandlers creates conversation handlers.
func NewConversationHandlers(conversations inbound.ConversationService, logger *zap.Logger) *ConversationHandlers {
	return &ConversationHandlers{
		conversations: conversations,
		logger:        logger.Named("conversations"),
	}
}

type createConversationRequest struct {
	FirstMessage string `json:"firstMessage"`
}

type appendMessageRequest struct {
	Role    chat.Role           `json:"role"`
	Content string              `json:"content"`
	Recipes []chat.ParsedRecipe `json:"recipes,omitempty"`
}

// Create handles POST /api/v1/conversations.
func (h *ConversationHandlers) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := authedUser(w, r)
	if !ok {
		return
	}

	var req createConversationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}

	dto, err := h.conversations.Create(r.Context(), userID, req.FirstMessage)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, dto)
}

// Get handles GET /api/v1/conversations/{id}.
func (h *ConversationHandlers) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := authedUser(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	dto, err := h.conversations.Get(r.Context(), id, userID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto)
}

// List handles GET /api/v1/conversations.
func (h *ConversationHandlers) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := authedUser(w, r)
	if !ok {
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid limit"})
			return
		}
		limit = parsed
	}

	summaries, err := h.conversations.ListByUser(r.Context(), userID, limit)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"conversations": summaries})
}

// AppendMessage handles POST /api/v1/conversations/{id}/messages.
func (h *ConversationHandlers) AppendMessage(w http.ResponseWriter, r *http.Request) {
	userID, ok := authedUser(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	var req appendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}

	err := h.conversations.AppendMessage(r.Context(), inbound.AppendMessageCommand{
		ConversationID: id,
		UserID:         userID,
		Role:           req.Role,
		Content:        req.Content,
		Recipes:        req.Recipes,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Delete handles DELETE /api/v1/conversations/{id}.
func (h *ConversationHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := authedUser(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	if err := h.conversations.Delete(r.Context(), id, userID); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func authedUser(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	raw, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Authorization header required"})
		return uuid.Nil, false
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Invalid token"})
		return uuid.Nil, false
	}
	return userID, true
}

func pathUUID(w http.ResponseWriter, r *http.Request, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid id"})
		return uuid.Nil, false
	}
	return id, true
}
