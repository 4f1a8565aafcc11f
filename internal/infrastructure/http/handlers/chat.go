package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/handsapp/backend/internal/infrastructure/http/middleware"
	"github.com/handsapp/backend/internal/infrastructure/monitoring"
	"github.com/handsapp/backend/internal/ports/inbound"
)

// ChatHandlers serves the streaming recommendation endpoint.
type ChatHandlers struct {
	recommend inbound.RecommendService
	metrics   *monitoring.MetricsCollector
	validate  *validator.Validate
	logger    *zap.Logger
}

// NewChatHandlers creates chat handlers. metrics may be nil.
func NewChatHandlers(recommend inbound.RecommendService, metrics *monitoring.MetricsCollector, logger *zap.Logger) *ChatHandlers {
	return &ChatHandlers{
		recommend: recommend,
		metrics:   metrics,
		validate:  validator.New(),
		logger:    logger.Named("chat"),
	}
}

// Stream handles POST /api/v1/chat/stream. The response is the raw model
// output as plain text, written delta by delta. Headers go out before the
// pipeline runs, so pipeline failures surface as a fallback body rather
// than an error status.
func (h *ChatHandlers) Stream(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "Method not allowed"})
		return
	}

	var req inbound.RecommendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}
	req.Prompt = strings.TrimSpace(req.Prompt)
	if err := h.validate.Struct(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Prompt is required"})
		return
	}

	if userID, ok := middleware.GetUserIDFromContext(r.Context()); ok {
		h.logger.Info("chat stream request", zap.String("user_id", userID))
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache, no-transform")
	w.WriteHeader(http.StatusOK)

	start := time.Now()
	err := h.recommend.Stream(r.Context(), req, flushWriter{w})
	if h.metrics != nil {
		outcome := "ok"
		if err != nil {
			outcome = "fallback"
		}
		h.metrics.RecommendationServed(outcome, time.Since(start))
	}
}

// flushWriter flushes after every write so deltas reach the client as they
// are produced instead of sitting in the response buffer.
type flushWriter struct {
	w io.Writer
}

func (fw flushWriter) Write(p []byte) (int, error) {
	n, err := fw.w.Write(p)
	if f, ok := fw.w.(http.Flusher); ok {
		f.Flush()
	}
	return n, err
}
