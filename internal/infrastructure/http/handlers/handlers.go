// Package handlers provides HTTP handlers for the REST API.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	apperrors "github.com/handsapp/backend/pkg/errors"
)

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, logger *zap.Logger, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		if appErr.StatusCode() >= http.StatusInternalServerError {
			logger.Error("request failed", zap.Error(err))
		}
		writeJSON(w, appErr.StatusCode(), map[string]string{"error": appErr.Message})
		return
	}
	logger.Error("request failed", zap.Error(err))
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
}
