// Package handlers wires the HTTP layer: request decoding, response
// encoding and route registration
package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/ventylab/backend/internal/apperror"
)

// BaseHandler provides common handler functionality
type BaseHandler struct {
	Logger *zap.Logger
}

// RespondJSON sends a JSON response
func (h *BaseHandler) RespondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.Logger.Error("failed to encode JSON response", zap.Error(err))
	}
}

// RespondError sends an error JSON response
func (h *BaseHandler) RespondError(w http.ResponseWriter, status int, message string) {
	h.RespondJSON(w, status, map[string]string{"error": message})
}

// RespondAppError maps a service error onto the wire format. Unexpected
// errors are logged and surfaced as a generic 500.
func (h *BaseHandler) RespondAppError(w http.ResponseWriter, err error) {
	appErr := apperror.From(err)
	if appErr.Status >= http.StatusInternalServerError {
		h.Logger.Error("request failed", zap.Error(err))
	}
	h.RespondJSON(w, appErr.Status, appErr)
}
