package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// Response is the JSON envelope wrapping every API response
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

// BaseHandler provides common handler functionality
type BaseHandler struct {
	Logger *zap.Logger
}

// RespondSuccess sends a success envelope with the given data
func (h *BaseHandler) RespondSuccess(w http.ResponseWriter, status int, data any) {
	h.respondJSON(w, status, Response{Success: true, Data: data})
}

// RespondError sends a failure envelope with the given message
func (h *BaseHandler) RespondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, Response{Success: false, Message: message})
}

// respondJSON sends a JSON response
func (h *BaseHandler) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.Logger.Error("failed to encode JSON response", zap.Error(err))
	}
}
