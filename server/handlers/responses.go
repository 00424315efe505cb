package handlers

import (
	"encoding/json"
	"net/http"

	"dine-server/logger"

	"go.uber.org/zap"
)

const (
	CODE_INVALID_REQUEST   = "invalid_request"
	CODE_INVALID_QUERY     = "invalid_query"
	CODE_SESSION_NOT_FOUND = "session_not_found"
	CODE_NOT_FOUND         = "not_found"
	CODE_RATE_LIMITED      = "rate_limited"
	CODE_INTERNAL_ERROR    = "internal_error"
)

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Log.Warn("failed to encode response", zap.Error(err))
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{Error: message, Code: code})
}
