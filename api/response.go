package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/SaiNageswarS/chat-boot/catalog"
	"github.com/SaiNageswarS/chat-boot/dispatch"
	"github.com/SaiNageswarS/chat-boot/session"
	"github.com/SaiNageswarS/go-api-boot/logger"
	"go.uber.org/zap"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

// RespondJSON writes a JSON response with the given status code and payload.
func RespondJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		// Headers are gone already; nothing left but to log.
		logger.Error("Error encoding JSON response", zap.Error(err))
	}
}

// RespondError writes a JSON error response with the given status code and message.
func RespondError(w http.ResponseWriter, statusCode int, message string) {
	RespondJSON(w, statusCode, ErrorResponse{Error: message})
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, session.ErrTurnInProgress):
		return http.StatusConflict
	case errors.Is(err, catalog.ErrUnknownModel),
		errors.Is(err, session.ErrUnknownTheme),
		errors.Is(err, session.ErrUnknownMood),
		errors.Is(err, session.ErrEmptyMessage),
		errors.Is(err, dispatch.ErrUnknownQuickPrompt):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func respondErr(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Error("Request failed", zap.Error(err))
	}
	RespondError(w, status, err.Error())
}
