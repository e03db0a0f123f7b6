package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	appErr "github.com/samims/sitepulse/internal/errors"
)

const maxBodyBytes = 1 << 20

// envelope is the shape of every /api response.
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func respond(w http.ResponseWriter, status int, message string, data any) {
	writeEnvelope(w, status, envelope{Success: true, Message: message, Data: data})
}

func respondError(w http.ResponseWriter, status int, message string) {
	writeEnvelope(w, status, envelope{Success: false, Message: message, Error: message})
}

// respondServiceError logs err at a level matching its class and writes the
// error envelope.
func respondServiceError(w http.ResponseWriter, logger *slog.Logger, op string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.Error(op+" failed", slog.Any("error", err))
	} else {
		logger.Warn(op+" rejected", slog.Any("error", err))
	}
	respondError(w, status, err.Error())
}

func writeEnvelope(w http.ResponseWriter, status int, env envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(env)
}

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case appErr.IsValidation(err):
		return http.StatusBadRequest
	case appErr.IsNotFound(err):
		return http.StatusNotFound
	case appErr.IsUpstream(err), errors.Is(err, appErr.ErrMalformedResponse):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return appErr.NewValidation("invalid request body: %v", err)
	}
	return nil
}
