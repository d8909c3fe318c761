package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	apperrors "github.com/zatekoja/careroute/backend/pkg/errors"
)

const (
	maxBodyBytes    = 1 << 20
	sessionIDHeader = "X-Session-ID"
)

// Helper functions
func respondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Warn().Err(err).Msg("failed to write response")
	}
}

func respondWithError(w http.ResponseWriter, statusCode int, message string) {
	respondWithJSON(w, statusCode, map[string]string{
		"error": message,
	})
}

// respondWithAppError maps an AppError type to its HTTP status. Internal
// details are logged, never returned.
func respondWithAppError(w http.ResponseWriter, r *http.Request, err error) {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		log.Error().Err(err).Str("path", r.URL.Path).Msg("unhandled error")
		respondWithError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	switch appErr.Type {
	case apperrors.ErrorTypeValidation:
		respondWithError(w, http.StatusBadRequest, appErr.Message)
	case apperrors.ErrorTypeNotFound:
		respondWithError(w, http.StatusNotFound, appErr.Message)
	case apperrors.ErrorTypeExternal:
		log.Warn().Err(err).Str("path", r.URL.Path).Msg("upstream failure")
		respondWithError(w, http.StatusBadGateway, appErr.Message)
	case apperrors.ErrorTypeUnavailable:
		respondWithError(w, http.StatusServiceUnavailable, appErr.Message)
	default:
		log.Error().Err(err).Str("path", r.URL.Path).Msg("internal error")
		respondWithError(w, http.StatusInternalServerError, "internal server error")
	}
}

// decodeJSON reads a JSON body into dst. An empty body is a validation error.
func decodeJSON(r *http.Request, dst interface{}) error {
	if r.Body == nil {
		return apperrors.NewValidationError("request body is required")
	}
	err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(dst)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, io.EOF):
		return apperrors.NewValidationError("request body is required")
	default:
		return apperrors.NewValidationError("invalid JSON body")
	}
}

func sessionID(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(sessionIDHeader))
}
