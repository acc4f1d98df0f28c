package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/Auroral0810/LaTexia-sub000/internal/api/shared"
	"github.com/Auroral0810/LaTexia-sub000/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// requireUserID extracts the authenticated user ID and writes a 401 when it
// is missing.
func requireUserID(w http.ResponseWriter, r *http.Request, log *slog.Logger) (uuid.UUID, bool) {
	userID, ok := shared.UserIDFromContext(r.Context())
	if !ok {
		log.Warn("user ID not found or invalid in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return uuid.Nil, false
	}
	return userID, true
}

// getPathUUID parses a UUID path parameter.
func getPathUUID(r *http.Request, paramName string) (uuid.UUID, error) {
	raw := chi.URLParam(r, paramName)
	if raw == "" {
		return uuid.Nil, fmt.Errorf("%w: %s is required", domain.ErrValidation, paramName)
	}
	id, err := uuid.Parse(raw)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, fmt.Errorf("%w: %s has invalid format", domain.ErrInvalidID, paramName)
	}
	return id, nil
}

// queryInt parses an optional integer query parameter; absent yields 0.
func queryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", domain.ErrValidation, name)
	}
	return n, nil
}
