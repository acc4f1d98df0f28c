// Package middleware provides the HTTP middleware applied in front of the API
// handlers.
package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/Auroral0810/LaTexia-sub000/internal/api/shared"
	"github.com/Auroral0810/LaTexia-sub000/internal/service/auth"
	"github.com/google/uuid"
)

// AuthMiddleware provides JWT authentication for routes.
type AuthMiddleware struct {
	validator auth.TokenValidator
}

// NewAuthMiddleware creates a new AuthMiddleware.
func NewAuthMiddleware(validator auth.TokenValidator) *AuthMiddleware {
	if validator == nil {
		panic("token validator cannot be nil")
	}
	return &AuthMiddleware{validator: validator}
}

// Authenticate validates the bearer token in the Authorization header and
// adds the user ID to the request context.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Authorization header required")
			return
		}

		scheme, token, found := strings.Cut(authHeader, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid authorization format")
			return
		}

		claims, err := m.validator.ValidateToken(r.Context(), token)
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrExpiredToken):
				shared.RespondWithErrorAndLog(w, r, http.StatusUnauthorized, "Token expired", err)
			case errors.Is(err, auth.ErrInvalidToken),
				errors.Is(err, auth.ErrTokenNotYetValid),
				errors.Is(err, auth.ErrWrongTokenType),
				errors.Is(err, auth.ErrMissingToken):
				shared.RespondWithErrorAndLog(w, r, http.StatusUnauthorized, "Invalid token", err,
					shared.WithElevatedLogLevel())
			default:
				shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
					"Authentication error", err)
			}
			return
		}

		ctx := shared.WithUserID(r.Context(), claims.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetUserID extracts the user ID from the request context.
func GetUserID(r *http.Request) (uuid.UUID, bool) {
	return shared.UserIDFromContext(r.Context())
}
