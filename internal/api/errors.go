package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/Auroral0810/LaTexia-sub000/internal/api/shared"
	"github.com/Auroral0810/LaTexia-sub000/internal/domain"
	"github.com/Auroral0810/LaTexia-sub000/internal/service/auth"
	"github.com/go-playground/validator/v10"
)

// MapErrorToStatusCode maps internal errors to HTTP status codes without
// exposing internal error types to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrWrongTokenType),
		errors.Is(err, auth.ErrMissingToken):
		return http.StatusUnauthorized

	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID):
		return http.StatusBadRequest

	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound

	case errors.Is(err, domain.ErrConflict),
		errors.Is(err, domain.ErrPlanCompleted):
		return http.StatusConflict

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a user-facing message for err that never
// includes internal details.
func GetSafeErrorMessage(err error) string {
	switch {
	case err == nil:
		return "An unexpected error occurred"

	case errors.Is(err, auth.ErrExpiredToken):
		return "Token expired"
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrWrongTokenType),
		errors.Is(err, auth.ErrMissingToken):
		return "Invalid token"

	case errors.Is(err, domain.ErrInvalidID):
		return "Invalid ID"
	case errors.Is(err, domain.ErrValidation):
		return validationMessage(err)

	case errors.Is(err, domain.ErrPlanCompleted):
		return "Review plan already completed"
	case errors.Is(err, domain.ErrConflict):
		return "Review plan was modified concurrently, please retry"
	case errors.Is(err, domain.ErrNotFound):
		return "Resource not found"

	default:
		return "An unexpected error occurred"
	}
}

// validationMessage exposes the domain's validation detail, which is built
// from client input only, with the sentinel prefix trimmed.
func validationMessage(err error) string {
	msg := err.Error()
	if i := strings.Index(msg, domain.ErrValidation.Error()+": "); i >= 0 {
		msg = msg[i+len(domain.ErrValidation.Error())+2:]
	}
	if msg == "" || msg == domain.ErrValidation.Error() {
		return "Validation error"
	}
	return "Validation error: " + msg
}

// SanitizeValidationError turns validator errors into a short message naming
// the first failing field.
func SanitizeValidationError(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return fmt.Sprintf("Invalid %s: %s", fe.Field(), getValidationTagMessage(fe.Tag()))
	}
	return "Validation error"
}

func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "uuid":
		return "invalid UUID format"
	case "min", "gte":
		return "too small"
	case "max", "lte":
		return "too large"
	case "oneof":
		return "invalid value"
	default:
		return "validation failed"
	}
}

// HandleAPIError writes the error response for err. defaultMessage, when
// non-empty, replaces the generic message of 5xx responses.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, defaultMessage string) {
	status := MapErrorToStatusCode(err)
	message := GetSafeErrorMessage(err)
	if status == http.StatusInternalServerError && defaultMessage != "" {
		message = defaultMessage
	}
	shared.RespondWithErrorAndLog(w, r, status, message, err)
}
