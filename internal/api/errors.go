package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/petdeck/internal/api/shared"
	"github.com/phrazzld/petdeck/internal/domain"
	"github.com/phrazzld/petdeck/internal/service/auth"
	"github.com/phrazzld/petdeck/internal/store"
)

// ErrUnauthenticated is reported when a protected handler runs without a user
// in the request context.
var ErrUnauthenticated = errors.New("request is not authenticated")

// MapErrorToStatusCode maps internal errors to HTTP status codes without
// leaking error types to clients. ErrBlocked is checked before
// ErrInvalidState because a blocked submit wraps both.
func MapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, domain.ErrBlocked):
		return http.StatusLocked

	case errors.Is(err, ErrUnauthenticated),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken):
		return http.StatusUnauthorized

	case errors.Is(err, domain.ErrTransientIO):
		return http.StatusServiceUnavailable

	case errors.Is(err, domain.ErrDailyLimit):
		return http.StatusTooManyRequests

	case errors.Is(err, domain.ErrConflict),
		errors.Is(err, domain.ErrAlreadyAlive),
		errors.Is(err, domain.ErrNotAwaitingCare):
		return http.StatusConflict

	case errors.Is(err, domain.ErrInvalidState),
		errors.Is(err, domain.ErrNothingDue),
		errors.Is(err, domain.ErrUnknownLevel):
		return http.StatusUnprocessableEntity

	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, domain.ErrInvalidCareKind),
		errors.Is(err, domain.ErrInvalidTimezone),
		errors.Is(err, domain.ErrInvalidToken):
		return http.StatusBadRequest

	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a client-facing message for err.
func GetSafeErrorMessage(err error) string {
	switch {
	case err == nil:
		return "An unexpected error occurred"
	case errors.Is(err, domain.ErrBlocked):
		return "Your pet needs to be revived first"
	case errors.Is(err, ErrUnauthenticated):
		return "Authentication required"
	case errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrTokenNotYetValid):
		return "Invalid token"
	case errors.Is(err, domain.ErrTransientIO):
		return "Service temporarily unavailable, please retry"
	case errors.Is(err, domain.ErrConflict):
		return "A session is already active"
	case errors.Is(err, domain.ErrAlreadyAlive):
		return "Pet is already alive"
	case errors.Is(err, domain.ErrNotAwaitingCare):
		return "Session is not awaiting care"
	case errors.Is(err, domain.ErrNothingDue):
		return "Nothing to study at this level"
	case errors.Is(err, domain.ErrDailyLimit):
		return "That's all for today, see you tomorrow"
	case errors.Is(err, domain.ErrUnknownLevel):
		return "Level is not available"
	case errors.Is(err, domain.ErrInvalidState):
		return "Operation not allowed in the current session state"
	case errors.Is(err, domain.ErrInvalidCareKind):
		return "Unknown care action"
	case errors.Is(err, domain.ErrInvalidTimezone):
		return "Unknown timezone"
	case errors.Is(err, domain.ErrInvalidToken):
		return "Revival token is invalid or expired"
	case errors.Is(err, domain.ErrInvalidID):
		return "Invalid ID"
	case errors.Is(err, domain.ErrValidation):
		return "Validation failed"
	case errors.Is(err, store.ErrUserNotFound):
		return "User not found"
	case errors.Is(err, store.ErrSessionNotFound):
		return "Session not found"
	case errors.Is(err, store.ErrPetNotFound):
		return "Pet not found"
	case errors.Is(err, store.ErrNotFound):
		return "Not found"
	default:
		return "An unexpected error occurred"
	}
}

// HandleAPIError writes the status and safe message for err and logs the
// redacted cause. defaultMsg replaces the generic message of a 500.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, defaultMsg string) {
	status := MapErrorToStatusCode(err)
	msg := GetSafeErrorMessage(err)
	if status == http.StatusInternalServerError && defaultMsg != "" {
		msg = defaultMsg
	}
	shared.RespondWithErrorAndLog(w, r, status, msg, err)
}

// HandleValidationError writes a 400 for a request that failed decoding or
// validation.
func HandleValidationError(w http.ResponseWriter, r *http.Request, err error) {
	shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
}

// SanitizeValidationError turns decoder and validator failures into a short
// message naming the offending field.
func SanitizeValidationError(err error) string {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return fmt.Sprintf("Invalid %s: %s", strings.ToLower(fe.Field()), validationTagMessage(fe.Tag()))
	}
	if errors.Is(err, shared.ErrEmptyBody) {
		return "Request body is required"
	}
	return "Invalid request body"
}

func validationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "min", "gte":
		return "too small"
	case "max", "lte":
		return "too large"
	case "oneof":
		return "invalid value"
	case "timezone":
		return "unknown timezone"
	default:
		return "validation failed"
	}
}
