package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/stockroom/inventory-web/internal/core/domain"
	"github.com/stockroom/inventory-web/internal/infrastructure/backend"
)

// Describe maps err to a status and a message safe to show the user. known
// is false for errors with no mapping; callers log those.
func Describe(err error) (status int, msg string, known bool) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message), true
	}

	var ve *ValidationError
	if errors.As(err, &ve) {
		return http.StatusUnprocessableEntity, ve.Error(), true
	}

	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid email or password.", true
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized, "Please sign in again.", true
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "You don't have permission to do that.", true
	case errors.Is(err, domain.ErrUserExists):
		return http.StatusConflict, "An account with this email already exists.", true
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "Not found.", true
	case errors.Is(err, domain.ErrInvalidRole), errors.Is(err, domain.ErrTokenMissing):
		return http.StatusBadGateway, "The server returned an account this application cannot use.", true
	case errors.Is(err, domain.ErrInvalidDialogTransition):
		return http.StatusConflict, "That form is not open.", true
	case errors.Is(err, domain.ErrBackendUnavailable):
		return http.StatusServiceUnavailable, "The inventory service is unreachable. Please try again.", true
	case errors.Is(err, domain.ErrBackend):
		return backendStatus(err), backendMessage(err), true
	}

	return http.StatusInternalServerError, "internal server error", false
}

func backendStatus(err error) int {
	var apiErr *backend.APIError
	if errors.As(err, &apiErr) && apiErr.Status >= 400 && apiErr.Status < 500 {
		if apiErr.Status == http.StatusNotFound {
			return http.StatusNotFound
		}
		return http.StatusBadRequest
	}
	return http.StatusBadGateway
}

func backendMessage(err error) string {
	var apiErr *backend.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return "The inventory service rejected the request: " + apiErr.Message
	}
	return "The inventory service could not complete the request."
}
