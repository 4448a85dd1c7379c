package api

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/stockroom/inventory-web/internal/api/handler"
	"github.com/stockroom/inventory-web/internal/api/middleware"
	"github.com/stockroom/inventory-web/internal/api/view"
)

// errorResponse is the canonical error envelope for JSON endpoints.
type errorResponse struct {
	Error string `json:"error"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - answers /api/* requests with {"error": "<message>"};
//   - sends browsers to the login page when the session is missing or was
//     rejected by the backend;
//   - renders the not-found or error page otherwise.
//
// Unexpected errors are logged and shown only as a generic message.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)

		if wantsJSON(c) {
			_ = c.JSON(code, errorResponse{Error: msg})
			return
		}

		switch {
		case code == http.StatusUnauthorized || handler.Rejected(c):
			_ = c.Redirect(http.StatusSeeOther, middleware.LoginPath)
		case code == http.StatusNotFound:
			_ = handler.NotFound(c)
		default:
			renderErr := c.Render(code, view.TemplateError, view.Page{
				Title: http.StatusText(code),
				Data:  view.ErrorData{Status: code, Message: msg},
			})
			if renderErr != nil {
				log.Error().Err(renderErr).Msg("failed to render error page")
				_ = c.String(code, msg)
			}
		}
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	code, msg, known := handler.Describe(err)
	if known {
		return code, msg
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return code, msg
}

func wantsJSON(c echo.Context) bool {
	path := c.Request().URL.Path
	if strings.HasPrefix(path, "/api/") || strings.HasPrefix(path, "/health") {
		return true
	}
	accept := c.Request().Header.Get(echo.HeaderAccept)
	return strings.Contains(accept, echo.MIMEApplicationJSON) && !strings.Contains(accept, echo.MIMETextHTML)
}
