package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/stockroom/inventory-web/internal/pkg/metrics"
)

// LoginPath is where the gate sends signed-out visitors.
const LoginPath = "/login"

// Gate withholds the wrapped view until the session is hydrated and signed
// in. Before hydration it serves loading; without an identity it redirects
// to the login page and next never runs. It keeps no state and decides
// afresh on every request.
func Gate(loading echo.HandlerFunc) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sess := SessionFrom(c)
			if sess != nil && !sess.Ready() {
				return loading(c)
			}
			if sess == nil || !sess.Authenticated() {
				metrics.GateRedirectsTotal.Inc()
				return c.Redirect(http.StatusFound, LoginPath)
			}
			return next(c)
		}
	}
}
