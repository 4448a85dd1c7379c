package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/stockroom/inventory-web/internal/core/domain"
)

// RBAC lets the request through only when the session role is one of
// allowedRoles. Signed-out requests get domain.ErrUnauthenticated, others
// domain.ErrForbidden; the error handler turns both into a response.
func RBAC(allowedRoles ...domain.Role) echo.MiddlewareFunc {
	allowed := make(map[domain.Role]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sess := SessionFrom(c)
			if sess == nil || !sess.Authenticated() {
				return domain.ErrUnauthenticated
			}
			if _, ok := allowed[sess.Role()]; !ok {
				return domain.ErrForbidden
			}
			return next(c)
		}
	}
}
