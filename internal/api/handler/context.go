package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/stockroom/inventory-web/internal/api/middleware"
	"github.com/stockroom/inventory-web/internal/api/routes"
	"github.com/stockroom/inventory-web/internal/api/view"
	"github.com/stockroom/inventory-web/internal/core/domain"
	"github.com/stockroom/inventory-web/internal/core/session"
)

const rejectedKey = "backend_rejected"

// notices maps the ?notice= codes set by post/redirect/get to display text.
// Only known codes render, so the query string cannot inject arbitrary copy.
var notices = map[string]string{
	"registered": "Account created. Please sign in.",
	"signed-out": "You have been signed out.",
	"saved":      "Saved.",
	"deleted":    "Deleted.",
}

// ctxSession returns the request's Session Context. Its absence means the
// Session middleware is not installed, which is treated as signed out.
func ctxSession(c echo.Context) (*session.Context, error) {
	sess := middleware.SessionFrom(c)
	if sess == nil {
		return nil, domain.ErrUnauthenticated
	}
	return sess, nil
}

// markRejected records that the backend rejected the session during this
// request; the error handler then sends the browser to the login page.
func markRejected(c echo.Context) func() {
	return func() { c.Set(rejectedKey, true) }
}

// Rejected reports whether the backend rejected the session during c.
func Rejected(c echo.Context) bool {
	v, _ := c.Get(rejectedKey).(bool)
	return v
}

// pageFor builds the layout data for v as seen from sess's route table.
func pageFor(c echo.Context, sess *session.Context, v routes.View) view.Page {
	tbl := routes.Select(sess.Role())
	path, ok := tbl.PathFor(v)
	if !ok {
		path = c.Request().URL.Path
	}
	return pageForRoute(c, sess, tbl, tbl.Resolve(path))
}

func pageForRoute(c echo.Context, sess *session.Context, tbl routes.Table, route routes.Route) view.Page {
	page := view.Page{
		Title:          route.Title,
		CurrentPath:    route.Path,
		Chrome:         route.Chrome,
		EmployeeHeader: route.Protected && !route.Chrome,
		Notice:         notices[c.QueryParam("notice")],
	}

	if sess != nil {
		if id, ok := sess.Identity(); ok {
			page.User = view.UserFrom(id)
		}
	}

	if route.Chrome {
		for _, r := range tbl.Nav() {
			page.Nav = append(page.Nav, view.NavItem{Path: r.Path, Title: r.Title, Active: r.Path == route.Path})
		}
	}
	return page
}
