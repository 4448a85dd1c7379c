package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/stockroom/inventory-web/internal/api/middleware"
	"github.com/stockroom/inventory-web/internal/api/routes"
	"github.com/stockroom/inventory-web/internal/api/view"
)

// Dispatcher serves every GET page. It picks the route table from the
// hydrated session on each request, resolves the path against it, and wraps
// protected views in the authorization gate.
type Dispatcher struct {
	views map[routes.View]echo.HandlerFunc
	gate  echo.MiddlewareFunc
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		views: make(map[routes.View]echo.HandlerFunc),
		gate:  middleware.Gate(Loading),
	}
}

// Handle registers the handler rendering v.
func (d *Dispatcher) Handle(v routes.View, h echo.HandlerFunc) {
	d.views[v] = h
}

// Dispatch is mounted on GET / and GET /*.
func (d *Dispatcher) Dispatch(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}
	if !sess.Ready() {
		return Loading(c)
	}

	tbl := routes.Select(sess.Role())
	route := tbl.Resolve(c.Request().URL.Path)

	h, ok := d.views[route.View]
	if !ok {
		return NotFound(c)
	}
	if route.Protected {
		h = d.gate(h)
	}
	return h(c)
}

// Loading is the neutral page shown before the session is hydrated.
func Loading(c echo.Context) error {
	return c.Render(http.StatusOK, view.TemplateLoading, view.Page{Title: "Loading"})
}

// NotFound renders the fallback view for unmatched paths.
func NotFound(c echo.Context) error {
	return c.Render(http.StatusNotFound, view.TemplateNotFound, view.Page{
		Title:       "Page not found",
		CurrentPath: c.Request().URL.Path,
	})
}
