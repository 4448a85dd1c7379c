// Package routes declares the two disjoint route tables and the pure
// selection function that picks one from a role.
package routes

import (
	"strings"

	"github.com/stockroom/inventory-web/internal/core/domain"
)

// View identifies a page the dispatcher knows how to render.
type View string

const (
	ViewDashboard View = "dashboard"
	ViewInventory View = "inventory"
	ViewPurchases View = "purchase-details"
	ViewSales     View = "sales"
	ViewStores    View = "manage-store"
	ViewLogin     View = "login"
	ViewRegister  View = "register"
	ViewNotFound  View = "not-found"
)

// Route binds a path to a view.
type Route struct {
	Path  string
	View  View
	Title string
	// Protected routes sit behind the authorization gate.
	Protected bool
	// Chrome routes render inside the shared header and side menu.
	Chrome bool
}

// Table is one complete, immutable route set.
type Table struct {
	name   string
	routes []Route
}

var shared = []Route{
	{Path: "/login", View: ViewLogin, Title: "Sign in"},
	{Path: "/register", View: ViewRegister, Title: "Create account"},
}

var notFound = Route{View: ViewNotFound, Title: "Page not found"}

var adminTable = Table{
	name: "admin",
	routes: append([]Route{
		{Path: "/", View: ViewDashboard, Title: "Dashboard", Protected: true, Chrome: true},
		{Path: "/inventory", View: ViewInventory, Title: "Inventory", Protected: true, Chrome: true},
		{Path: "/purchase-details", View: ViewPurchases, Title: "Purchase Details", Protected: true, Chrome: true},
		{Path: "/sales", View: ViewSales, Title: "Sales", Protected: true, Chrome: true},
		{Path: "/manage-store", View: ViewStores, Title: "Manage Store", Protected: true, Chrome: true},
	}, shared...),
}

var employeeTable = Table{
	name: "employee",
	routes: append([]Route{
		{Path: "/", View: ViewInventory, Title: "Inventory", Protected: true},
	}, shared...),
}

// Select returns the admin table for admins and the employee table for
// everyone else, including signed-out visitors.
func Select(role domain.Role) Table {
	if role == domain.RoleAdmin {
		return adminTable
	}
	return employeeTable
}

// Name is "admin" or "employee".
func (t Table) Name() string {
	return t.name
}

// Resolve matches path exactly after normalising trailing slashes. Unmatched
// paths resolve to the not-found route.
func (t Table) Resolve(path string) Route {
	path = Normalize(path)
	for _, r := range t.routes {
		if r.Path == path {
			return r
		}
	}
	nf := notFound
	nf.Path = path
	return nf
}

// PathFor returns the path serving v in this table.
func (t Table) PathFor(v View) (string, bool) {
	for _, r := range t.routes {
		if r.View == v {
			return r.Path, true
		}
	}
	return "", false
}

// Nav lists the routes shown in the side menu, in declaration order.
func (t Table) Nav() []Route {
	var out []Route
	for _, r := range t.routes {
		if r.Chrome {
			out = append(out, r)
		}
	}
	return out
}

// Routes returns a copy of every route in the table.
func (t Table) Routes() []Route {
	return append([]Route(nil), t.routes...)
}

// Normalize maps "" to "/" and strips trailing slashes from other paths.
func Normalize(path string) string {
	if path == "" {
		return "/"
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
		if path == "" {
			return "/"
		}
	}
	return path
}
