package routes

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/stockroom/inventory-web/internal/core/domain"
)

func TestSelect(t *testing.T) {
	assert.Equal(t, "admin", Select(domain.RoleAdmin).Name())
	assert.Equal(t, "employee", Select(domain.RoleEmployee).Name())
	assert.Equal(t, "employee", Select("").Name())
}

func TestAdminTable(t *testing.T) {
	tbl := Select(domain.RoleAdmin)

	r := tbl.Resolve("/inventory")
	assert.Equal(t, ViewInventory, r.View)
	assert.True(t, r.Protected)
	assert.True(t, r.Chrome)

	assert.Equal(t, ViewDashboard, tbl.Resolve("/").View)
	assert.Equal(t, ViewSales, tbl.Resolve("/sales/").View)

	nav := tbl.Nav()
	paths := make([]string, 0, len(nav))
	for _, n := range nav {
		paths = append(paths, n.Path)
	}
	assert.Equal(t, []string{"/", "/inventory", "/purchase-details", "/sales", "/manage-store"}, paths)
}

func TestEmployeeTable(t *testing.T) {
	tbl := Select(domain.RoleEmployee)

	r := tbl.Resolve("/")
	assert.Equal(t, ViewInventory, r.View)
	assert.True(t, r.Protected)
	assert.False(t, r.Chrome)

	for _, p := range []string{"/inventory", "/purchase-details", "/sales", "/manage-store"} {
		assert.Equal(t, ViewNotFound, tbl.Resolve(p).View, p)
	}

	_, ok := tbl.PathFor(ViewDashboard)
	assert.False(t, ok, "dashboard must not be reachable for employees")

	path, ok := tbl.PathFor(ViewInventory)
	assert.True(t, ok)
	assert.Equal(t, "/", path)

	assert.Empty(t, tbl.Nav())
}

func TestTablesAreDisjoint(t *testing.T) {
	admin := Select(domain.RoleAdmin)
	employee := Select(domain.RoleEmployee)

	for _, r := range employee.Routes() {
		if !r.Protected {
			continue
		}
		assert.NotEqual(t, r.View, admin.Resolve(r.Path).View, "protected %s must differ between tables", r.Path)
	}
}

func TestSharedPublicRoutes(t *testing.T) {
	for _, role := range []domain.Role{domain.RoleAdmin, domain.RoleEmployee, ""} {
		tbl := Select(role)
		assert.Equal(t, ViewLogin, tbl.Resolve("/login").View)
		assert.False(t, tbl.Resolve("/login").Protected)
		assert.Equal(t, ViewRegister, tbl.Resolve("/register").View)
	}
}

func TestUnknownRouteFallsBack(t *testing.T) {
	for _, role := range []domain.Role{domain.RoleAdmin, domain.RoleEmployee, ""} {
		for _, p := range []string{"/nope", "/inventory/extra", "/admin", "/LOGIN"} {
			r := Select(role).Resolve(p)
			assert.Equal(t, ViewNotFound, r.View, "%s %s", role, p)
			assert.False(t, r.Protected)
		}
	}
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "/", Normalize(""))
	assert.Equal(t, "/", Normalize("/"))
	assert.Equal(t, "/", Normalize("//"))
	assert.Equal(t, "/sales", Normalize("/sales///"))
}
