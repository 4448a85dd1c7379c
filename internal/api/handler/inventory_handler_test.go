package handler

import (
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockroom/inventory-web/internal/core/domain"
	"github.com/stockroom/inventory-web/internal/infrastructure/backend"
)

var sampleProducts = []domain.Product{
	{ID: "p1", Name: "Steel Bolt", Manufacturer: "Acme", Stock: 4, Unit: "Adet"},
	{ID: "p2", Name: "Copper Wire", Manufacturer: "Wireco", Stock: 0, Unit: "m"},
}

func TestInventoryHandler_List_Filters(t *testing.T) {
	e := newTestEcho(t)
	h := NewInventoryHandler(&stubBackend{api: &stubAPI{Products: sampleProducts}}, zerolog.Nop())
	c, rec := newRequest(e, http.MethodGet, "/?q=BOLT", nil, newSession(t, domain.RoleEmployee))

	require.NoError(t, h.List(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Steel Bolt")
	assert.NotContains(t, body, "Copper Wire")
	assert.Contains(t, body, `id="employee-header"`)
	assert.NotContains(t, body, `id="side-menu"`)
}

func TestInventoryHandler_List_AdminChrome(t *testing.T) {
	e := newTestEcho(t)
	h := NewInventoryHandler(&stubBackend{api: &stubAPI{Products: sampleProducts}}, zerolog.Nop())
	c, rec := newRequest(e, http.MethodGet, "/inventory", nil, newSession(t, domain.RoleAdmin))

	require.NoError(t, h.List(c))
	body := rec.Body.String()
	assert.Contains(t, body, `id="side-menu"`)
	assert.Contains(t, body, `action="/inventory"`)
	assert.Contains(t, body, "Copper Wire")
}

func TestInventoryHandler_List_OpensDialogs(t *testing.T) {
	e := newTestEcho(t)
	h := NewInventoryHandler(&stubBackend{api: &stubAPI{Products: sampleProducts}}, zerolog.Nop())

	c, rec := newRequest(e, http.MethodGet, "/?dialog=add", nil, newSession(t, domain.RoleEmployee))
	require.NoError(t, h.List(c))
	assert.Contains(t, rec.Body.String(), `id="product-dialog"`)
	assert.Contains(t, rec.Body.String(), `data-state="open"`)
	assert.Contains(t, rec.Body.String(), `action="/inventory/products"`)

	c, rec = newRequest(e, http.MethodGet, "/?edit=p2", nil, newSession(t, domain.RoleEmployee))
	require.NoError(t, h.List(c))
	assert.Contains(t, rec.Body.String(), `action="/inventory/products/p2"`)
	assert.Contains(t, rec.Body.String(), `value="Copper Wire"`)

	c, rec = newRequest(e, http.MethodGet, "/?edit=missing", nil, newSession(t, domain.RoleEmployee))
	require.NoError(t, h.List(c))
	assert.NotContains(t, rec.Body.String(), `id="product-dialog"`)
	assert.Contains(t, rec.Body.String(), "That product no longer exists.")
}

func TestInventoryHandler_Create(t *testing.T) {
	e := newTestEcho(t)
	api := &stubAPI{}
	h := NewInventoryHandler(&stubBackend{api: api}, zerolog.Nop())
	form := url.Values{"name": {"Nut"}, "manufacturer": {"Acme"}, "stock": {"10"}}
	c, rec := newRequest(e, http.MethodPost, "/inventory/products", form, newSession(t, domain.RoleAdmin))

	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/inventory?notice=saved", rec.Header().Get("Location"))
	require.Len(t, api.added, 1)
	assert.Equal(t, "Nut", api.added[0].Name)
	assert.Equal(t, domain.DefaultUnit, api.added[0].Unit)
}

func TestInventoryHandler_Create_ValidationKeepsDialogOpen(t *testing.T) {
	e := newTestEcho(t)
	api := &stubAPI{Products: sampleProducts}
	h := NewInventoryHandler(&stubBackend{api: api}, zerolog.Nop())
	form := url.Values{"name": {"Nut"}}
	c, rec := newRequest(e, http.MethodPost, "/inventory/products", form, newSession(t, domain.RoleEmployee))

	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `id="product-dialog"`)
	assert.Contains(t, body, `value="Nut"`)
	assert.Contains(t, body, "manufacturer is required")
	assert.Empty(t, api.added)
}

func TestInventoryHandler_Update_BackendErrorRendersMessage(t *testing.T) {
	e := newTestEcho(t)
	api := &stubAPI{Err: &backend.APIError{Status: http.StatusBadRequest, Message: "stock too large", Err: domain.ErrBackend}}
	h := NewInventoryHandler(&stubBackend{api: api}, zerolog.Nop())
	form := url.Values{"name": {"Bolt"}, "manufacturer": {"Acme"}, "stock": {"1"}}
	c, rec := newRequest(e, http.MethodPost, "/inventory/products/p1", form, newSession(t, domain.RoleEmployee))
	c.SetParamNames("id")
	c.SetParamValues("p1")

	require.NoError(t, h.Update(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "stock too large")
	assert.NotContains(t, rec.Header().Get("Location"), "notice=saved")
}

func TestInventoryHandler_Update_UnauthenticatedPropagates(t *testing.T) {
	e := newTestEcho(t)
	api := &stubAPI{Err: domain.ErrUnauthenticated}
	h := NewInventoryHandler(&stubBackend{api: api}, zerolog.Nop())
	form := url.Values{"name": {"Bolt"}, "manufacturer": {"Acme"}}
	c, _ := newRequest(e, http.MethodPost, "/inventory/products/p1", form, newSession(t, domain.RoleEmployee))
	c.SetParamNames("id")
	c.SetParamValues("p1")

	assert.ErrorIs(t, h.Update(c), domain.ErrUnauthenticated)
}

func TestInventoryHandler_Delete(t *testing.T) {
	e := newTestEcho(t)
	api := &stubAPI{}
	b := &stubBackend{api: api}
	h := NewInventoryHandler(b, zerolog.Nop())
	c, rec := newRequest(e, http.MethodPost, "/inventory/products/p1/delete", nil, newSession(t, domain.RoleEmployee))
	c.SetParamNames("id")
	c.SetParamValues("p1")

	require.NoError(t, h.Delete(c))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/?notice=deleted", rec.Header().Get("Location"))
	assert.Equal(t, []string{"p1"}, api.deleted)

	require.NotNil(t, b.onReject)
	assert.False(t, Rejected(c))
	b.onReject()
	assert.True(t, Rejected(c))
}

func TestInventoryHandler_List_Escapes(t *testing.T) {
	e := newTestEcho(t)
	api := &stubAPI{Products: []domain.Product{{ID: "x", Name: "<script>alert(1)</script>", Manufacturer: "m"}}}
	h := NewInventoryHandler(&stubBackend{api: api}, zerolog.Nop())
	c, rec := newRequest(e, http.MethodGet, "/", nil, newSession(t, domain.RoleEmployee))

	require.NoError(t, h.List(c))
	assert.False(t, strings.Contains(rec.Body.String(), "<script>alert(1)</script>"))
}
