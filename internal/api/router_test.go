package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockroom/inventory-web/internal/api/handler"
	"github.com/stockroom/inventory-web/internal/api/middleware"
	"github.com/stockroom/inventory-web/internal/api/view"
	"github.com/stockroom/inventory-web/internal/core/service"
	"github.com/stockroom/inventory-web/internal/core/session"
	"github.com/stockroom/inventory-web/internal/infrastructure/backend"
	"github.com/stockroom/inventory-web/internal/infrastructure/db/memory"
	"github.com/stockroom/inventory-web/internal/pkg/seal"
)

// fakeBackend serves the subset of the inventory REST API the pages use.
// Setting revoked makes every authenticated call answer 401.
type fakeBackend struct {
	revoked atomic.Bool
	calls   atomic.Int32
}

func (f *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.calls.Add(1)
	w.Header().Set("Content-Type", "application/json")

	if r.URL.Path == "/api/login" {
		var in struct{ Email, Password string }
		_ = json.NewDecoder(r.Body).Decode(&in)
		switch in.Email {
		case "admin@example.com":
			_, _ = w.Write([]byte(`{"token":"tok-admin","user":{"_id":"u-admin","firstName":"Ada","lastName":"Admin","email":"admin@example.com","role":"admin"}}`))
		case "emp@example.com":
			_, _ = w.Write([]byte(`{"token":"tok-emp","user":{"_id":"u-emp","firstName":"Eve","email":"emp@example.com","role":"employee"}}`))
		default:
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"wrong password"}`))
		}
		return
	}

	if f.revoked.Load() || !strings.HasPrefix(r.Header.Get("Authorization"), "Bearer tok-") {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	switch {
	case r.URL.Path == "/api/product":
		_, _ = w.Write([]byte(`[{"_id":"p1","name":"Steel Bolt","manufacturer":"Acme","stock":4,"unit":"Adet"}]`))
	case strings.HasSuffix(r.URL.Path, "/totalsaleamount"):
		_, _ = w.Write([]byte(`{"totalSaleAmount":120}`))
	case strings.HasSuffix(r.URL.Path, "/totalpurchaseamount"):
		_, _ = w.Write([]byte(`{"totalPurchaseAmount":80}`))
	case r.URL.Path == "/api/sales/getmonthly":
		_, _ = w.Write([]byte(`{"salesAmount":[1,2,3,4,5,6,7,8,9,10,11,12]}`))
	default:
		_, _ = w.Write([]byte(`[]`))
	}
}

// browser replays the partition cookie the way a real browser would.
type browser struct {
	t      *testing.T
	e      *echo.Echo
	cookie *http.Cookie
}

func (b *browser) do(method, target string, form url.Values) *httptest.ResponseRecorder {
	b.t.Helper()
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	req.Header.Set(echo.HeaderAccept, "text/html")
	if b.cookie != nil {
		req.AddCookie(b.cookie)
	}
	rec := httptest.NewRecorder()
	b.e.ServeHTTP(rec, req)

	for _, ck := range rec.Result().Cookies() {
		if ck.Name == "inv_sid" {
			b.cookie = ck
		}
	}
	return rec
}

func (b *browser) login(email string) {
	b.t.Helper()
	rec := b.do(http.MethodPost, "/login", url.Values{"email": {email}, "password": {"pw"}})
	require.Equal(b.t, http.StatusFound, rec.Code, rec.Body.String())
	require.Equal(b.t, "/", rec.Header().Get("Location"))
}

func newTestRouter(t *testing.T) (*echo.Echo, *fakeBackend) {
	t.Helper()

	fake := &fakeBackend{}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	box, err := seal.New("test-secret")
	require.NoError(t, err)
	renderer, err := view.NewRenderer()
	require.NoError(t, err)

	client := backend.New(backend.Config{BaseURL: srv.URL, Scheme: backend.SchemeBearer, Timeout: 2 * time.Second}, zerolog.Nop())
	store := session.NewStore(memory.NewKVStore(), box, time.Hour, zerolog.Nop())

	e := NewRouter(Deps{
		Log:      zerolog.Nop(),
		Renderer: renderer,
		Sessions: store,
		Cookie:   middleware.CookieConfig{Name: "inv_sid", MaxAge: time.Hour},
		Auth:     service.NewAuthService(client, true, zerolog.Nop()),
		Backend:  client,
		Ready:    map[string]handler.Pinger{"session_store": store},
	})
	return e, fake
}

func TestRouter_SignedOutIsSentToLogin(t *testing.T) {
	e, _ := newTestRouter(t)
	b := &browser{t: t, e: e}

	rec := b.do(http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
	require.NotNil(t, b.cookie, "partition cookie must be issued")
	assert.True(t, b.cookie.HttpOnly)

	rec = b.do(http.MethodGet, "/login", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `action="/login"`)
	assert.NotContains(t, rec.Body.String(), `id="side-menu"`)
}

func TestRouter_AdminGetsChromeAndFullTable(t *testing.T) {
	e, _ := newTestRouter(t)
	b := &browser{t: t, e: e}
	b.login("admin@example.com")

	rec := b.do(http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `id="dashboard-view"`)
	assert.Contains(t, body, `id="admin-header"`)
	assert.Contains(t, body, `id="side-menu"`)
	assert.Contains(t, body, "120.00")

	for _, path := range []string{"/inventory", "/purchase-details", "/sales", "/manage-store"} {
		rec := b.do(http.MethodGet, path, nil)
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestRouter_EmployeeGetsInventoryOnly(t *testing.T) {
	e, _ := newTestRouter(t)
	b := &browser{t: t, e: e}
	b.login("emp@example.com")

	rec := b.do(http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `id="inventory-view"`)
	assert.Contains(t, body, `id="employee-header"`)
	assert.NotContains(t, body, `id="side-menu"`)
	assert.Contains(t, body, "Steel Bolt")

	for _, path := range []string{"/inventory", "/sales", "/manage-store"} {
		rec := b.do(http.MethodGet, path, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
		assert.Contains(t, rec.Body.String(), `id="not-found-view"`, path)
	}

	rec = b.do(http.MethodPost, "/sales", url.Values{"productID": {"p1"}})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), `id="error-view"`)
}

func TestRouter_InvalidCredentialsStaySignedOut(t *testing.T) {
	e, _ := newTestRouter(t)
	b := &browser{t: t, e: e}

	rec := b.do(http.MethodPost, "/login", url.Values{"email": {"nobody@example.com"}, "password": {"pw"}})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid email or password.")

	rec = b.do(http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusFound, rec.Code)
}

func TestRouter_BackendRejectionSignsOut(t *testing.T) {
	e, fake := newTestRouter(t)
	b := &browser{t: t, e: e}
	b.login("emp@example.com")

	fake.revoked.Store(true)
	rec := b.do(http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	// The identity is gone for good, not just for one request.
	fake.revoked.Store(false)
	rec = b.do(http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}

func TestRouter_LogoutSwitchesTable(t *testing.T) {
	e, _ := newTestRouter(t)
	b := &browser{t: t, e: e}
	b.login("admin@example.com")

	rec := b.do(http.MethodPost, "/logout", nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)

	rec = b.do(http.MethodGet, "/sales", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = b.do(http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusFound, rec.Code)
}

func TestRouter_MutationWithoutSessionRedirects(t *testing.T) {
	e, _ := newTestRouter(t)
	b := &browser{t: t, e: e}

	rec := b.do(http.MethodPost, "/inventory/products", url.Values{"name": {"x"}})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}

func TestRouter_SessionAPI(t *testing.T) {
	e, _ := newTestRouter(t)
	b := &browser{t: t, e: e}
	b.login("admin@example.com")

	rec := b.do(http.MethodGet, "/api/session", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["authenticated"])
	assert.Equal(t, "u-admin", resp["subject_id"])
	assert.NotContains(t, rec.Body.String(), "tok-admin")

	rec = b.do(http.MethodPost, "/api/session/signout", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = b.do(http.MethodGet, "/api/session", nil)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, false, resp["authenticated"])
}

func TestRouter_LoginRotatesPartition(t *testing.T) {
	e, _ := newTestRouter(t)
	planted := &http.Cookie{Name: "inv_sid", Value: uuid.NewString()}
	b := &browser{t: t, e: e, cookie: planted}

	b.login("admin@example.com")
	require.NotNil(t, b.cookie)
	assert.NotEqual(t, planted.Value, b.cookie.Value)

	var resp map[string]any
	rec := b.do(http.MethodGet, "/api/session", nil)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["authenticated"])

	// Whoever still holds the pre-login cookie stays signed out.
	attacker := &browser{t: t, e: e, cookie: planted}
	rec = attacker.do(http.MethodGet, "/api/session", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp = nil
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, false, resp["authenticated"])
}

func TestRouter_TrailingSlashRedirects(t *testing.T) {
	e, _ := newTestRouter(t)
	b := &browser{t: t, e: e}

	rec := b.do(http.MethodGet, "/login/", nil)
	assert.Equal(t, http.StatusMovedPermanently, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}

func TestRouter_OpsEndpoints(t *testing.T) {
	e, _ := newTestRouter(t)
	b := &browser{t: t, e: e}

	rec := b.do(http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, b.cookie, "ops endpoints must not issue sessions")

	rec = b.do(http.MethodGet, "/health/ready", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	b.do(http.MethodGet, "/login", nil)
	rec = b.do(http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "inventory_web_http_requests_total")
	assert.Contains(t, rec.Body.String(), "inventory_web_session_loads_total")
}
