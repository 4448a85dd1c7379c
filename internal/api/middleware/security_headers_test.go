package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSecurityHeaders(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	handler := SecurityHeaders(nil)(func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	require.NoError(t, handler(c))

	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Contains(t, rec.Header().Get("Content-Security-Policy"), "frame-ancestors 'none'")
	assert.Contains(t, rec.Header().Get("Cache-Control"), "no-store")
}

func TestSecurityHeaders_Skipper(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/swagger/index.html", nil), rec)

	skip := func(c echo.Context) bool { return strings.HasPrefix(c.Request().URL.Path, "/swagger") }
	handler := SecurityHeaders(skip)(func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	require.NoError(t, handler(c))

	assert.Empty(t, rec.Header().Get("Content-Security-Policy"))
}
