package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/stockroom/inventory-web/internal/core/session"
)

const sessionKey = "session"

// CookieConfig controls the partition cookie.
type CookieConfig struct {
	Name   string
	Secure bool
	MaxAge time.Duration
}

// Session gives every request its own Session Context bound to the browser's
// partition cookie, issuing a fresh partition id when the cookie is missing
// or malformed. The context is hydrated before the next handler runs.
func Session(store *session.Store, cfg CookieConfig, log zerolog.Logger) echo.MiddlewareFunc {
	if cfg.Name == "" {
		cfg.Name = "inv_sid"
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			partition := ""
			if ck, err := c.Cookie(cfg.Name); err == nil {
				if id, err := uuid.Parse(ck.Value); err == nil {
					partition = id.String()
				}
			}
			if partition == "" {
				partition = uuid.NewString()
				c.SetCookie(partitionCookie(cfg, partition))
			}

			reqLog := log.With().Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).Logger()
			sess := session.NewContext(store, partition, reqLog)
			sess.OnRotate(func(p string) {
				c.SetCookie(partitionCookie(cfg, p))
			})
			sess.Hydrate(c.Request().Context())

			c.Set(sessionKey, sess)
			return next(c)
		}
	}
}

func partitionCookie(cfg CookieConfig, partition string) *http.Cookie {
	return &http.Cookie{
		Name:     cfg.Name,
		Value:    partition,
		Path:     "/",
		MaxAge:   int(cfg.MaxAge.Seconds()),
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// SessionFrom returns the request's Session Context, or nil when the Session
// middleware did not run.
func SessionFrom(c echo.Context) *session.Context {
	sess, _ := c.Get(sessionKey).(*session.Context)
	return sess
}

// WithSession attaches sess to c. Tests use it to skip the cookie round trip.
func WithSession(c echo.Context, sess *session.Context) {
	c.Set(sessionKey, sess)
}
