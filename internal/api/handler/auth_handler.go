package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/stockroom/inventory-web/internal/api/routes"
	"github.com/stockroom/inventory-web/internal/api/view"
	"github.com/stockroom/inventory-web/internal/core/domain"
	"github.com/stockroom/inventory-web/internal/core/session"
)

// Authenticator signs a browser's session in and out.
type Authenticator interface {
	Login(ctx context.Context, sess *session.Context, email, password string, onComplete func() error) error
	Register(ctx context.Context, reg domain.Registration) (*domain.BackendUser, error)
	Logout(ctx context.Context, sess *session.Context) error
}

type AuthHandler struct {
	auth Authenticator
	log  zerolog.Logger
}

func NewAuthHandler(auth Authenticator, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, log: log}
}

// ShowLogin renders the sign-in form. Signed-in visitors go home instead.
func (h *AuthHandler) ShowLogin(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}
	if sess.Authenticated() {
		return c.Redirect(http.StatusFound, "/")
	}
	return h.renderLogin(c, sess, http.StatusOK, loginForm{}, "")
}

// Login handles POST /login. Navigation happens in the completion callback,
// after the identity has been persisted, so the next request already sees it.
func (h *AuthHandler) Login(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}

	var form loginForm
	if err := c.Bind(&form); err != nil {
		return h.renderLogin(c, sess, http.StatusBadRequest, form, "Invalid form submission.")
	}
	if err := c.Validate(&form); err != nil {
		status, msg, known := Describe(err)
		if !known {
			h.log.Error().Err(err).Msg("login form validation failed")
		}
		return h.renderLogin(c, sess, status, form, msg)
	}

	err = h.auth.Login(c.Request().Context(), sess, form.Email, form.Password, func() error {
		return c.Redirect(http.StatusFound, "/")
	})
	if err != nil {
		status, msg, known := Describe(err)
		if !known {
			h.log.Error().Err(err).Msg("login failed")
		}
		return h.renderLogin(c, sess, status, form, msg)
	}
	return nil
}

// ShowRegister renders the sign-up form.
func (h *AuthHandler) ShowRegister(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}
	return h.renderRegister(c, sess, http.StatusOK, registerForm{}, "")
}

// Register handles POST /register and sends the visitor to sign in.
func (h *AuthHandler) Register(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}

	var form registerForm
	if err := c.Bind(&form); err != nil {
		return h.renderRegister(c, sess, http.StatusBadRequest, form, "Invalid form submission.")
	}
	if err := c.Validate(&form); err != nil {
		status, msg, known := Describe(err)
		if !known {
			h.log.Error().Err(err).Msg("registration form validation failed")
		}
		return h.renderRegister(c, sess, status, form, msg)
	}

	if _, err := h.auth.Register(c.Request().Context(), form.toDomain()); err != nil {
		status, msg, known := Describe(err)
		if !known {
			h.log.Error().Err(err).Msg("registration failed")
		}
		return h.renderRegister(c, sess, status, form, msg)
	}
	return c.Redirect(http.StatusSeeOther, "/login?notice=registered")
}

// Logout handles POST /logout.
func (h *AuthHandler) Logout(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}
	if err := h.auth.Logout(c.Request().Context(), sess); err != nil {
		h.log.Error().Err(err).Msg("failed to clear session store on logout")
	}
	return c.Redirect(http.StatusSeeOther, "/login?notice=signed-out")
}

func (h *AuthHandler) renderLogin(c echo.Context, sess *session.Context, status int, form loginForm, msg string) error {
	page := pageFor(c, sess, routes.ViewLogin)
	page.Error = msg
	page.Data = view.LoginData{Email: form.Email}
	return c.Render(status, view.TemplateLogin, page)
}

func (h *AuthHandler) renderRegister(c echo.Context, sess *session.Context, status int, form registerForm, msg string) error {
	page := pageFor(c, sess, routes.ViewRegister)
	page.Error = msg
	form.Password = ""
	page.Data = view.RegisterData{Form: form.toDomain()}
	return c.Render(status, view.TemplateRegister, page)
}
