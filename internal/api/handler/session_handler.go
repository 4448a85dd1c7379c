package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/stockroom/inventory-web/internal/api/routes"
	"github.com/stockroom/inventory-web/internal/core/domain"
)

// SessionHandler exposes the browser's session as JSON for scripts on the
// page. The backend token never leaves the server.
type SessionHandler struct {
	auth Authenticator
}

func NewSessionHandler(auth Authenticator) *SessionHandler {
	return &SessionHandler{auth: auth}
}

type sessionResponse struct {
	Authenticated bool        `json:"authenticated"`
	SubjectID     string      `json:"subject_id,omitempty"`
	Role          domain.Role `json:"role,omitempty"`
	IsAdmin       bool        `json:"is_admin"`
	DisplayName   string      `json:"display_name,omitempty"`
	Email         string      `json:"email,omitempty"`
	Routes        []string    `json:"routes"`
}

type signOutResponse struct {
	Message string `json:"message"`
}

// Get returns the current session.
//
// @Summary      Current session
// @Description  Identity and reachable routes of the calling browser. Signed-out browsers get authenticated=false and the employee route table.
// @Tags         session
// @Produce      json
// @Success      200  {object}  sessionResponse
// @Router       /api/session [get]
func (h *SessionHandler) Get(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}

	resp := sessionResponse{IsAdmin: sess.IsAdmin()}
	if id, ok := sess.Identity(); ok {
		resp.Authenticated = true
		resp.SubjectID = id.SubjectID
		resp.Role = id.Role
		resp.DisplayName = id.DisplayName
		resp.Email = id.Email
	}
	for _, r := range routes.Select(sess.Role()).Routes() {
		resp.Routes = append(resp.Routes, r.Path)
	}
	return c.JSON(http.StatusOK, resp)
}

// SignOut clears the session.
//
// @Summary      Sign out
// @Tags         session
// @Produce      json
// @Success      200  {object}  signOutResponse
// @Failure      500  {object}  errorResponse
// @Router       /api/session/signout [post]
func (h *SessionHandler) SignOut(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}
	if err := h.auth.Logout(c.Request().Context(), sess); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, signOutResponse{Message: "signed out"})
}

// errorResponse documents the JSON error envelope.
type errorResponse struct {
	Error string `json:"error"`
}
