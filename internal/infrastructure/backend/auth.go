package backend

import (
	"context"
	"errors"
	"net/http"

	"github.com/stockroom/inventory-web/internal/core/domain"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login exchanges credentials for the backend user and, under the bearer
// scheme, a token. Rejected credentials map to domain.ErrInvalidCredentials.
func (c *Client) Login(ctx context.Context, email, password string) (*domain.LoginResult, error) {
	var out domain.LoginResult
	status, err := c.do(ctx, http.MethodPost, "/api/login", nil, loginRequest{Email: email, Password: password}, &out)
	if err != nil {
		switch status {
		case http.StatusBadRequest, http.StatusUnauthorized, http.StatusNotFound:
			return nil, withMessage(err, domain.ErrInvalidCredentials)
		}
		return nil, err
	}
	if out.User.SubjectID() == "" {
		return nil, &APIError{Status: status, Message: "login response carries no user id", Err: domain.ErrBackend}
	}
	return &out, nil
}

// Register creates an account. The backend answers 409 for a taken email.
func (c *Client) Register(ctx context.Context, reg domain.Registration) (*domain.BackendUser, error) {
	var out domain.BackendUser
	status, err := c.do(ctx, http.MethodPost, "/api/register", nil, reg, &out)
	if err != nil {
		if status == http.StatusConflict {
			return nil, withMessage(err, domain.ErrUserExists)
		}
		return nil, err
	}
	return &out, nil
}

// withMessage rewraps an *APIError around sentinel, keeping the server message.
func withMessage(err, sentinel error) error {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return &APIError{Status: apiErr.Status, Message: apiErr.Message, Err: sentinel}
	}
	return sentinel
}
