package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/stockroom/inventory-web/internal/core/domain"
	"github.com/stockroom/inventory-web/internal/core/ports"
	"github.com/stockroom/inventory-web/internal/core/session"
	"github.com/stockroom/inventory-web/internal/pkg/metrics"
)

// AuthService signs browsers in and out against the backend's public
// authentication endpoints.
type AuthService struct {
	gateway      ports.AuthGateway
	requireToken bool
	log          zerolog.Logger
}

// NewAuthService wires the service. requireToken is set under the bearer
// scheme, where a login without a token would leave the session unusable.
func NewAuthService(gateway ports.AuthGateway, requireToken bool, log zerolog.Logger) *AuthService {
	return &AuthService{gateway: gateway, requireToken: requireToken, log: log}
}

// Login verifies credentials with the backend and commits the resulting
// identity to sess. onComplete runs only after the identity is persisted.
func (s *AuthService) Login(ctx context.Context, sess *session.Context, email, password string, onComplete func() error) error {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return domain.ErrInvalidCredentials
	}

	res, err := s.gateway.Login(ctx, email, password)
	if err != nil {
		return err
	}

	role := domain.RoleEmployee
	if res.User.Role != "" {
		if role, err = domain.ParseRole(res.User.Role); err != nil {
			s.log.Warn().Str("role", res.User.Role).Msg("backend returned unknown role")
			return err
		}
	}

	if s.requireToken && res.Token == "" {
		return domain.ErrTokenMissing
	}

	return sess.SignIn(ctx, res.User.SubjectID(), role, onComplete,
		session.WithToken(res.Token, tokenExpiry(res.Token)),
		session.WithProfile(res.User.DisplayName(), res.User.Email, res.User.ImageURL),
	)
}

// Register creates a backend account. It does not sign the browser in.
func (s *AuthService) Register(ctx context.Context, reg domain.Registration) (*domain.BackendUser, error) {
	reg.FirstName = strings.TrimSpace(reg.FirstName)
	reg.LastName = strings.TrimSpace(reg.LastName)
	reg.Email = strings.TrimSpace(reg.Email)
	reg.PhoneNumber = strings.TrimSpace(reg.PhoneNumber)
	reg.ImageURL = strings.TrimSpace(reg.ImageURL)

	if reg.Email == "" || reg.Password == "" || reg.FirstName == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.gateway.Register(ctx, reg)
	if err != nil {
		return nil, fmt.Errorf("register %s: %w", reg.Email, err)
	}
	return user, nil
}

// Logout clears sess. It never calls the backend.
func (s *AuthService) Logout(ctx context.Context, sess *session.Context) error {
	metrics.SignOutsTotal.WithLabelValues("user").Inc()
	return sess.SignOut(ctx)
}

// tokenExpiry reads the exp claim without verifying the signature; the
// backend owns the signing key and remains the judge of validity. A token
// that is not a JWT or carries no exp yields the zero time.
func tokenExpiry(token string) time.Time {
	if token == "" {
		return time.Time{}
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}
