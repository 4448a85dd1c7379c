package domain

import "errors"

// Session and authentication errors.
var (
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidRole        = errors.New("invalid role")
	ErrTokenMissing       = errors.New("backend issued no token")
	ErrUserExists         = errors.New("user already exists")
)

// Backend errors.
var (
	ErrForbidden          = errors.New("access forbidden")
	ErrNotFound           = errors.New("resource not found")
	ErrBackend            = errors.New("backend request failed")
	ErrBackendUnavailable = errors.New("backend unavailable")
)

// ErrInvalidDialogTransition is returned by Dialog commands issued in the wrong state.
var ErrInvalidDialogTransition = errors.New("invalid dialog transition")
