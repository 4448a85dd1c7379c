package domain

import (
	"strings"
	"time"
)

// Role is the authorization level of a signed-in actor.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleEmployee Role = "employee"
)

// ParseRole accepts only the two known roles. An empty string yields
// ErrInvalidRole like any other unknown value; callers that want the
// employee fallback apply it explicitly.
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleEmployee:
		return RoleEmployee, nil
	}
	return "", ErrInvalidRole
}

// Valid reports whether r is one of the enum values.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleEmployee
}

// Identity is the minimal signed-in user record tracked per browser.
type Identity struct {
	SubjectID   string
	Role        Role
	DisplayName string
	Email       string
	AvatarURL   string

	// Token is the bearer credential issued by the backend at login, if any.
	Token     string
	ExpiresAt time.Time
}

// IsAdmin reports whether the identity carries the admin role.
func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

// BackendUser is the user object returned by the backend on login and
// registration. The backend has served both "id" and "_id" over time.
type BackendUser struct {
	ID          string `json:"id,omitempty"`
	MongoID     string `json:"_id,omitempty"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
	ImageURL    string `json:"imageUrl,omitempty"`
	Role        string `json:"role"`
}

// SubjectID returns whichever identifier the backend populated.
func (u BackendUser) SubjectID() string {
	if u.ID != "" {
		return u.ID
	}
	return u.MongoID
}

// DisplayName joins first and last name.
func (u BackendUser) DisplayName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// LoginResult is the backend response to a successful login.
type LoginResult struct {
	Token string      `json:"token,omitempty"`
	User  BackendUser `json:"user"`
}

// Registration carries the fields of the public sign-up form.
type Registration struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	PhoneNumber string `json:"phoneNumber"`
	ImageURL    string `json:"imageUrl,omitempty"`
}
