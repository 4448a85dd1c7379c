// Package session holds the signed-in identity of one browser: the persistent
// Store that survives between requests and the per-request Context every
// handler reads from.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/stockroom/inventory-web/internal/core/domain"
	"github.com/stockroom/inventory-web/internal/pkg/metrics"
)

// Context is the request-scoped view of a browser's session. It is created
// by the request root and handed down; descendants change it only through
// SignIn and SignOut.
type Context struct {
	store     *Store
	partition string
	log       zerolog.Logger

	once     sync.Once
	ready    bool
	identity *domain.Identity

	newPartition func() string
	onRotate     func(partition string)
}

// NewContext binds a Context to the given storage partition.
func NewContext(store *Store, partition string, log zerolog.Logger) *Context {
	return &Context{store: store, partition: partition, log: log, newPartition: uuid.NewString}
}

// OnRotate registers fn to run when SignIn moves the context to a fresh
// partition. The request root uses it to reissue the partition cookie.
func (c *Context) OnRotate(fn func(partition string)) {
	c.onRotate = fn
}

// Hydrate reads the store once. Later calls are no-ops. Any failure leaves the
// context signed out; the context is ready afterwards regardless.
func (c *Context) Hydrate(ctx context.Context) {
	c.once.Do(func() {
		defer func() { c.ready = true }()

		id, ok, err := c.store.Load(ctx, c.partition)
		if err != nil {
			c.log.Error().Err(err).Str("partition", c.partition).Msg("session hydration failed, treating as signed out")
			return
		}
		if ok {
			c.identity = &id
		}
	})
}

// Ready reports whether hydration has completed.
func (c *Context) Ready() bool {
	return c.ready
}

// Partition is the storage partition this context is bound to.
func (c *Context) Partition() string {
	return c.partition
}

// Identity returns the current identity, if any.
func (c *Context) Identity() (domain.Identity, bool) {
	if c.identity == nil {
		return domain.Identity{}, false
	}
	return *c.identity, true
}

// Authenticated reports whether an identity is present.
func (c *Context) Authenticated() bool {
	return c.identity != nil
}

// Role is the current role, or "" when signed out.
func (c *Context) Role() domain.Role {
	if c.identity == nil {
		return ""
	}
	return c.identity.Role
}

// IsAdmin reports role == admin.
func (c *Context) IsAdmin() bool {
	return c.Role() == domain.RoleAdmin
}

// Token is the backend bearer token, or "" when signed out.
func (c *Context) Token() string {
	if c.identity == nil {
		return ""
	}
	return c.identity.Token
}

// SignInOption adds optional fields to the identity being signed in.
type SignInOption func(*domain.Identity)

// WithToken attaches the backend bearer token and its expiry (zero if unknown).
func WithToken(token string, expiresAt time.Time) SignInOption {
	return func(id *domain.Identity) {
		id.Token = token
		id.ExpiresAt = expiresAt
	}
}

// WithProfile attaches display data shown in the navigation chrome.
func WithProfile(displayName, email, avatarURL string) SignInOption {
	return func(id *domain.Identity) {
		id.DisplayName = displayName
		id.Email = email
		id.AvatarURL = avatarURL
	}
}

// SignIn commits a new identity to memory and to the store, then runs
// onComplete. onComplete only runs after the write succeeded, so anything it
// triggers observes the new identity. If the write fails the previous state
// is restored and onComplete is not called.
//
// The identity is always written under a freshly generated partition and the
// old partition's record is removed, so a partition id known before sign-in
// never carries an authenticated identity.
func (c *Context) SignIn(ctx context.Context, subjectID string, role domain.Role, onComplete func() error, opts ...SignInOption) error {
	if subjectID == "" {
		return fmt.Errorf("sign in: %w", domain.ErrInvalidCredentials)
	}
	if !role.Valid() {
		return fmt.Errorf("sign in: %w", domain.ErrInvalidRole)
	}

	id := domain.Identity{SubjectID: subjectID, Role: role}
	for _, opt := range opts {
		opt(&id)
	}

	prev := c.identity
	next := c.newPartition()
	c.identity = &id
	if err := c.store.Save(ctx, next, id); err != nil {
		c.identity = prev
		return fmt.Errorf("sign in: %w", err)
	}
	c.ready = true

	old := c.partition
	c.partition = next
	if old != "" && old != next {
		if err := c.store.Clear(ctx, old); err != nil {
			c.log.Warn().Err(err).Str("partition", old).Msg("previous session partition not cleared")
		}
	}
	if c.onRotate != nil {
		c.onRotate(next)
	}

	metrics.SignInsTotal.WithLabelValues(string(role)).Inc()
	c.log.Info().Str("subject_id", subjectID).Str("role", string(role)).Msg("signed in")

	if onComplete == nil {
		return nil
	}
	return onComplete()
}

// SignOut clears memory and store. It does not navigate. Memory is cleared
// even when the store write fails.
func (c *Context) SignOut(ctx context.Context) error {
	if c.identity != nil {
		c.log.Info().Str("subject_id", c.identity.SubjectID).Msg("signed out")
	}
	c.identity = nil
	if err := c.store.Clear(ctx, c.partition); err != nil {
		return fmt.Errorf("sign out: %w", err)
	}
	return nil
}
