package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/stockroom/inventory-web/internal/core/domain"
	"github.com/stockroom/inventory-web/internal/core/ports"
	"github.com/stockroom/inventory-web/internal/pkg/metrics"
)

const (
	keyPrefix  = "session:"
	defaultTTL = 24 * time.Hour
)

// ErrNoPartition is returned when a store operation has no partition key.
var ErrNoPartition = errors.New("session: empty partition")

// Sealer protects records at rest.
type Sealer interface {
	Seal(msg []byte) (string, error)
	Open(s string) ([]byte, error)
}

// record is the stored shape of an Identity.
type record struct {
	Subject   string `json:"sub"`
	Role      string `json:"role"`
	Token     string `json:"token,omitempty"`
	Name      string `json:"name,omitempty"`
	Email     string `json:"email,omitempty"`
	Avatar    string `json:"avatar,omitempty"`
	ExpiresAt int64  `json:"exp,omitempty"`
}

// Store persists one identity record per browser partition.
type Store struct {
	kv     ports.KeyValueStore
	sealer Sealer
	ttl    time.Duration
	log    zerolog.Logger
	now    func() time.Time
}

// NewStore wires a Store over kv. A non-positive ttl falls back to 24h.
func NewStore(kv ports.KeyValueStore, sealer Sealer, ttl time.Duration, log zerolog.Logger) *Store {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Store{kv: kv, sealer: sealer, ttl: ttl, log: log, now: time.Now}
}

// Save overwrites the partition's record with id.
func (s *Store) Save(ctx context.Context, partition string, id domain.Identity) error {
	if partition == "" {
		return ErrNoPartition
	}
	if id.SubjectID == "" || !id.Role.Valid() {
		return fmt.Errorf("save session: %w", domain.ErrInvalidRole)
	}

	ttl := s.ttl
	if !id.ExpiresAt.IsZero() {
		left := id.ExpiresAt.Sub(s.now())
		if left <= 0 {
			return fmt.Errorf("save session: %w", domain.ErrUnauthenticated)
		}
		ttl = min(ttl, left)
	}

	rec := record{
		Subject: id.SubjectID,
		Role:    string(id.Role),
		Token:   id.Token,
		Name:    id.DisplayName,
		Email:   id.Email,
		Avatar:  id.AvatarURL,
	}
	if !id.ExpiresAt.IsZero() {
		rec.ExpiresAt = id.ExpiresAt.Unix()
	}

	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	sealed, err := s.sealer.Seal(raw)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	if err := s.kv.Set(ctx, key(partition), sealed, ttl); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Load returns the partition's identity. A missing, expired or corrupt record
// is reported as ok == false; corrupt and expired records are deleted so they
// cannot fail again. err is only set when the underlying store is unreachable.
func (s *Store) Load(ctx context.Context, partition string) (domain.Identity, bool, error) {
	if partition == "" {
		metrics.SessionLoadsTotal.WithLabelValues("absent").Inc()
		return domain.Identity{}, false, nil
	}

	value, ok, err := s.kv.Get(ctx, key(partition))
	if err != nil {
		metrics.SessionLoadsTotal.WithLabelValues("error").Inc()
		return domain.Identity{}, false, fmt.Errorf("load session: %w", err)
	}
	if !ok {
		metrics.SessionLoadsTotal.WithLabelValues("absent").Inc()
		return domain.Identity{}, false, nil
	}

	id, err := s.decode(value)
	if err != nil {
		metrics.SessionLoadsTotal.WithLabelValues("corrupt").Inc()
		s.log.Warn().Err(err).Str("partition", partition).Msg("purging corrupt session record")
		s.purge(ctx, partition)
		return domain.Identity{}, false, nil
	}

	if !id.ExpiresAt.IsZero() && !s.now().Before(id.ExpiresAt) {
		metrics.SessionLoadsTotal.WithLabelValues("expired").Inc()
		s.purge(ctx, partition)
		return domain.Identity{}, false, nil
	}

	metrics.SessionLoadsTotal.WithLabelValues("present").Inc()
	return id, true, nil
}

// Clear removes everything the store owns for the partition.
func (s *Store) Clear(ctx context.Context, partition string) error {
	if partition == "" {
		return nil
	}
	if err := s.kv.Delete(ctx, key(partition)); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// Ping checks the backing store.
func (s *Store) Ping(ctx context.Context) error {
	return s.kv.Ping(ctx)
}

func (s *Store) decode(value string) (domain.Identity, error) {
	raw, err := s.sealer.Open(value)
	if err != nil {
		return domain.Identity{}, err
	}

	var rec record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return domain.Identity{}, fmt.Errorf("decode session: %w", err)
	}
	if rec.Subject == "" {
		return domain.Identity{}, errors.New("decode session: empty subject")
	}

	// Records written before roles existed carry none; they belong to employees.
	role := domain.RoleEmployee
	if rec.Role != "" {
		if role, err = domain.ParseRole(rec.Role); err != nil {
			return domain.Identity{}, fmt.Errorf("decode session: %w", err)
		}
	}

	id := domain.Identity{
		SubjectID:   rec.Subject,
		Role:        role,
		DisplayName: rec.Name,
		Email:       rec.Email,
		AvatarURL:   rec.Avatar,
		Token:       rec.Token,
	}
	if rec.ExpiresAt > 0 {
		id.ExpiresAt = time.Unix(rec.ExpiresAt, 0)
	}
	return id, nil
}

func (s *Store) purge(ctx context.Context, partition string) {
	if err := s.kv.Delete(ctx, key(partition)); err != nil {
		s.log.Error().Err(err).Str("partition", partition).Msg("failed to purge session record")
	}
}

func key(partition string) string {
	return keyPrefix + partition
}
