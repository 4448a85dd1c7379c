package middleware

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/stockroom/inventory-web/internal/core/domain"
	"github.com/stockroom/inventory-web/internal/core/session"
	"github.com/stockroom/inventory-web/internal/infrastructure/db/memory"
	"github.com/stockroom/inventory-web/internal/pkg/seal"
)

func newTestStore(t *testing.T) *session.Store {
	t.Helper()
	box, err := seal.New("secret")
	if err != nil {
		t.Fatalf("seal.New: %v", err)
	}
	return session.NewStore(memory.NewKVStore(), box, time.Hour, zerolog.Nop())
}

// hydratedSession returns a ready context, signed in as role unless role is empty.
func hydratedSession(t *testing.T, role domain.Role) *session.Context {
	t.Helper()
	sess := session.NewContext(newTestStore(t), "p1", zerolog.Nop())
	sess.Hydrate(context.Background())
	if role != "" {
		if err := sess.SignIn(context.Background(), "u1", role, nil); err != nil {
			t.Fatalf("sign in: %v", err)
		}
	}
	return sess
}
