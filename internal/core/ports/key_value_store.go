package ports

import (
	"context"
	"time"
)

// KeyValueStore is the durable per-partition storage the session store writes
// through. Get reports a missing key with ok == false, never with an error.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
}
