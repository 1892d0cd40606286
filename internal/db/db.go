package db

import (
	"context"
	"time"
)

// Store is the main database facade combining all sub-interfaces.
// Consumers depend on the narrow sub-interfaces.
type Store interface {
	Pinger
	KVStore
	SetStore
	HashStore
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// KVStore provides simple key-value operations.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	IncrBy(ctx context.Context, key string, val int64) error
	Expire(ctx context.Context, key string, ttl time.Duration, nx bool) error
}

// SetStore provides string sets whose members carry a usage count in a companion hash.
// SAddCounted and SRemCounted change the set and the count in one atomic step and
// report whether the member changed; a count that drops to zero is deleted.
type SetStore interface {
	SAddCounted(ctx context.Context, setKey, countKey, member string) (bool, error)
	SRemCounted(ctx context.Context, setKey, countKey, member string) (bool, error)
	SMembers(ctx context.Context, key string) ([]string, error)
}

// HashStore reads hash counters.
type HashStore interface {
	HGetAll(ctx context.Context, key string) (map[string]string, error)
}
