package budget

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kailas-cloud/learnscout/internal/db"
	"github.com/kailas-cloud/learnscout/internal/db/memory"
)

type expireCall struct {
	key string
	ttl time.Duration
	nx  bool
}

type recordingStore struct {
	*memory.Store
	expires []expireCall
	getErr  error
}

func (r *recordingStore) Expire(ctx context.Context, key string, ttl time.Duration, nx bool) error {
	r.expires = append(r.expires, expireCall{key, ttl, nx})
	return r.Store.Expire(ctx, key, ttl, nx)
}

func (r *recordingStore) Get(ctx context.Context, key string) ([]byte, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	return r.Store.Get(ctx, key)
}

func TestStore_IncrByAndGet(t *testing.T) {
	rs := &recordingStore{Store: memory.New()}
	s := New(rs, 0, 0)
	ctx := context.Background()

	key := "learnscout:budget:openai:daily:2026-10-18"
	if err := s.IncrBy(ctx, key, 40); err != nil {
		t.Fatal(err)
	}
	if err := s.IncrBy(ctx, key, 2); err != nil {
		t.Fatal(err)
	}

	got, err := s.Get(ctx, key)
	if err != nil || got != 42 {
		t.Fatalf("Get = %d, %v; want 42", got, err)
	}
	if len(rs.expires) != 2 || !rs.expires[0].nx || rs.expires[0].ttl != DefaultDailyTTL {
		t.Errorf("unexpected expire calls: %+v", rs.expires)
	}
}

func TestStore_MonthlyTTL(t *testing.T) {
	rs := &recordingStore{Store: memory.New()}
	s := New(rs, time.Hour, 30*24*time.Hour)

	_ = s.IncrBy(context.Background(), "learnscout:budget:openai:monthly:2026-10", 1)
	if rs.expires[0].ttl != 30*24*time.Hour {
		t.Errorf("expected monthly TTL, got %v", rs.expires[0].ttl)
	}
}

func TestStore_GetMissingIsZero(t *testing.T) {
	s := New(memory.New(), 0, 0)
	got, err := s.Get(context.Background(), "nope")
	if err != nil || got != 0 {
		t.Fatalf("Get = %d, %v; want 0, nil", got, err)
	}
}

func TestStore_GetError(t *testing.T) {
	rs := &recordingStore{Store: memory.New(), getErr: &db.Error{Op: db.OpGet, Err: errors.New("conn reset")}}
	s := New(rs, 0, 0)
	if _, err := s.Get(context.Background(), "k"); err == nil {
		t.Fatal("expected error")
	}
}
