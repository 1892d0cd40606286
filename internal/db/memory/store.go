// Package memory is a process-local db.Store for single-instance deployments and tests.
package memory

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/kailas-cloud/learnscout/internal/db"
)

// Compile-time check: Store implements db.Store.
var _ db.Store = (*Store)(nil)

type entry struct {
	value   []byte
	expires time.Time
}

// Store keeps keys, sets and hashes in maps guarded by one mutex.
// Expired keys are dropped lazily on access.
type Store struct {
	mu     sync.Mutex
	kv     map[string]entry
	sets   map[string]map[string]struct{}
	hashes map[string]map[string]int64
	now    func() time.Time
}

// New creates an empty store.
func New() *Store {
	return &Store{
		kv:     make(map[string]entry),
		sets:   make(map[string]map[string]struct{}),
		hashes: make(map[string]map[string]int64),
		now:    time.Now,
	}
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }

// Close is a no-op.
func (s *Store) Close() {}

// WaitForReady returns immediately.
func (s *Store) WaitForReady(context.Context, time.Duration) error { return nil }

// Get returns the value of a live key.
func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.live(key)
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	out := make([]byte, len(e.value))
	copy(out, e.value)
	return out, nil
}

// SetWithTTL stores a value; a non-positive ttl never expires.
func (s *Store) SetWithTTL(_ context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := entry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		e.expires = s.now().Add(ttl)
	}
	s.kv[key] = e
	return nil
}

// IncrBy adds val to an integer key, creating it at zero.
func (s *Store) IncrBy(_ context.Context, key string, val int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, _ := s.live(key)
	var cur int64
	if len(e.value) > 0 {
		n, err := strconv.ParseInt(string(e.value), 10, 64)
		if err != nil {
			return &db.Error{Op: db.OpIncrBy, Err: err}
		}
		cur = n
	}
	e.value = []byte(strconv.FormatInt(cur+val, 10))
	s.kv[key] = e
	return nil
}

// Expire sets a key's TTL. With nx, keys that already expire are left alone.
func (s *Store) Expire(_ context.Context, key string, ttl time.Duration, nx bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.live(key)
	if !ok || (nx && !e.expires.IsZero()) {
		return nil
	}
	e.expires = s.now().Add(ttl)
	s.kv[key] = e
	return nil
}

// SAddCounted adds member to the set and, when it was new, increments its count.
func (s *Store) SAddCounted(_ context.Context, setKey, countKey, member string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	set, ok := s.sets[setKey]
	if !ok {
		set = make(map[string]struct{})
		s.sets[setKey] = set
	}
	if _, dup := set[member]; dup {
		return false, nil
	}
	set[member] = struct{}{}

	h, ok := s.hashes[countKey]
	if !ok {
		h = make(map[string]int64)
		s.hashes[countKey] = h
	}
	h[member]++
	return true, nil
}

// SRemCounted removes member from the set and, when it was present, decrements its count.
func (s *Store) SRemCounted(_ context.Context, setKey, countKey, member string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	set := s.sets[setKey]
	if _, ok := set[member]; !ok {
		return false, nil
	}
	delete(set, member)
	if len(set) == 0 {
		delete(s.sets, setKey)
	}

	if h := s.hashes[countKey]; h != nil {
		h[member]--
		if h[member] <= 0 {
			delete(h, member)
		}
		if len(h) == 0 {
			delete(s.hashes, countKey)
		}
	}
	return true, nil
}

// SMembers returns the members of a set in no particular order.
func (s *Store) SMembers(_ context.Context, key string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	set := s.sets[key]
	out := make([]string, 0, len(set))
	for m := range set {
		out = append(out, m)
	}
	return out, nil
}

// HGetAll returns a copy of a hash with values rendered as decimal strings.
func (s *Store) HGetAll(_ context.Context, key string) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h := s.hashes[key]
	out := make(map[string]string, len(h))
	for f, v := range h {
		out[f] = strconv.FormatInt(v, 10)
	}
	return out, nil
}

// live returns a key's entry, deleting it if expired. Caller holds mu.
func (s *Store) live(key string) (entry, bool) {
	e, ok := s.kv[key]
	if !ok {
		return entry{}, false
	}
	if !e.expires.IsZero() && !s.now().Before(e.expires) {
		delete(s.kv, key)
		return entry{}, false
	}
	return e, true
}
