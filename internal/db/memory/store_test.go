package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/kailas-cloud/learnscout/internal/db"
)

func TestKV_GetSet(t *testing.T) {
	s := New()
	ctx := context.Background()

	if _, err := s.Get(ctx, "missing"); !errors.Is(err, db.ErrKeyNotFound) {
		t.Fatalf("expected ErrKeyNotFound, got %v", err)
	}
	if err := s.SetWithTTL(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatal(err)
	}
	got, err := s.Get(ctx, "k")
	if err != nil || string(got) != "v" {
		t.Fatalf("Get = %q, %v", got, err)
	}
}

func TestKV_TTL(t *testing.T) {
	now := time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC)
	s := New()
	s.now = func() time.Time { return now }
	ctx := context.Background()

	_ = s.SetWithTTL(ctx, "k", []byte("v"), time.Minute)
	now = now.Add(59 * time.Second)
	if _, err := s.Get(ctx, "k"); err != nil {
		t.Fatalf("expected live key, got %v", err)
	}
	now = now.Add(time.Second)
	if _, err := s.Get(ctx, "k"); !errors.Is(err, db.ErrKeyNotFound) {
		t.Fatalf("expected expired key, got %v", err)
	}
}

func TestKV_IncrByAndExpireNX(t *testing.T) {
	now := time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC)
	s := New()
	s.now = func() time.Time { return now }
	ctx := context.Background()

	_ = s.IncrBy(ctx, "c", 5)
	_ = s.IncrBy(ctx, "c", 7)
	_ = s.Expire(ctx, "c", time.Hour, true)
	_ = s.Expire(ctx, "c", 48*time.Hour, true) // ignored: already has TTL

	got, _ := s.Get(ctx, "c")
	if string(got) != "12" {
		t.Fatalf("expected 12, got %s", got)
	}

	now = now.Add(time.Hour)
	if _, err := s.Get(ctx, "c"); !errors.Is(err, db.ErrKeyNotFound) {
		t.Fatal("NX expire must keep the first TTL")
	}
}

func TestCountedSets(t *testing.T) {
	s := New()
	ctx := context.Background()

	for _, step := range []struct {
		add     bool
		set     string
		member  string
		changed bool
	}{
		{true, "s1", "react", true},
		{true, "s1", "react", false},
		{true, "s2", "react", true},
		{true, "s1", "go", true},
		{false, "s1", "rust", false},
		{false, "s1", "go", true},
	} {
		var changed bool
		if step.add {
			changed, _ = s.SAddCounted(ctx, step.set, "h", step.member)
		} else {
			changed, _ = s.SRemCounted(ctx, step.set, "h", step.member)
		}
		if changed != step.changed {
			t.Errorf("add=%v %s/%s: changed = %v, want %v", step.add, step.set, step.member, changed, step.changed)
		}
	}

	members, _ := s.SMembers(ctx, "s1")
	if len(members) != 1 || members[0] != "react" {
		t.Errorf("unexpected members %v", members)
	}
	m, _ := s.HGetAll(ctx, "h")
	if len(m) != 1 || m["react"] != "2" {
		t.Errorf("unexpected counts %v, want react=2 and go dropped", m)
	}
}

func TestConcurrentSAddCounted(t *testing.T) {
	s := New()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.SAddCounted(ctx, "s", "h", string(rune('a'+i%26)))
		}()
	}
	wg.Wait()

	members, _ := s.SMembers(ctx, "s")
	sort.Strings(members)
	if len(members) != 26 {
		t.Errorf("expected 26 members, got %d", len(members))
	}
	m, _ := s.HGetAll(ctx, "h")
	for _, member := range members {
		if m[member] != "1" {
			t.Errorf("count of %s = %q, want 1", member, m[member])
		}
	}
}
