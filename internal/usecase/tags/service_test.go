package tags

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/kailas-cloud/learnscout/internal/db/memory"
	"github.com/kailas-cloud/learnscout/internal/domain"
	tagrepo "github.com/kailas-cloud/learnscout/internal/repository/tags"
)

func newService() *Service {
	return New(tagrepo.New(memory.New()))
}

func TestService_AddAndGet(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	got, err := svc.Add(ctx, "https://github.com/facebook/react", "  Front End  ")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got.Tags, []string{"front-end"}) {
		t.Errorf("tags = %v", got.Tags)
	}
	if len(got.Popular) != 0 {
		t.Errorf("a tag used once is not popular, got %v", got.Popular)
	}

	if _, err := svc.Add(ctx, "https://github.com/vuejs/vue", "front end"); err != nil {
		t.Fatal(err)
	}
	got, err = svc.Get(ctx, "https://github.com/facebook/react")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got.Popular, []string{"front-end"}) {
		t.Errorf("popular = %v", got.Popular)
	}
}

func TestService_AddTwiceCountsOnce(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	_, _ = svc.Add(ctx, "r1", "go")
	_, _ = svc.Add(ctx, "r1", "GO")

	popular, err := svc.Popular(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(popular) != 0 {
		t.Errorf("re-adding a tag must not inflate its count, got %v", popular)
	}
}

func TestService_Remove(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	_, _ = svc.Add(ctx, "r1", "go")
	_, _ = svc.Add(ctx, "r2", "go")

	got, err := svc.Remove(ctx, "r1", "go")
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Tags) != 0 {
		t.Errorf("tags = %v", got.Tags)
	}
	if got.Tags == nil {
		t.Error("expected empty, non-nil tag list")
	}
	if len(got.Popular) != 0 {
		t.Errorf("go is used once now, popular = %v", got.Popular)
	}

	if _, err := svc.Remove(ctx, "r1", "missing"); err != nil {
		t.Errorf("removing a missing tag must be a no-op, got %v", err)
	}
}

func TestService_PopularOrder(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	for _, r := range []string{"a", "b", "c"} {
		_, _ = svc.Add(ctx, r, "python")
	}
	for _, r := range []string{"a", "b"} {
		_, _ = svc.Add(ctx, r, "go")
		_, _ = svc.Add(ctx, r, "beginner")
	}
	_, _ = svc.Add(ctx, "a", "rare")

	popular, err := svc.Popular(ctx)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"python", "beginner", "go"}
	if !reflect.DeepEqual(popular, want) {
		t.Errorf("popular = %v, want %v", popular, want)
	}
}

func TestService_Validation(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	tests := []struct {
		name       string
		resourceID string
		tag        string
	}{
		{"empty tag", "r1", "   "},
		{"long tag", "r1", strings.Repeat("x", 41)},
		{"empty resource", "", "go"},
		{"long resource", strings.Repeat("r", 513), "go"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Add(ctx, tc.resourceID, tc.tag); !errors.Is(err, domain.ErrInvalidTag) {
				t.Errorf("expected ErrInvalidTag, got %v", err)
			}
		})
	}

	if _, err := svc.Get(ctx, ""); !errors.Is(err, domain.ErrInvalidTag) {
		t.Errorf("Get: expected ErrInvalidTag, got %v", err)
	}
}
