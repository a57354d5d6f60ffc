package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func TestRecent_TouchListRemove(t *testing.T) {
	ctx := context.Background()
	t.Setenv("PHICHAIN_CONFIG_DIR", t.TempDir())
	r, err := OpenRecent(ctx)
	if err != nil {
		t.Fatalf("OpenRecent: %v", err)
	}
	defer r.Close()

	clock := time.Unix(1_700_000_000, 0)
	r.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}

	a := filepath.Join(t.TempDir(), "a")
	b := filepath.Join(t.TempDir(), "b")
	if err := r.Touch(ctx, a, "A"); err != nil {
		t.Fatalf("Touch: %v", err)
	}
	if err := r.Touch(ctx, b, "B"); err != nil {
		t.Fatalf("Touch: %v", err)
	}
	list, err := r.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 || list[0].Name != "B" || list[1].Name != "A" {
		t.Fatalf("unexpected order %+v", list)
	}
	firstID := list[1].ID

	if err := r.Touch(ctx, a, "A renamed"); err != nil {
		t.Fatalf("Touch: %v", err)
	}
	list, err = r.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 || list[0].Name != "A renamed" || list[0].ID != firstID {
		t.Fatalf("re-touch should move A to the top and keep its id: %+v", list)
	}

	removed, err := r.Remove(ctx, b)
	if err != nil || !removed {
		t.Fatalf("Remove: %v %v", removed, err)
	}
	removed, err = r.Remove(ctx, b)
	if err != nil || removed {
		t.Fatalf("second Remove: %v %v", removed, err)
	}
	if err := r.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	list, err = r.List(ctx)
	if err != nil || len(list) != 0 {
		t.Fatalf("expected empty list, got %+v %v", list, err)
	}
}
