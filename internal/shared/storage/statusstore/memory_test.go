package statusstore

import (
	"context"
	"testing"
	"time"
)

func TestMemoryStoreSetGet(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if err := store.Set(ctx, "k1", "v1", time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}

	val, found, err := store.Get(ctx, "k1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !found {
		t.Fatal("expected key to be found")
	}
	if val != "v1" {
		t.Fatalf("expected v1, got %q", val)
	}
}

func TestMemoryStoreMissingKey(t *testing.T) {
	store := NewMemoryStore()

	_, found, err := store.Get(context.Background(), "absent")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if found {
		t.Fatal("expected absent key to report not found")
	}
}

func TestMemoryStoreLastWriteWins(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if err := store.Set(ctx, "k", "first", time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := store.Set(ctx, "k", "second", time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}

	val, found, err := store.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !found || val != "second" {
		t.Fatalf("expected second write to win, got found=%v val=%q", found, val)
	}
}

func TestMemoryStoreExpiry(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	current := time.Now()
	store.now = func() time.Time { return current }

	if err := store.Set(ctx, "k", "v", time.Second); err != nil {
		t.Fatalf("Set: %v", err)
	}

	current = current.Add(2 * time.Second)

	_, found, err := store.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if found {
		t.Fatal("expected expired entry to report not found")
	}
}
