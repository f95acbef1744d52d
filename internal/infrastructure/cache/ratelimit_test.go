package cache

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestRateLimitStore_CountsWithinWindow(t *testing.T) {
	store := NewRateLimitStore()
	ctx := context.Background()

	for want := int64(1); want <= 3; want++ {
		got, err := store.Incr(ctx, "k1", time.Minute)
		if err != nil {
			t.Fatalf("incr: %v", err)
		}
		if got != want {
			t.Fatalf("expected count %d, got %d", want, got)
		}
	}
}

func TestRateLimitStore_KeysAreIndependent(t *testing.T) {
	store := NewRateLimitStore()
	ctx := context.Background()

	if _, err := store.Incr(ctx, "a", time.Minute); err != nil {
		t.Fatalf("incr a: %v", err)
	}
	got, err := store.Incr(ctx, "b", time.Minute)
	if err != nil {
		t.Fatalf("incr b: %v", err)
	}
	if got != 1 {
		t.Fatalf("key b must start at 1, got %d", got)
	}
}

func TestRateLimitStore_WindowResets(t *testing.T) {
	store := NewRateLimitStore()
	ctx := context.Background()

	if _, err := store.Incr(ctx, "k", 30*time.Millisecond); err != nil {
		t.Fatalf("incr: %v", err)
	}
	if _, err := store.Incr(ctx, "k", 30*time.Millisecond); err != nil {
		t.Fatalf("incr: %v", err)
	}

	time.Sleep(50 * time.Millisecond)

	got, err := store.Incr(ctx, "k", 30*time.Millisecond)
	if err != nil {
		t.Fatalf("incr: %v", err)
	}
	if got != 1 {
		t.Fatalf("count must restart after the window, got %d", got)
	}
}

func TestRateLimitStore_ConcurrentIncrements(t *testing.T) {
	store := NewRateLimitStore()
	ctx := context.Background()

	const goroutines = 20
	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			if _, err := store.Incr(ctx, "shared", time.Minute); err != nil {
				t.Errorf("incr: %v", err)
			}
		}()
	}
	wg.Wait()

	got, err := store.Incr(ctx, "shared", time.Minute)
	if err != nil {
		t.Fatalf("incr: %v", err)
	}
	if got != goroutines+1 {
		t.Fatalf("expected %d, got %d", goroutines+1, got)
	}
}
