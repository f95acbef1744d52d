package queue

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/saasportal/admin-api/internal/core/ports"
)

type captureRecorder struct {
	mu      sync.Mutex
	entries []ports.AuditEntry
}

func (r *captureRecorder) Record(_ context.Context, entry ports.AuditEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
	return nil
}

func (r *captureRecorder) snapshot() []ports.AuditEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]ports.AuditEntry, len(r.entries))
	copy(out, r.entries)
	return out
}

func waitFor(t *testing.T, deadline time.Duration, cond func() bool) {
	t.Helper()
	start := time.Now()
	for time.Since(start) < deadline {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met within %s", deadline)
}

func TestAuditDispatcher_DeliversEntries(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rec := &captureRecorder{}
	d := NewAuditDispatcher(2, rec, zerolog.Nop())
	d.Start(ctx)

	for i := 0; i < 10; i++ {
		if err := d.Record(ctx, ports.AuditEntry{TenantID: "t1", Action: "user.create"}); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	waitFor(t, time.Second, func() bool { return len(rec.snapshot()) == 10 })
}

func TestAuditDispatcher_PerTenantOrdering(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rec := &captureRecorder{}
	d := NewAuditDispatcher(4, rec, zerolog.Nop())
	d.Start(ctx)

	const n = 50
	for i := 0; i < n; i++ {
		_ = d.Record(ctx, ports.AuditEntry{TenantID: "t1", TargetID: string(rune('a' + i%26)), Timestamp: time.Unix(int64(i), 0)})
	}

	waitFor(t, time.Second, func() bool { return len(rec.snapshot()) == n })

	entries := rec.snapshot()
	for i := 1; i < len(entries); i++ {
		if entries[i].Timestamp.Before(entries[i-1].Timestamp) {
			t.Fatalf("entries for one tenant arrived out of order at %d", i)
		}
	}
}

func TestAuditDispatcher_FullQueueDoesNotBlock(t *testing.T) {
	// Workers never started, so the buffers fill up and overflow is dropped.
	rec := &captureRecorder{}
	d := NewAuditDispatcher(1, rec, zerolog.Nop())

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < channelBuffer+10; i++ {
			_ = d.Record(context.Background(), ports.AuditEntry{TenantID: "t1"})
		}
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("Record blocked on a full queue")
	}
}
