package queue

import (
	"context"
	"hash/fnv"

	"github.com/rs/zerolog"

	"github.com/saasportal/admin-api/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// AuditDispatcher moves audit writes off the request path. Entries are routed
// to a fixed set of workers using consistent hashing on the tenant id,
// guaranteeing per-tenant ordering of the audit trail.
type AuditDispatcher struct {
	workers  []chan ports.AuditEntry
	recorder ports.AuditRecorder
	log      zerolog.Logger
}

// NewAuditDispatcher creates a dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewAuditDispatcher(numWorkers int, recorder ports.AuditRecorder, log zerolog.Logger) *AuditDispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &AuditDispatcher{
		workers:  make([]chan ports.AuditEntry, numWorkers),
		recorder: recorder,
		log:      log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.AuditEntry, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *AuditDispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Record hands the entry to the worker responsible for its tenant and returns
// immediately. When the worker's buffer is full the entry is dropped with a
// warning rather than stalling the request.
func (d *AuditDispatcher) Record(_ context.Context, entry ports.AuditEntry) error {
	ch := d.workers[d.shardIndex(entry.TenantID)]
	select {
	case ch <- entry:
	default:
		d.log.Warn().
			Str("tenant_id", entry.TenantID).
			Str("action", entry.Action).
			Msg("audit queue full, entry dropped")
	}
	return nil
}

// shardIndex maps a tenant id deterministically to a worker index.
func (d *AuditDispatcher) shardIndex(tenantID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(tenantID))
	return int(h.Sum32()) % len(d.workers)
}

func (d *AuditDispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.AuditEntry) {
	for {
		select {
		case <-ctx.Done():
			return
		case entry, ok := <-ch:
			if !ok {
				return
			}
			if err := d.recorder.Record(ctx, entry); err != nil {
				d.log.Error().Err(err).
					Str("tenant_id", entry.TenantID).
					Str("action", entry.Action).
					Int("worker_id", id).
					Msg("audit write failed")
			}
		}
	}
}
