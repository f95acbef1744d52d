package ports

import (
	"context"
	"time"
)

// AuditEntry records one security-relevant action for the tenant's audit
// trail.
type AuditEntry struct {
	ID        string    `json:"id" bson:"_id"`
	TenantID  string    `json:"tenant_id" bson:"tenant_id"`
	ActorID   string    `json:"actor_id" bson:"actor_id"`
	Action    string    `json:"action" bson:"action"`
	TargetID  string    `json:"target_id,omitempty" bson:"target_id,omitempty"`
	IP        string    `json:"ip" bson:"ip"`
	UserAgent string    `json:"user_agent" bson:"user_agent"`
	Timestamp time.Time `json:"timestamp" bson:"timestamp"`
}

// AuditRecorder persists audit entries. Recording is best-effort: failures
// are logged, never surfaced to the request.
type AuditRecorder interface {
	Record(ctx context.Context, entry AuditEntry) error
}

// AuditReader serves the tenant's audit trail, newest first.
type AuditReader interface {
	Recent(ctx context.Context, tenantID string, limit int64) ([]AuditEntry, error)
}
