package ports

import (
	"context"
	"time"

	"github.com/saasportal/admin-api/internal/core/domain"
)

// TokenKind selects which single-use token field a lookup targets.
type TokenKind string

const (
	TokenPasswordReset     TokenKind = "password_reset"
	TokenEmailVerification TokenKind = "email_verification"
	TokenInvitation        TokenKind = "invitation"
)

// ListUsersFilter captures the query surface of the user list endpoint.
type ListUsersFilter struct {
	Search     string
	Role       domain.Role
	Status     domain.UserStatus
	Department string
	SortBy     string
	SortDesc   bool
	Page       int
	Limit      int
}

// UserStats are grouped counts over a tenant's users.
type UserStats struct {
	Total    int64 `json:"total_users"`
	Active   int64 `json:"active_users"`
	Pending  int64 `json:"pending_users"`
	Inactive int64 `json:"inactive_users"`
	Admins   int64 `json:"admin_users"`
	Managers int64 `json:"manager_users"`
	Regular  int64 `json:"regular_users"`
}

// RoleStatusCount is one row of the per-role breakdown used by role stats.
type RoleStatusCount struct {
	Role    domain.Role `json:"role"`
	Total   int64       `json:"total_users"`
	Active  int64       `json:"active_users"`
	Pending int64       `json:"pending_users"`
}

// BulkSet is the field set applied by bulk update actions.
type BulkSet struct {
	Status    domain.UserStatus
	Role      domain.Role
	UpdatedBy string
}

// UserRepository defines credential-store persistence. Every tenant-scoped
// method filters by tenant id inside the query itself; a cross-tenant id
// simply does not match and surfaces as ErrUserNotFound.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByIDAndTenant(ctx context.Context, id, tenantID string) (*domain.User, error)
	FindByEmailAndTenant(ctx context.Context, email, tenantID string) (*domain.User, error)

	// FindByTokenHash locates the user holding an unexpired single-use token
	// hash of the given kind. Unauthenticated flows (reset, verify, accept
	// invitation) have no tenant context, so the lookup is global.
	FindByTokenHash(ctx context.Context, kind TokenKind, hash string, now time.Time) (*domain.User, error)

	// Update persists the full mutable state of the user document.
	Update(ctx context.Context, user *domain.User) (*domain.User, error)

	// TouchActivity records last-activity best-effort; callers ignore errors.
	TouchActivity(ctx context.Context, id string, at time.Time) error

	Delete(ctx context.Context, id, tenantID string) error
	DeleteMany(ctx context.Context, ids []string, tenantID string) (int64, error)
	UpdateMany(ctx context.Context, ids []string, tenantID string, set BulkSet) (int64, error)

	// CountAdmins counts admins among ids within the tenant, for bulk-action
	// admin-target checks.
	CountAdmins(ctx context.Context, ids []string, tenantID string) (int64, error)

	List(ctx context.Context, tenantID string, filter ListUsersFilter) ([]*domain.User, int64, error)
	FindByRole(ctx context.Context, tenantID string, role domain.Role, page, limit int) ([]*domain.User, int64, error)
	Stats(ctx context.Context, tenantID string) (*UserStats, error)
	CountByRole(ctx context.Context, tenantID string) (map[domain.Role]int64, error)
	RoleStats(ctx context.Context, tenantID string) ([]RoleStatusCount, error)
}
