package ports

import (
	"context"

	"github.com/saasportal/admin-api/internal/core/domain"
)

// TenantRepository defines tenant-registry persistence.
type TenantRepository interface {
	Create(ctx context.Context, tenant *domain.Tenant) (*domain.Tenant, error)
	FindByID(ctx context.Context, id string) (*domain.Tenant, error)
	FindBySlug(ctx context.Context, slug string) (*domain.Tenant, error)
	FindByDomain(ctx context.Context, domainName string) (*domain.Tenant, error)

	// IncrementUsers atomically adjusts usage.users by delta (may be
	// negative; the counter never goes below zero). Paired 1:1 with user
	// creation and deletion so counts stay reconcilable.
	IncrementUsers(ctx context.Context, id string, delta int) error
}
