package ports

import (
	"context"

	"github.com/saasportal/admin-api/internal/core/domain"
)

// RoleInfo describes one role of the static catalog, with its live user
// count for the tenant.
type RoleInfo struct {
	Key         domain.Role         `json:"key"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Permissions []domain.Permission `json:"permissions"`
	Priority    int                 `json:"priority"`
	UserCount   int64               `json:"user_count"`
}

// PermissionCatalog is the full capability list, grouped by area for the UI.
type PermissionCatalog struct {
	Permissions []domain.Permission            `json:"permissions"`
	Grouped     map[string][]domain.Permission `json:"grouped_permissions"`
	Total       int                            `json:"total"`
}

// RolePage pairs a role with a page of its members.
type RolePage struct {
	Role       RoleInfo       `json:"role"`
	Users      []*domain.User `json:"users"`
	Pagination Pagination     `json:"pagination"`
}

// RBACService exposes the role/permission catalog and role assignment.
type RBACService interface {
	Permissions() PermissionCatalog
	Roles(ctx context.Context, tenant *domain.Tenant) ([]RoleInfo, error)
	Role(ctx context.Context, tenant *domain.Tenant, key domain.Role) (*RoleInfo, []*domain.User, error)
	UsersByRole(ctx context.Context, tenant *domain.Tenant, role domain.Role, page, limit int) (*RolePage, error)
	RolePermissions(key domain.Role) (*RoleInfo, []domain.Permission, error)
	AssignRole(ctx context.Context, actor *domain.User, tenant *domain.Tenant, userID string, role domain.Role) (*domain.User, error)
	RemoveRole(ctx context.Context, actor *domain.User, tenant *domain.Tenant, userID string) (*domain.User, error)
	RoleStats(ctx context.Context, tenant *domain.Tenant) ([]RoleStatusCount, error)
}
