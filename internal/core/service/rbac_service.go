package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/saasportal/admin-api/internal/core/domain"
	"github.com/saasportal/admin-api/internal/core/ports"
)

// roleCatalog is the static role directory exposed by the RBAC endpoints.
var roleCatalog = map[domain.Role]struct {
	Name        string
	Description string
	Priority    int
}{
	domain.RoleAdmin:   {"Administrator", "Full system access with all permissions", 100},
	domain.RoleManager: {"Manager", "Team and user management capabilities", 75},
	domain.RoleUser:    {"User", "Standard user with basic access", 50},
	domain.RoleViewer:  {"Viewer", "Read-only access to basic features", 25},
}

// roleOrder fixes the presentation order of the catalog.
var roleOrder = []domain.Role{domain.RoleAdmin, domain.RoleManager, domain.RoleUser, domain.RoleViewer}

// RBACService exposes the role/permission catalog and role assignment with
// the same admin/self guards as direct user updates.
type RBACService struct {
	users  ports.UserRepository
	logger zerolog.Logger
}

func NewRBACService(users ports.UserRepository, logger zerolog.Logger) *RBACService {
	return &RBACService{users: users, logger: logger}
}

// Permissions returns the full capability catalog, grouped by area.
func (s *RBACService) Permissions() ports.PermissionCatalog {
	grouped := map[string][]domain.Permission{}
	for _, p := range domain.AllPermissions {
		area := "System"
		if i := strings.IndexByte(string(p), '.'); i > 0 {
			area = string(p[:i])
		}
		grouped[area] = append(grouped[area], p)
	}
	return ports.PermissionCatalog{
		Permissions: domain.AllPermissions,
		Grouped:     grouped,
		Total:       len(domain.AllPermissions),
	}
}

func roleInfo(key domain.Role) ports.RoleInfo {
	meta := roleCatalog[key]
	return ports.RoleInfo{
		Key:         key,
		Name:        meta.Name,
		Description: meta.Description,
		Permissions: domain.RolePermissions(key),
		Priority:    meta.Priority,
	}
}

// Roles lists the catalog with live per-role user counts for the tenant.
func (s *RBACService) Roles(ctx context.Context, tenant *domain.Tenant) ([]ports.RoleInfo, error) {
	counts, err := s.users.CountByRole(ctx, tenant.ID)
	if err != nil {
		return nil, err
	}

	roles := make([]ports.RoleInfo, 0, len(roleOrder))
	for _, key := range roleOrder {
		info := roleInfo(key)
		info.UserCount = counts[key]
		roles = append(roles, info)
	}
	return roles, nil
}

// Role returns one catalog entry plus its members.
func (s *RBACService) Role(ctx context.Context, tenant *domain.Tenant, key domain.Role) (*ports.RoleInfo, []*domain.User, error) {
	if _, ok := roleCatalog[key]; !ok {
		return nil, nil, domain.ErrRoleNotFound
	}

	users, total, err := s.users.FindByRole(ctx, tenant.ID, key, 1, 0)
	if err != nil {
		return nil, nil, err
	}

	info := roleInfo(key)
	info.UserCount = total
	return &info, users, nil
}

// UsersByRole returns one page of the role's members.
func (s *RBACService) UsersByRole(ctx context.Context, tenant *domain.Tenant, role domain.Role, page, limit int) (*ports.RolePage, error) {
	if _, ok := roleCatalog[role]; !ok {
		return nil, domain.ErrRoleNotFound
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	users, total, err := s.users.FindByRole(ctx, tenant.ID, role, page, limit)
	if err != nil {
		return nil, err
	}

	info := roleInfo(role)
	info.UserCount = total
	return &ports.RolePage{
		Role:       info,
		Users:      users,
		Pagination: buildPagination(page, limit, total),
	}, nil
}

// RolePermissions returns the effective permission list of a role. Admin
// resolves to the full catalog.
func (s *RBACService) RolePermissions(key domain.Role) (*ports.RoleInfo, []domain.Permission, error) {
	if _, ok := roleCatalog[key]; !ok {
		return nil, nil, domain.ErrRoleNotFound
	}
	info := roleInfo(key)
	return &info, domain.RolePermissions(key), nil
}

// AssignRole moves a user to the given role. Guard order matches user
// updates: permission, admin-only for admin assignment, admin-target, then
// self-demotion.
func (s *RBACService) AssignRole(ctx context.Context, actor *domain.User, tenant *domain.Tenant, userID string, role domain.Role) (*domain.User, error) {
	if !domain.ValidRole(role) {
		return nil, domain.ErrInvalidRole
	}
	if !actor.HasPermission(domain.PermUsersUpdate) {
		return nil, domain.ErrForbidden
	}
	if role == domain.RoleAdmin && actor.Role != domain.RoleAdmin {
		return nil, domain.ErrAdminTargetAdmin
	}

	user, err := s.users.FindByIDAndTenant(ctx, userID, tenant.ID)
	if err != nil {
		return nil, err
	}
	if user.Role == domain.RoleAdmin && actor.Role != domain.RoleAdmin {
		return nil, domain.ErrAdminTargetAdmin
	}
	if user.ID == actor.ID && user.Role == domain.RoleAdmin && role != domain.RoleAdmin {
		return nil, domain.ErrSelfRoleChange
	}

	oldRole := user.Role
	user.Role = role
	user.UpdatedBy = actor.ID
	user.UpdatedAt = time.Now().UTC()

	updated, err := s.users.Update(ctx, user)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("actor_id", actor.ID).
		Str("user_id", userID).
		Str("tenant_id", tenant.ID).
		Str("old_role", string(oldRole)).
		Str("new_role", string(role)).
		Msg("role assigned")
	return updated, nil
}

// RemoveRole resets a user to the default role.
func (s *RBACService) RemoveRole(ctx context.Context, actor *domain.User, tenant *domain.Tenant, userID string) (*domain.User, error) {
	if !actor.HasPermission(domain.PermUsersUpdate) {
		return nil, domain.ErrForbidden
	}

	user, err := s.users.FindByIDAndTenant(ctx, userID, tenant.ID)
	if err != nil {
		return nil, err
	}
	if user.Role == domain.RoleAdmin && actor.Role != domain.RoleAdmin {
		return nil, domain.ErrAdminTargetAdmin
	}
	if user.ID == actor.ID && user.Role == domain.RoleAdmin {
		return nil, domain.ErrSelfRoleChange
	}

	oldRole := user.Role
	user.Role = domain.RoleUser
	user.UpdatedBy = actor.ID
	user.UpdatedAt = time.Now().UTC()

	updated, err := s.users.Update(ctx, user)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("actor_id", actor.ID).
		Str("user_id", userID).
		Str("tenant_id", tenant.ID).
		Str("old_role", string(oldRole)).
		Msg("role removed")
	return updated, nil
}

// RoleStats returns the per-role status breakdown for the tenant, covering
// every catalog role even when empty.
func (s *RBACService) RoleStats(ctx context.Context, tenant *domain.Tenant) ([]ports.RoleStatusCount, error) {
	rows, err := s.users.RoleStats(ctx, tenant.ID)
	if err != nil {
		return nil, err
	}

	byRole := make(map[domain.Role]ports.RoleStatusCount, len(rows))
	for _, r := range rows {
		byRole[r.Role] = r
	}

	out := make([]ports.RoleStatusCount, 0, len(roleOrder))
	for _, key := range roleOrder {
		row, ok := byRole[key]
		if !ok {
			row = ports.RoleStatusCount{Role: key}
		}
		out = append(out, row)
	}
	return out, nil
}
