package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/saasportal/admin-api/internal/core/domain"
)

type rbacFixture struct {
	*userFixture
	svc *RBACService
}

func newRBACFixture(t *testing.T) *rbacFixture {
	t.Helper()
	uf := newUserFixture(t)
	return &rbacFixture{
		userFixture: uf,
		svc:         NewRBACService(uf.users, zerolog.Nop()),
	}
}

func TestRBACService_Permissions(t *testing.T) {
	f := newRBACFixture(t)

	catalog := f.svc.Permissions()
	if catalog.Total != len(domain.AllPermissions) {
		t.Fatalf("expected %d permissions, got %d", len(domain.AllPermissions), catalog.Total)
	}
	users, ok := catalog.Grouped["users"]
	if !ok || len(users) == 0 {
		t.Fatalf("users group missing from catalog")
	}
	if _, ok := catalog.Grouped["System"]; !ok {
		t.Fatalf("dot-less permissions should fall into the System group")
	}
}

func TestRBACService_RolesWithCounts(t *testing.T) {
	f := newRBACFixture(t)
	f.seedManager(t, "mgr@acme.test")
	f.seedUser(t, "plain@acme.test", "plain-password", domain.StatusActive)

	roles, err := f.svc.Roles(context.Background(), f.tenant)
	if err != nil {
		t.Fatalf("roles: %v", err)
	}
	if len(roles) != 4 {
		t.Fatalf("expected 4 catalog roles, got %d", len(roles))
	}
	if roles[0].Key != domain.RoleAdmin || roles[0].Priority != 100 {
		t.Fatalf("admin should lead the catalog: %+v", roles[0])
	}

	counts := map[domain.Role]int64{}
	for _, r := range roles {
		counts[r.Key] = r.UserCount
	}
	if counts[domain.RoleAdmin] != 1 || counts[domain.RoleManager] != 1 || counts[domain.RoleUser] != 1 || counts[domain.RoleViewer] != 0 {
		t.Fatalf("user counts wrong: %+v", counts)
	}
}

func TestRBACService_RoleLookup(t *testing.T) {
	f := newRBACFixture(t)

	info, members, err := f.svc.Role(context.Background(), f.tenant, domain.RoleAdmin)
	if err != nil {
		t.Fatalf("role: %v", err)
	}
	if info.Name != "Administrator" || len(members) != 1 {
		t.Fatalf("unexpected role payload: %+v members=%d", info, len(members))
	}
	if len(info.Permissions) != len(domain.AllPermissions) {
		t.Fatalf("admin must carry the full catalog, got %d", len(info.Permissions))
	}

	if _, _, err := f.svc.Role(context.Background(), f.tenant, domain.Role("root")); !errors.Is(err, domain.ErrRoleNotFound) {
		t.Fatalf("expected ErrRoleNotFound, got %v", err)
	}
}

func TestRBACService_RolePermissions(t *testing.T) {
	f := newRBACFixture(t)

	_, perms, err := f.svc.RolePermissions(domain.RoleViewer)
	if err != nil {
		t.Fatalf("role permissions: %v", err)
	}
	has := func(p domain.Permission) bool {
		for _, q := range perms {
			if q == p {
				return true
			}
		}
		return false
	}
	if !has(domain.PermDashboardRead) || has(domain.PermUsersDelete) {
		t.Fatalf("viewer permission list wrong: %v", perms)
	}
}

func TestRBACService_AssignRole_Guards(t *testing.T) {
	f := newRBACFixture(t)
	manager := f.seedManager(t, "mgr@acme.test")
	target := f.seedUser(t, "target@acme.test", "target-password", domain.StatusActive)

	if _, err := f.svc.AssignRole(context.Background(), f.admin, f.tenant, target.ID, domain.Role("root")); !errors.Is(err, domain.ErrInvalidRole) {
		t.Fatalf("expected ErrInvalidRole, got %v", err)
	}

	// Only admins mint admins.
	if _, err := f.svc.AssignRole(context.Background(), manager, f.tenant, target.ID, domain.RoleAdmin); !errors.Is(err, domain.ErrAdminTargetAdmin) {
		t.Fatalf("expected ErrAdminTargetAdmin on admin assignment, got %v", err)
	}

	// Managers cannot touch an admin's role.
	if _, err := f.svc.AssignRole(context.Background(), manager, f.tenant, f.admin.ID, domain.RoleUser); !errors.Is(err, domain.ErrAdminTargetAdmin) {
		t.Fatalf("expected ErrAdminTargetAdmin on admin target, got %v", err)
	}

	// Admins cannot demote themselves.
	if _, err := f.svc.AssignRole(context.Background(), f.admin, f.tenant, f.admin.ID, domain.RoleUser); !errors.Is(err, domain.ErrSelfRoleChange) {
		t.Fatalf("expected ErrSelfRoleChange, got %v", err)
	}

	updated, err := f.svc.AssignRole(context.Background(), f.admin, f.tenant, target.ID, domain.RoleManager)
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if updated.Role != domain.RoleManager {
		t.Fatalf("role not applied: %s", updated.Role)
	}
}

func TestRBACService_RemoveRole(t *testing.T) {
	f := newRBACFixture(t)
	manager := f.seedManager(t, "mgr@acme.test")

	updated, err := f.svc.RemoveRole(context.Background(), f.admin, f.tenant, manager.ID)
	if err != nil {
		t.Fatalf("remove role: %v", err)
	}
	if updated.Role != domain.RoleUser {
		t.Fatalf("expected fallback to user, got %s", updated.Role)
	}

	// Self-removal counts as self-demotion for admins.
	if _, err := f.svc.RemoveRole(context.Background(), f.admin, f.tenant, f.admin.ID); !errors.Is(err, domain.ErrSelfRoleChange) {
		t.Fatalf("expected ErrSelfRoleChange, got %v", err)
	}
}

func TestRBACService_RoleStats_CoversEmptyRoles(t *testing.T) {
	f := newRBACFixture(t)
	f.seedUser(t, "pending@acme.test", "pending-password", domain.StatusPending)

	stats, err := f.svc.RoleStats(context.Background(), f.tenant)
	if err != nil {
		t.Fatalf("role stats: %v", err)
	}
	if len(stats) != 4 {
		t.Fatalf("stats must cover every catalog role, got %d rows", len(stats))
	}

	byRole := map[domain.Role]int64{}
	pending := map[domain.Role]int64{}
	for _, row := range stats {
		byRole[row.Role] = row.Total
		pending[row.Role] = row.Pending
	}
	if byRole[domain.RoleAdmin] != 1 || byRole[domain.RoleUser] != 1 || byRole[domain.RoleViewer] != 0 {
		t.Fatalf("totals wrong: %+v", byRole)
	}
	if pending[domain.RoleUser] != 1 {
		t.Fatalf("pending count wrong: %+v", pending)
	}
}
