package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/saasportal/admin-api/internal/core/domain"
	"github.com/saasportal/admin-api/internal/core/ports"
)

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	clone.RefreshTokens = append([]domain.RefreshToken(nil), u.RefreshTokens...)
	clone.Permissions = append([]domain.Permission(nil), u.Permissions...)
	return &clone
}

type stubUserRepo struct {
	users      map[string]*domain.User
	seq        int
	updateErr  error
	touchCalls int
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == user.Email && u.TenantID == user.TenantID {
			return nil, domain.ErrUserExists
		}
	}
	r.seq++
	clone := cloneUser(user)
	clone.ID = fmt.Sprintf("u%d", r.seq)
	r.users[clone.ID] = cloneUser(clone)
	return clone, nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	if u, ok := r.users[id]; ok {
		return cloneUser(u), nil
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByIDAndTenant(_ context.Context, id, tenantID string) (*domain.User, error) {
	if u, ok := r.users[id]; ok && u.TenantID == tenantID {
		return cloneUser(u), nil
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByEmailAndTenant(_ context.Context, email, tenantID string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email && u.TenantID == tenantID {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByTokenHash(_ context.Context, kind ports.TokenKind, hash string, now time.Time) (*domain.User, error) {
	for _, u := range r.users {
		var stored string
		var expires time.Time
		switch kind {
		case ports.TokenPasswordReset:
			stored, expires = u.PasswordResetHash, u.PasswordResetExpires
		case ports.TokenEmailVerification:
			stored, expires = u.EmailVerificationHash, u.EmailVerificationExpires
		case ports.TokenInvitation:
			stored, expires = u.InvitationHash, u.InvitationExpires
		}
		if stored != "" && stored == hash && expires.After(now) {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) Update(_ context.Context, user *domain.User) (*domain.User, error) {
	if r.updateErr != nil {
		return nil, r.updateErr
	}
	if _, ok := r.users[user.ID]; !ok {
		return nil, domain.ErrUserNotFound
	}
	r.users[user.ID] = cloneUser(user)
	return cloneUser(user), nil
}

func (r *stubUserRepo) TouchActivity(_ context.Context, id string, at time.Time) error {
	r.touchCalls++
	if u, ok := r.users[id]; ok {
		u.LastActivity = at
	}
	return nil
}

func (r *stubUserRepo) Delete(_ context.Context, id, tenantID string) error {
	if u, ok := r.users[id]; ok && u.TenantID == tenantID {
		delete(r.users, id)
		return nil
	}
	return domain.ErrUserNotFound
}

func (r *stubUserRepo) DeleteMany(_ context.Context, ids []string, tenantID string) (int64, error) {
	var n int64
	for _, id := range ids {
		if u, ok := r.users[id]; ok && u.TenantID == tenantID {
			delete(r.users, id)
			n++
		}
	}
	return n, nil
}

func (r *stubUserRepo) UpdateMany(_ context.Context, ids []string, tenantID string, set ports.BulkSet) (int64, error) {
	var n int64
	for _, id := range ids {
		u, ok := r.users[id]
		if !ok || u.TenantID != tenantID {
			continue
		}
		if set.Status != "" {
			u.Status = set.Status
		}
		if set.Role != "" {
			u.Role = set.Role
		}
		u.UpdatedBy = set.UpdatedBy
		n++
	}
	return n, nil
}

func (r *stubUserRepo) CountAdmins(_ context.Context, ids []string, tenantID string) (int64, error) {
	var n int64
	for _, id := range ids {
		if u, ok := r.users[id]; ok && u.TenantID == tenantID && u.Role == domain.RoleAdmin {
			n++
		}
	}
	return n, nil
}

func (r *stubUserRepo) List(_ context.Context, tenantID string, filter ports.ListUsersFilter) ([]*domain.User, int64, error) {
	var out []*domain.User
	for _, u := range r.users {
		if u.TenantID != tenantID {
			continue
		}
		if filter.Role != "" && u.Role != filter.Role {
			continue
		}
		if filter.Status != "" && u.Status != filter.Status {
			continue
		}
		out = append(out, cloneUser(u))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	total := int64(len(out))
	if filter.Limit > 0 {
		start := (filter.Page - 1) * filter.Limit
		if start < 0 {
			start = 0
		}
		if start > len(out) {
			start = len(out)
		}
		end := start + filter.Limit
		if end > len(out) {
			end = len(out)
		}
		out = out[start:end]
	}
	return out, total, nil
}

func (r *stubUserRepo) FindByRole(_ context.Context, tenantID string, role domain.Role, _, _ int) ([]*domain.User, int64, error) {
	var out []*domain.User
	for _, u := range r.users {
		if u.TenantID == tenantID && u.Role == role {
			out = append(out, cloneUser(u))
		}
	}
	return out, int64(len(out)), nil
}

func (r *stubUserRepo) Stats(_ context.Context, tenantID string) (*ports.UserStats, error) {
	stats := &ports.UserStats{}
	for _, u := range r.users {
		if u.TenantID != tenantID {
			continue
		}
		stats.Total++
		switch u.Status {
		case domain.StatusActive:
			stats.Active++
		case domain.StatusPending:
			stats.Pending++
		case domain.StatusInactive:
			stats.Inactive++
		}
		switch u.Role {
		case domain.RoleAdmin:
			stats.Admins++
		case domain.RoleManager:
			stats.Managers++
		case domain.RoleUser:
			stats.Regular++
		}
	}
	return stats, nil
}

func (r *stubUserRepo) CountByRole(_ context.Context, tenantID string) (map[domain.Role]int64, error) {
	counts := make(map[domain.Role]int64)
	for _, u := range r.users {
		if u.TenantID == tenantID {
			counts[u.Role]++
		}
	}
	return counts, nil
}

func (r *stubUserRepo) RoleStats(_ context.Context, tenantID string) ([]ports.RoleStatusCount, error) {
	byRole := make(map[domain.Role]*ports.RoleStatusCount)
	for _, u := range r.users {
		if u.TenantID != tenantID {
			continue
		}
		row, ok := byRole[u.Role]
		if !ok {
			row = &ports.RoleStatusCount{Role: u.Role}
			byRole[u.Role] = row
		}
		row.Total++
		switch u.Status {
		case domain.StatusActive:
			row.Active++
		case domain.StatusPending:
			row.Pending++
		}
	}
	out := make([]ports.RoleStatusCount, 0, len(byRole))
	for _, row := range byRole {
		out = append(out, *row)
	}
	return out, nil
}

type stubTenantRepo struct {
	tenants map[string]*domain.Tenant
}

func newStubTenantRepo() *stubTenantRepo {
	return &stubTenantRepo{tenants: make(map[string]*domain.Tenant)}
}

func (r *stubTenantRepo) Create(_ context.Context, t *domain.Tenant) (*domain.Tenant, error) {
	clone := *t
	r.tenants[t.ID] = &clone
	return &clone, nil
}

func (r *stubTenantRepo) FindByID(_ context.Context, id string) (*domain.Tenant, error) {
	if t, ok := r.tenants[id]; ok {
		clone := *t
		return &clone, nil
	}
	return nil, domain.ErrTenantNotFound
}

func (r *stubTenantRepo) FindBySlug(_ context.Context, slug string) (*domain.Tenant, error) {
	for _, t := range r.tenants {
		if t.Slug == slug {
			clone := *t
			return &clone, nil
		}
	}
	return nil, domain.ErrTenantNotFound
}

func (r *stubTenantRepo) FindByDomain(_ context.Context, domainName string) (*domain.Tenant, error) {
	for _, t := range r.tenants {
		if t.Domain == domainName {
			clone := *t
			return &clone, nil
		}
	}
	return nil, domain.ErrTenantNotFound
}

func (r *stubTenantRepo) IncrementUsers(_ context.Context, id string, delta int) error {
	t, ok := r.tenants[id]
	if !ok {
		return domain.ErrTenantNotFound
	}
	t.Usage.Users += delta
	if t.Usage.Users < 0 {
		t.Usage.Users = 0
	}
	return nil
}

type stubMailer struct {
	sent []ports.Email
	fail bool
}

func (m *stubMailer) Send(_ context.Context, email ports.Email) error {
	if m.fail {
		return fmt.Errorf("smtp unavailable")
	}
	m.sent = append(m.sent, email)
	return nil
}
