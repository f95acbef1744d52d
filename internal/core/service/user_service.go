package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/saasportal/admin-api/internal/core/domain"
	"github.com/saasportal/admin-api/internal/core/ports"
)

// UserService implements tenant-scoped user administration and the
// invitation lifecycle.
type UserService struct {
	users   ports.UserRepository
	tenants ports.TenantRepository
	mailer  ports.Mailer
	auth    *AuthService
	logger  zerolog.Logger
}

func NewUserService(users ports.UserRepository, tenants ports.TenantRepository, mailer ports.Mailer, auth *AuthService, logger zerolog.Logger) *UserService {
	return &UserService{
		users:   users,
		tenants: tenants,
		mailer:  mailer,
		auth:    auth,
		logger:  logger,
	}
}

func buildPagination(page, limit int, total int64) ports.Pagination {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	pages := int((total + int64(limit) - 1) / int64(limit))
	return ports.Pagination{
		Page:    page,
		Limit:   limit,
		Total:   total,
		Pages:   pages,
		HasNext: int64(page*limit) < total,
		HasPrev: page > 1,
	}
}

// List returns one page of the tenant's users plus tenant-wide stats.
func (s *UserService) List(ctx context.Context, tenant *domain.Tenant, filter ports.ListUsersFilter) (*ports.UsersPage, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 10
	}

	users, total, err := s.users.List(ctx, tenant.ID, filter)
	if err != nil {
		return nil, err
	}

	stats, err := s.users.Stats(ctx, tenant.ID)
	if err != nil {
		return nil, err
	}

	return &ports.UsersPage{
		Users:      users,
		Pagination: buildPagination(filter.Page, filter.Limit, total),
		Stats:      stats,
	}, nil
}

// Get loads a single user scoped to the tenant. A cross-tenant id does not
// match the query and comes back as not found, never as forbidden.
func (s *UserService) Get(ctx context.Context, tenant *domain.Tenant, id string) (*domain.User, error) {
	return s.users.FindByIDAndTenant(ctx, id, tenant.ID)
}

// Create provisions a user on behalf of an admin or manager. With
// SendInvitation the account starts pending behind a 7-day single-use
// invitation token; otherwise it starts active with a temporary password.
func (s *UserService) Create(ctx context.Context, actor *domain.User, tenant *domain.Tenant, input ports.CreateUserInput) (*domain.User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if existing, err := s.users.FindByEmailAndTenant(ctx, email, tenant.ID); err == nil && existing != nil {
		return nil, domain.ErrUserExists
	}
	if !tenant.CheckUserLimit() {
		return nil, domain.ErrUserLimitReached
	}

	if !actor.HasPermission(domain.PermUsersCreate) {
		return nil, domain.ErrForbidden
	}
	role := input.Role
	if role == "" {
		role = domain.RoleUser
	}
	if !domain.ValidRole(role) {
		return nil, domain.ErrInvalidRole
	}
	if role == domain.RoleAdmin && actor.Role != domain.RoleAdmin {
		return nil, domain.ErrAdminTargetAdmin
	}

	// The invitee never sees this password; accepting the invitation
	// replaces it.
	tempPassword, err := randomPassword()
	if err != nil {
		return nil, err
	}
	hash, err := s.auth.hashPassword(tempPassword)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	status := domain.StatusActive
	if input.SendInvitation {
		status = domain.StatusPending
	}

	user := &domain.User{
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		Department:   input.Department,
		Title:        input.Title,
		Phone:        input.Phone,
		TenantID:     tenant.ID,
		Status:       status,
		CreatedBy:    actor.ID,
		InvitedBy:    actor.ID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.users.Create(ctx, user)
	if err != nil {
		return nil, err
	}

	if err := s.tenants.IncrementUsers(ctx, tenant.ID, 1); err != nil {
		s.logger.Error().Err(err).Str("tenant_id", tenant.ID).Msg("usage increment failed after user create")
	}

	if input.SendInvitation {
		if err := s.sendInvitation(ctx, actor, tenant, created, input.InviteURLBase); err != nil {
			return nil, err
		}
	}

	s.logger.Info().
		Str("actor_id", actor.ID).
		Str("user_id", created.ID).
		Str("tenant_id", tenant.ID).
		Str("role", string(created.Role)).
		Bool("invitation", input.SendInvitation).
		Msg("user created")

	return created, nil
}

// sendInvitation regenerates the invitation token and emails it. A delivery
// failure rolls the token fields back so the user never holds a token that
// was never sent.
func (s *UserService) sendInvitation(ctx context.Context, actor *domain.User, tenant *domain.Tenant, user *domain.User, inviteURLBase string) error {
	now := time.Now().UTC()
	raw, hash, expires, err := domain.InvitationToken.Generate(now)
	if err != nil {
		return err
	}
	user.InvitationHash = hash
	user.InvitationExpires = expires
	if user, err = s.users.Update(ctx, user); err != nil {
		return err
	}

	mail := ports.Email{
		To:      user.Email,
		Subject: fmt.Sprintf("Invitation to join %s", tenant.Name),
		Message: fmt.Sprintf("Hello,\n\n%s has invited you to join %s.\n\nClick the link below to accept the invitation and create your account:\n%s/%s\n\nThis invitation will expire in 7 days.", actor.FullName(), tenant.Name, inviteURLBase, raw),
	}
	if err := s.mailer.Send(ctx, mail); err != nil {
		user.InvitationHash = ""
		user.InvitationExpires = time.Time{}
		if _, uerr := s.users.Update(ctx, user); uerr != nil {
			s.logger.Error().Err(uerr).Str("user_id", user.ID).Msg("invitation token rollback failed")
		}
		s.logger.Error().Err(err).Str("email", user.Email).Msg("invitation email failed")
		return domain.ErrEmailDelivery
	}

	return nil
}

// Update applies admin-editable fields. Guard order: permission, then
// admin-target/admin-result, then self-demotion.
func (s *UserService) Update(ctx context.Context, actor *domain.User, tenant *domain.Tenant, id string, input ports.UpdateUserInput) (*domain.User, error) {
	user, err := s.users.FindByIDAndTenant(ctx, id, tenant.ID)
	if err != nil {
		return nil, err
	}

	if !actor.HasPermission(domain.PermUsersUpdate) {
		return nil, domain.ErrForbidden
	}

	targetsAdmin := user.Role == domain.RoleAdmin || (input.Role != nil && *input.Role == domain.RoleAdmin)
	if targetsAdmin && actor.Role != domain.RoleAdmin {
		return nil, domain.ErrAdminTargetAdmin
	}
	if user.ID == actor.ID && user.Role == domain.RoleAdmin && input.Role != nil && *input.Role != domain.RoleAdmin {
		return nil, domain.ErrSelfRoleChange
	}

	if input.Role != nil && !domain.ValidRole(*input.Role) {
		return nil, domain.ErrInvalidRole
	}

	if input.FirstName != nil {
		user.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		user.LastName = *input.LastName
	}
	if input.Email != nil {
		user.Email = strings.ToLower(strings.TrimSpace(*input.Email))
	}
	if input.Role != nil {
		user.Role = *input.Role
	}
	if input.Department != nil {
		user.Department = *input.Department
	}
	if input.Title != nil {
		user.Title = *input.Title
	}
	if input.Phone != nil {
		user.Phone = *input.Phone
	}
	if input.Status != nil {
		user.Status = *input.Status
	}
	if input.Bio != nil {
		user.Bio = *input.Bio
	}
	user.UpdatedBy = actor.ID
	user.UpdatedAt = time.Now().UTC()

	updated, err := s.users.Update(ctx, user)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("actor_id", actor.ID).Str("user_id", id).Str("tenant_id", tenant.ID).Msg("user updated")
	return updated, nil
}

// Delete hard-deletes the user and decrements the tenant usage counter.
func (s *UserService) Delete(ctx context.Context, actor *domain.User, tenant *domain.Tenant, id string) error {
	user, err := s.users.FindByIDAndTenant(ctx, id, tenant.ID)
	if err != nil {
		return err
	}

	if !actor.HasPermission(domain.PermUsersDelete) {
		return domain.ErrForbidden
	}
	if user.ID == actor.ID {
		return domain.ErrSelfDelete
	}
	if user.Role == domain.RoleAdmin && actor.Role != domain.RoleAdmin {
		return domain.ErrAdminTargetAdmin
	}

	if err := s.users.Delete(ctx, id, tenant.ID); err != nil {
		return err
	}
	if err := s.tenants.IncrementUsers(ctx, tenant.ID, -1); err != nil {
		s.logger.Error().Err(err).Str("tenant_id", tenant.ID).Msg("usage decrement failed after user delete")
	}

	s.logger.Info().
		Str("actor_id", actor.ID).
		Str("user_id", id).
		Str("tenant_id", tenant.ID).
		Str("email", user.Email).
		Msg("user deleted")
	return nil
}

// BulkUpdate applies one action to a set of users. Delete takes its own
// explicit response path rather than falling through the shared update.
func (s *UserService) BulkUpdate(ctx context.Context, actor *domain.User, tenant *domain.Tenant, input ports.BulkInput) (*ports.BulkResult, error) {
	if len(input.UserIDs) == 0 {
		return nil, domain.ErrInvalidInput
	}
	if !actor.HasPermission(domain.PermUsersUpdate) {
		return nil, domain.ErrForbidden
	}

	switch input.Action {
	case ports.BulkActivate, ports.BulkDeactivate:
		status := domain.StatusActive
		msg := "users activated successfully"
		if input.Action == ports.BulkDeactivate {
			status = domain.StatusInactive
			msg = "users deactivated successfully"
		}
		n, err := s.users.UpdateMany(ctx, input.UserIDs, tenant.ID, ports.BulkSet{Status: status, UpdatedBy: actor.ID})
		if err != nil {
			return nil, err
		}
		return &ports.BulkResult{Message: msg, UpdatedCount: n}, nil

	case ports.BulkDelete:
		if !actor.HasPermission(domain.PermUsersDelete) {
			return nil, domain.ErrForbidden
		}
		for _, id := range input.UserIDs {
			if id == actor.ID {
				return nil, domain.ErrSelfDelete
			}
		}
		if actor.Role != domain.RoleAdmin {
			admins, err := s.users.CountAdmins(ctx, input.UserIDs, tenant.ID)
			if err != nil {
				return nil, err
			}
			if admins > 0 {
				return nil, domain.ErrAdminTargetAdmin
			}
		}

		n, err := s.users.DeleteMany(ctx, input.UserIDs, tenant.ID)
		if err != nil {
			return nil, err
		}
		if n > 0 {
			if err := s.tenants.IncrementUsers(ctx, tenant.ID, -int(n)); err != nil {
				s.logger.Error().Err(err).Str("tenant_id", tenant.ID).Msg("usage decrement failed after bulk delete")
			}
		}
		s.logger.Info().Str("actor_id", actor.ID).Str("tenant_id", tenant.ID).Int64("deleted", n).Msg("bulk delete users")
		return &ports.BulkResult{
			Message:      fmt.Sprintf("%d users deleted successfully", n),
			DeletedCount: n,
		}, nil

	case ports.BulkUpdateRole:
		if input.Role == "" {
			return nil, domain.ErrInvalidInput
		}
		if !domain.ValidRole(input.Role) {
			return nil, domain.ErrInvalidRole
		}
		if input.Role == domain.RoleAdmin && actor.Role != domain.RoleAdmin {
			return nil, domain.ErrAdminTargetAdmin
		}
		if actor.Role != domain.RoleAdmin {
			admins, err := s.users.CountAdmins(ctx, input.UserIDs, tenant.ID)
			if err != nil {
				return nil, err
			}
			if admins > 0 {
				return nil, domain.ErrAdminTargetAdmin
			}
		}

		n, err := s.users.UpdateMany(ctx, input.UserIDs, tenant.ID, ports.BulkSet{Role: input.Role, UpdatedBy: actor.ID})
		if err != nil {
			return nil, err
		}
		return &ports.BulkResult{
			Message:      fmt.Sprintf("users role updated to %s successfully", input.Role),
			UpdatedCount: n,
		}, nil
	}

	return nil, domain.ErrInvalidAction
}

// ResendInvitation regenerates and re-emails the invitation token. Only
// valid while the account is still pending.
func (s *UserService) ResendInvitation(ctx context.Context, actor *domain.User, tenant *domain.Tenant, id, inviteURLBase string) error {
	user, err := s.users.FindByIDAndTenant(ctx, id, tenant.ID)
	if err != nil {
		return err
	}
	if user.Status != domain.StatusPending {
		return domain.ErrInvalidState
	}

	if err := s.sendInvitation(ctx, actor, tenant, user, inviteURLBase); err != nil {
		return err
	}

	s.logger.Info().Str("actor_id", actor.ID).Str("user_id", id).Str("tenant_id", tenant.ID).Msg("invitation resent")
	return nil
}

// AcceptInvitation consumes a valid invitation token: the invitee chooses a
// password and the account becomes active and verified. Single use: the
// token fields are cleared on success.
func (s *UserService) AcceptInvitation(ctx context.Context, rawToken, password, confirmPassword string) error {
	if password != confirmPassword {
		return domain.ErrPasswordMismatch
	}

	now := time.Now().UTC()
	user, err := s.users.FindByTokenHash(ctx, ports.TokenInvitation, domain.HashToken(rawToken), now)
	if err != nil {
		return domain.ErrSingleUseTokenSpent
	}

	hash, err := s.auth.hashPassword(password)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	user.PasswordChangedAt = now
	user.Status = domain.StatusActive
	user.IsEmailVerified = true
	user.InvitationHash = ""
	user.InvitationExpires = time.Time{}

	if _, err := s.users.Update(ctx, user); err != nil {
		return err
	}

	s.logger.Info().Str("user_id", user.ID).Str("tenant_id", user.TenantID).Msg("invitation accepted")
	return nil
}

// Activity returns the per-user activity summary.
func (s *UserService) Activity(ctx context.Context, tenant *domain.Tenant, id string) (*ports.UserActivity, error) {
	user, err := s.users.FindByIDAndTenant(ctx, id, tenant.ID)
	if err != nil {
		return nil, err
	}

	a := &ports.UserActivity{
		UserID:        user.ID,
		Name:          user.FullName(),
		Email:         user.Email,
		SessionCount:  user.SessionCount,
		LoginAttempts: user.LoginAttempts,
	}
	if !user.LastLogin.IsZero() {
		a.LastLogin = user.LastLogin.Format(time.RFC3339)
	}
	if !user.LastActivity.IsZero() {
		a.LastActivity = user.LastActivity.Format(time.RFC3339)
	}
	return a, nil
}

// randomPassword returns a throwaway credential for invited accounts.
func randomPassword() (string, error) {
	b := make([]byte, 12)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate temporary password: %w", err)
	}
	return hex.EncodeToString(b), nil
}
