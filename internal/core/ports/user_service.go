package ports

import (
	"context"

	"github.com/saasportal/admin-api/internal/core/domain"
)

// Pagination describes one page of a list response.
type Pagination struct {
	Page    int   `json:"page"`
	Limit   int   `json:"limit"`
	Total   int64 `json:"total"`
	Pages   int   `json:"pages"`
	HasNext bool  `json:"has_next"`
	HasPrev bool  `json:"has_prev"`
}

// UsersPage is the user list response: one page plus tenant-wide stats.
type UsersPage struct {
	Users      []*domain.User `json:"users"`
	Pagination Pagination     `json:"pagination"`
	Stats      *UserStats     `json:"stats"`
}

// CreateUserInput is the admin-side user creation request.
type CreateUserInput struct {
	FirstName      string
	LastName       string
	Email          string
	Role           domain.Role
	Department     string
	Title          string
	Phone          string
	SendInvitation bool
	// InviteURLBase is the public URL prefix the raw invitation token is
	// appended to in the email.
	InviteURLBase string
}

// UpdateUserInput carries admin-editable fields. Nil pointers leave the
// field untouched.
type UpdateUserInput struct {
	FirstName  *string
	LastName   *string
	Email      *string
	Role       *domain.Role
	Department *string
	Title      *string
	Phone      *string
	Status     *domain.UserStatus
	Bio        *string
}

// BulkAction is one of the supported bulk operations.
type BulkAction string

const (
	BulkActivate   BulkAction = "activate"
	BulkDeactivate BulkAction = "deactivate"
	BulkDelete     BulkAction = "delete"
	BulkUpdateRole BulkAction = "updateRole"
)

// BulkInput selects users and the action to apply.
type BulkInput struct {
	UserIDs []string
	Action  BulkAction
	Role    domain.Role // required for BulkUpdateRole
}

// BulkResult reports how many documents the bulk action touched.
type BulkResult struct {
	Message      string `json:"message"`
	UpdatedCount int64  `json:"updated_count,omitempty"`
	DeletedCount int64  `json:"deleted_count,omitempty"`
}

// UserActivity is the per-user activity summary endpoint payload.
type UserActivity struct {
	UserID        string `json:"user_id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	LastLogin     string `json:"last_login,omitempty"`
	LastActivity  string `json:"last_activity,omitempty"`
	SessionCount  int    `json:"session_count"`
	LoginAttempts int    `json:"login_attempts"`
}

// UserService implements tenant-scoped user administration and the
// invitation lifecycle. Methods taking an actor enforce the authorization
// guards in order: permission check, admin-target-admin check, self-action
// check.
type UserService interface {
	List(ctx context.Context, tenant *domain.Tenant, filter ListUsersFilter) (*UsersPage, error)
	Get(ctx context.Context, tenant *domain.Tenant, id string) (*domain.User, error)
	Create(ctx context.Context, actor *domain.User, tenant *domain.Tenant, input CreateUserInput) (*domain.User, error)
	Update(ctx context.Context, actor *domain.User, tenant *domain.Tenant, id string, input UpdateUserInput) (*domain.User, error)
	Delete(ctx context.Context, actor *domain.User, tenant *domain.Tenant, id string) error
	BulkUpdate(ctx context.Context, actor *domain.User, tenant *domain.Tenant, input BulkInput) (*BulkResult, error)

	ResendInvitation(ctx context.Context, actor *domain.User, tenant *domain.Tenant, id, inviteURLBase string) error
	AcceptInvitation(ctx context.Context, rawToken, password, confirmPassword string) error

	Activity(ctx context.Context, tenant *domain.Tenant, id string) (*UserActivity, error)
}
