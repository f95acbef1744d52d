package ports

import (
	"context"

	"github.com/saasportal/admin-api/internal/core/domain"
)

// Session is the payload returned to a freshly authenticated client.
type Session struct {
	Tokens      TokenPair
	User        *domain.User
	Tenant      *domain.Tenant
	Permissions []domain.Permission
}

// RegisterInput is the self-registration request.
type RegisterInput struct {
	FirstName       string
	LastName        string
	Email           string
	Password        string
	ConfirmPassword string
	// VerifyURLBase is the public URL prefix the raw verification token is
	// appended to in the email.
	VerifyURLBase string
	DeviceInfo    string
}

// RegisterResult distinguishes the two registration outcomes: a pending
// account awaiting email verification, or an immediately active session.
type RegisterResult struct {
	PendingVerification bool
	Session             *Session
}

// LoginInput is the credential-login request.
type LoginInput struct {
	Email      string
	Password   string
	DeviceInfo string
}

// ProfileUpdate carries the self-service editable profile fields. Nil
// pointers leave the field untouched.
type ProfileUpdate struct {
	FirstName  *string
	LastName   *string
	Email      *string
	Phone      *string
	Department *string
	Title      *string
	Bio        *string
	Avatar     *string
}

// AuthService implements session management and the account security flows.
type AuthService interface {
	Register(ctx context.Context, tenant *domain.Tenant, input RegisterInput) (*RegisterResult, error)
	Login(ctx context.Context, tenant *domain.Tenant, input LoginInput) (*Session, error)
	Logout(ctx context.Context, user *domain.User, refreshToken string) error
	Refresh(ctx context.Context, refreshToken, deviceInfo string) (*Session, error)

	// Authenticate validates a bearer token against the resolved tenant and
	// returns the current user. Used by the request middleware.
	Authenticate(ctx context.Context, accessToken string, tenant *domain.Tenant) (*domain.User, error)

	ForgotPassword(ctx context.Context, tenant *domain.Tenant, email, resetURLBase string) error
	ResetPassword(ctx context.Context, rawToken, password, confirmPassword, deviceInfo string) (*Session, error)
	UpdatePassword(ctx context.Context, user *domain.User, currentPassword, newPassword, deviceInfo string) (*Session, error)

	VerifyEmail(ctx context.Context, rawToken string) error

	UpdateProfile(ctx context.Context, user *domain.User, update ProfileUpdate) (*domain.User, error)

	// Describe assembles the session payload for an already authenticated
	// user (the frontend auth check endpoint).
	Describe(ctx context.Context, user *domain.User) (*Session, error)
}
