package domain

import "errors"

// Operational errors. Each maps to a deterministic HTTP status in the API
// error handler; messages are safe to return to clients verbatim.
var (
	// Authentication (401).
	ErrUnauthenticated    = errors.New("you are not logged in")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token has expired")
	ErrUserGone           = errors.New("the user belonging to this token no longer exists")
	ErrPasswordChanged    = errors.New("password was changed recently, please log in again")
	ErrAccountInactive    = errors.New("account is not active")
	ErrEmailNotVerified   = errors.New("please verify your email before logging in")
	ErrWrongPassword      = errors.New("current password is incorrect")

	// Lockout (423).
	ErrAccountLocked = errors.New("account is temporarily locked due to multiple failed login attempts")

	// Authorization (403).
	ErrForbidden          = errors.New("you do not have permission to perform this action")
	ErrTenantMismatch     = errors.New("access denied for this tenant")
	ErrTenantInactive     = errors.New("tenant subscription is not active")
	ErrAdminTargetAdmin   = errors.New("only admins can manage admin users")
	ErrSelfRoleChange     = errors.New("you cannot change your own admin role")
	ErrSelfDelete         = errors.New("you cannot delete your own account")
	ErrFeatureUnavailable = errors.New("feature is not available for your plan")

	// Not found (404).
	ErrUserNotFound   = errors.New("user not found")
	ErrTenantNotFound = errors.New("tenant not found")
	ErrRoleNotFound   = errors.New("role not found")

	// Validation / state (400).
	ErrInvalidInput        = errors.New("invalid input")
	ErrPasswordMismatch    = errors.New("passwords do not match")
	ErrInvalidState        = errors.New("user is not in pending status")
	ErrSingleUseTokenSpent = errors.New("token is invalid or has expired")
	ErrInvalidRole         = errors.New("invalid role")
	ErrInvalidAction       = errors.New("invalid bulk action")
	ErrRegistrationClosed  = errors.New("user registration is not allowed for this tenant")
	ErrUserLimitReached    = errors.New("user limit reached for this tenant")

	// Duplicate key, also 400.
	ErrUserExists   = errors.New("user already exists with this email")
	ErrTenantExists = errors.New("tenant already exists")

	// Throttling (429).
	ErrRateLimited = errors.New("too many requests, please try again later")

	// Infrastructure surfaced as operational (500 with explicit message).
	ErrEmailDelivery = errors.New("there was an error sending the email, please try again later")
)
