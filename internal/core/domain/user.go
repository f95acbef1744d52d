package domain

import "time"

// Role is the coarse access level of a user within its tenant.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleUser    Role = "user"
	RoleViewer  Role = "viewer"
)

// ValidRole reports whether r is one of the known roles.
func ValidRole(r Role) bool {
	switch r {
	case RoleAdmin, RoleManager, RoleUser, RoleViewer:
		return true
	}
	return false
}

// UserStatus represents the lifecycle state of an account.
type UserStatus string

const (
	StatusPending   UserStatus = "pending"
	StatusActive    UserStatus = "active"
	StatusInactive  UserStatus = "inactive"
	StatusSuspended UserStatus = "suspended"
)

const (
	// MaxRefreshTokens bounds the stored refresh-token list per user.
	MaxRefreshTokens = 5

	// MaxLoginAttempts failures lock the account for LockDuration.
	MaxLoginAttempts = 5
	LockDuration     = 2 * time.Hour
)

// RefreshToken is a stored, individually revocable long-lived credential.
type RefreshToken struct {
	Token      string    `json:"-" bson:"token"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at"`
	ExpiresAt  time.Time `json:"expires_at" bson:"expires_at"`
	DeviceInfo string    `json:"device_info" bson:"device_info"`
}

// User models an account scoped to exactly one tenant for its lifetime.
type User struct {
	ID           string `json:"id"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`

	Avatar     string `json:"avatar,omitempty"`
	Phone      string `json:"phone,omitempty"`
	Department string `json:"department,omitempty"`
	Title      string `json:"title,omitempty"`
	Bio        string `json:"bio,omitempty"`

	TenantID string `json:"tenant_id"`

	Role        Role         `json:"role"`
	Permissions []Permission `json:"permissions,omitempty"`

	Status          UserStatus `json:"status"`
	IsEmailVerified bool       `json:"is_email_verified"`

	LastLogin     time.Time `json:"last_login,omitempty"`
	LastActivity  time.Time `json:"last_activity,omitempty"`
	SessionCount  int       `json:"session_count"`
	LoginAttempts int       `json:"-"`
	LockUntil     time.Time `json:"-"`

	RefreshTokens []RefreshToken `json:"-"`

	PasswordChangedAt time.Time `json:"-"`

	// Single-use token material: only the SHA-256 hash is ever stored.
	PasswordResetHash        string    `json:"-"`
	PasswordResetExpires     time.Time `json:"-"`
	EmailVerificationHash    string    `json:"-"`
	EmailVerificationExpires time.Time `json:"-"`
	InvitationHash           string    `json:"-"`
	InvitationExpires        time.Time `json:"-"`

	InvitedBy string `json:"invited_by,omitempty"`
	CreatedBy string `json:"created_by,omitempty"`
	UpdatedBy string `json:"updated_by,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FullName joins first and last name for display.
func (u *User) FullName() string {
	if u.FirstName == "" {
		return u.LastName
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// IsLocked reports whether a failed-login lock is currently in effect.
func (u *User) IsLocked(now time.Time) bool {
	return !u.LockUntil.IsZero() && u.LockUntil.After(now)
}

// RegisterFailedLogin increments the attempt counter and arms the lock once
// the threshold is reached.
func (u *User) RegisterFailedLogin(now time.Time) {
	u.LoginAttempts++
	if u.LoginAttempts >= MaxLoginAttempts {
		u.LockUntil = now.Add(LockDuration)
	}
}

// RegisterSuccessfulLogin clears lockout state and records session activity.
func (u *User) RegisterSuccessfulLogin(now time.Time) {
	u.LoginAttempts = 0
	u.LockUntil = time.Time{}
	u.LastLogin = now
	u.LastActivity = now
	u.SessionCount++
}

// ChangedPasswordAfter reports whether the password changed after a token was
// issued. Tokens minted before a password change are rejected without any
// revocation list.
func (u *User) ChangedPasswordAfter(issuedAt time.Time) bool {
	if u.PasswordChangedAt.IsZero() {
		return false
	}
	// JWT iat claims carry unix seconds, so compare at second precision.
	return u.PasswordChangedAt.Unix() > issuedAt.Unix()
}

// AddRefreshToken prunes expired entries, appends the new token, and keeps
// only the MaxRefreshTokens most recent.
func (u *User) AddRefreshToken(token, deviceInfo string, now, expiresAt time.Time) {
	live := u.RefreshTokens[:0]
	for _, rt := range u.RefreshTokens {
		if rt.ExpiresAt.After(now) {
			live = append(live, rt)
		}
	}
	u.RefreshTokens = append(live, RefreshToken{
		Token:      token,
		CreatedAt:  now,
		ExpiresAt:  expiresAt,
		DeviceInfo: deviceInfo,
	})
	if len(u.RefreshTokens) > MaxRefreshTokens {
		u.RefreshTokens = u.RefreshTokens[len(u.RefreshTokens)-MaxRefreshTokens:]
	}
}

// RemoveRefreshToken drops the given token from the stored list. It reports
// whether the token was present.
func (u *User) RemoveRefreshToken(token string) bool {
	kept := u.RefreshTokens[:0]
	found := false
	for _, rt := range u.RefreshTokens {
		if rt.Token == token {
			found = true
			continue
		}
		kept = append(kept, rt)
	}
	u.RefreshTokens = kept
	return found
}

// HasRefreshToken reports whether token exists in the stored list with a
// future expiry. A token absent from the list is invalid even when its
// signature still verifies; this is what makes logout revocation work.
func (u *User) HasRefreshToken(token string, now time.Time) bool {
	for _, rt := range u.RefreshTokens {
		if rt.Token == token && rt.ExpiresAt.After(now) {
			return true
		}
	}
	return false
}
