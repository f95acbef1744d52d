package ports

import (
	"time"

	"github.com/saasportal/admin-api/internal/core/domain"
)

// TokenPair is the result of a successful authentication.
type TokenPair struct {
	AccessToken  string `json:"token"`
	RefreshToken string `json:"refresh_token"`
}

// TokenService issues and validates the two signed credentials of a session:
// a short-lived access token verified on every request, and a longer-lived
// refresh token that must additionally exist in the user's stored list.
type TokenService interface {
	Issue(userID string) (TokenPair, error)

	// VerifyAccess returns the subject and issued-at of a valid access token.
	// Fails with domain.ErrTokenExpired (user-actionable) or
	// domain.ErrTokenInvalid (bad signature or malformed).
	VerifyAccess(token string) (userID string, issuedAt time.Time, err error)

	// RefreshSubject extracts the user id from a signature-valid refresh
	// token, so the user document can be loaded before the stored-list check.
	RefreshSubject(token string) (userID string, err error)

	// VerifyRefresh requires both a valid signature and presence, unexpired,
	// in the user's stored refresh-token list.
	VerifyRefresh(token string, user *domain.User, now time.Time) bool

	AccessTTL() time.Duration
	RefreshTTL() time.Duration
}
