package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/saasportal/admin-api/internal/core/domain"
	"github.com/saasportal/admin-api/internal/core/ports"
)

const (
	defaultAccessTTL  = 7 * 24 * time.Hour
	defaultRefreshTTL = 30 * 24 * time.Hour
)

// TokenService signs and validates HS256 access and refresh tokens. Tokens
// carry only the user's opaque identifier; everything else is loaded fresh
// from the credential store on each request.
type TokenService struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

// NewTokenService fails on missing secrets: a signing-key misconfiguration is
// a fatal startup error, never a request-time one.
func NewTokenService(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) (*TokenService, error) {
	if accessSecret == "" || refreshSecret == "" {
		return nil, fmt.Errorf("token service: JWT secrets must be configured")
	}
	if accessTTL <= 0 {
		accessTTL = defaultAccessTTL
	}
	if refreshTTL <= 0 {
		refreshTTL = defaultRefreshTTL
	}
	return &TokenService{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}, nil
}

func (s *TokenService) AccessTTL() time.Duration  { return s.accessTTL }
func (s *TokenService) RefreshTTL() time.Duration { return s.refreshTTL }

// Issue signs a fresh access/refresh pair for the user.
func (s *TokenService) Issue(userID string) (ports.TokenPair, error) {
	now := time.Now().UTC()

	access, err := sign(userID, now, s.accessTTL, s.accessSecret)
	if err != nil {
		return ports.TokenPair{}, fmt.Errorf("sign access token: %w", err)
	}
	refresh, err := sign(userID, now, s.refreshTTL, s.refreshSecret)
	if err != nil {
		return ports.TokenPair{}, fmt.Errorf("sign refresh token: %w", err)
	}

	return ports.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func sign(userID string, now time.Time, ttl time.Duration, secret []byte) (string, error) {
	claims := jwt.MapClaims{
		"sub": userID,
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
		"jti": uuid.NewString(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(secret)
}

// VerifyAccess validates signature and expiry, distinguishing expiry (the
// user can simply log in again) from everything else (a potential tampering
// signal).
func (s *TokenService) VerifyAccess(token string) (string, time.Time, error) {
	claims, err := s.parse(token, s.accessSecret)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", time.Time{}, domain.ErrTokenExpired
		}
		return "", time.Time{}, domain.ErrTokenInvalid
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return "", time.Time{}, domain.ErrTokenInvalid
	}

	issuedAt := time.Time{}
	if iat, ok := claims["iat"].(float64); ok {
		issuedAt = time.Unix(int64(iat), 0).UTC()
	}

	return sub, issuedAt, nil
}

// RefreshSubject extracts the subject of a signature-valid refresh token.
func (s *TokenService) RefreshSubject(token string) (string, error) {
	claims, err := s.parse(token, s.refreshSecret)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", domain.ErrTokenExpired
		}
		return "", domain.ErrTokenInvalid
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return "", domain.ErrTokenInvalid
	}
	return sub, nil
}

// VerifyRefresh requires the token to both cryptographically verify and
// exist, unexpired, in the user's stored list. A token removed by logout is
// invalid even though its signature still checks out.
func (s *TokenService) VerifyRefresh(token string, user *domain.User, now time.Time) bool {
	claims, err := s.parse(token, s.refreshSecret)
	if err != nil {
		return false
	}
	if sub, _ := claims["sub"].(string); sub != user.ID {
		return false
	}
	return user.HasRefreshToken(token, now)
}

func (s *TokenService) parse(token string, secret []byte) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	tkn, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !tkn.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}
