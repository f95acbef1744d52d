package service

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/saasportal/admin-api/internal/core/domain"
)

func newTestTokenService(t *testing.T) *TokenService {
	t.Helper()
	svc, err := NewTokenService("access-secret", "refresh-secret", time.Hour, 24*time.Hour)
	if err != nil {
		t.Fatalf("NewTokenService returned error: %v", err)
	}
	return svc
}

func TestTokenService_MissingSecrets(t *testing.T) {
	if _, err := NewTokenService("", "refresh", 0, 0); err == nil {
		t.Fatalf("expected error for empty access secret")
	}
	if _, err := NewTokenService("access", "", 0, 0); err == nil {
		t.Fatalf("expected error for empty refresh secret")
	}
}

func TestTokenService_IssueAndVerifyAccess(t *testing.T) {
	svc := newTestTokenService(t)

	pair, err := svc.Issue("u1")
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatalf("expected both tokens, got %+v", pair)
	}
	if pair.AccessToken == pair.RefreshToken {
		t.Fatalf("access and refresh tokens must differ")
	}

	userID, issuedAt, err := svc.VerifyAccess(pair.AccessToken)
	if err != nil {
		t.Fatalf("VerifyAccess returned error: %v", err)
	}
	if userID != "u1" {
		t.Fatalf("expected subject u1, got %q", userID)
	}
	if issuedAt.IsZero() || time.Since(issuedAt) > time.Minute {
		t.Fatalf("unexpected issued-at: %v", issuedAt)
	}
}

func TestTokenService_VerifyAccess_BadSignature(t *testing.T) {
	svc := newTestTokenService(t)

	forged := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "u1",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := forged.SignedString([]byte("wrong-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, _, err := svc.VerifyAccess(signed); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestTokenService_VerifyAccess_Expired(t *testing.T) {
	svc := newTestTokenService(t)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "u1",
		"iat": time.Now().Add(-2 * time.Hour).Unix(),
		"exp": time.Now().Add(-time.Hour).Unix(),
	})
	signed, err := expired.SignedString([]byte("access-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, _, err := svc.VerifyAccess(signed); !errors.Is(err, domain.ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestTokenService_VerifyRefresh_RequiresStoredToken(t *testing.T) {
	svc := newTestTokenService(t)
	now := time.Now().UTC()

	pair, err := svc.Issue("u1")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	user := &domain.User{ID: "u1"}
	// Signature checks out but the token was never stored: invalid.
	if svc.VerifyRefresh(pair.RefreshToken, user, now) {
		t.Fatalf("refresh token absent from store must be invalid")
	}

	user.AddRefreshToken(pair.RefreshToken, "test-device", now, now.Add(24*time.Hour))
	if !svc.VerifyRefresh(pair.RefreshToken, user, now) {
		t.Fatalf("stored refresh token should verify")
	}

	// Revocation: removing the stored entry invalidates the token even
	// though its signature is still good.
	user.RemoveRefreshToken(pair.RefreshToken)
	if svc.VerifyRefresh(pair.RefreshToken, user, now) {
		t.Fatalf("removed refresh token must fail verification")
	}
}

func TestTokenService_VerifyRefresh_WrongSubject(t *testing.T) {
	svc := newTestTokenService(t)
	now := time.Now().UTC()

	pair, _ := svc.Issue("u1")
	other := &domain.User{ID: "u2"}
	other.AddRefreshToken(pair.RefreshToken, "d", now, now.Add(time.Hour))

	if svc.VerifyRefresh(pair.RefreshToken, other, now) {
		t.Fatalf("token subject must match the user")
	}
}

func TestTokenService_RefreshSubject(t *testing.T) {
	svc := newTestTokenService(t)

	pair, _ := svc.Issue("u42")
	sub, err := svc.RefreshSubject(pair.RefreshToken)
	if err != nil {
		t.Fatalf("RefreshSubject: %v", err)
	}
	if sub != "u42" {
		t.Fatalf("expected u42, got %q", sub)
	}

	// Access tokens are signed with a different secret and must not pass.
	if _, err := svc.RefreshSubject(pair.AccessToken); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid for access token, got %v", err)
	}
}
