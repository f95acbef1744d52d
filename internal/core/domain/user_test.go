package domain

import (
	"fmt"
	"testing"
	"time"
)

func TestUser_FullName(t *testing.T) {
	cases := []struct {
		first, last, want string
	}{
		{"Ada", "Lovelace", "Ada Lovelace"},
		{"Ada", "", "Ada"},
		{"", "Lovelace", "Lovelace"},
		{"", "", ""},
	}
	for _, tc := range cases {
		u := User{FirstName: tc.first, LastName: tc.last}
		if got := u.FullName(); got != tc.want {
			t.Errorf("FullName(%q,%q) = %q, want %q", tc.first, tc.last, got, tc.want)
		}
	}
}

func TestUser_LockoutThreshold(t *testing.T) {
	now := time.Now().UTC()
	u := &User{}

	for i := 0; i < MaxLoginAttempts-1; i++ {
		u.RegisterFailedLogin(now)
	}
	if u.IsLocked(now) {
		t.Fatalf("locked after %d attempts", MaxLoginAttempts-1)
	}

	u.RegisterFailedLogin(now)
	if !u.IsLocked(now) {
		t.Fatalf("not locked after %d attempts", MaxLoginAttempts)
	}
	if got := u.LockUntil.Sub(now); got != LockDuration {
		t.Fatalf("lock window = %v, want %v", got, LockDuration)
	}

	// The lock expires on its own.
	if u.IsLocked(now.Add(LockDuration + time.Minute)) {
		t.Fatalf("lock should have expired")
	}
}

func TestUser_SuccessfulLoginResetsLock(t *testing.T) {
	now := time.Now().UTC()
	u := &User{LoginAttempts: 5, LockUntil: now.Add(time.Hour)}

	u.RegisterSuccessfulLogin(now)

	if u.LoginAttempts != 0 || !u.LockUntil.IsZero() {
		t.Fatalf("lock state not cleared: attempts=%d lockUntil=%v", u.LoginAttempts, u.LockUntil)
	}
	if u.SessionCount != 1 || !u.LastLogin.Equal(now) || !u.LastActivity.Equal(now) {
		t.Fatalf("activity not recorded: %+v", u)
	}
}

func TestUser_ChangedPasswordAfter(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	u := &User{}

	if u.ChangedPasswordAfter(base) {
		t.Fatalf("never-changed password must not invalidate tokens")
	}

	u.PasswordChangedAt = base
	if u.ChangedPasswordAfter(base.Add(time.Second)) {
		t.Fatalf("token issued after the change must stay valid")
	}
	if !u.ChangedPasswordAfter(base.Add(-time.Second)) {
		t.Fatalf("token issued before the change must be invalid")
	}

	// Sub-second skew collapses at unix-second precision.
	if u.ChangedPasswordAfter(base.Add(500 * time.Millisecond)) {
		t.Fatalf("same-second issuance must not be invalidated")
	}
}

func TestUser_RefreshTokenListBounded(t *testing.T) {
	now := time.Now().UTC()
	u := &User{}

	for i := 0; i < MaxRefreshTokens+3; i++ {
		u.AddRefreshToken(fmt.Sprintf("tok-%d", i), "device", now, now.Add(time.Hour))
	}
	if len(u.RefreshTokens) != MaxRefreshTokens {
		t.Fatalf("list size = %d, want %d", len(u.RefreshTokens), MaxRefreshTokens)
	}

	// The oldest entries were evicted, the newest kept.
	if u.HasRefreshToken("tok-0", now) || u.HasRefreshToken("tok-2", now) {
		t.Fatalf("oldest tokens should have been evicted")
	}
	if !u.HasRefreshToken("tok-7", now) {
		t.Fatalf("newest token missing")
	}
}

func TestUser_AddRefreshTokenPrunesExpired(t *testing.T) {
	now := time.Now().UTC()
	u := &User{}

	u.AddRefreshToken("stale", "device", now.Add(-2*time.Hour), now.Add(-time.Hour))
	u.AddRefreshToken("fresh", "device", now, now.Add(time.Hour))

	if len(u.RefreshTokens) != 1 {
		t.Fatalf("expired token not pruned: %d entries", len(u.RefreshTokens))
	}
	if u.HasRefreshToken("stale", now) {
		t.Fatalf("expired token must not validate")
	}
	if !u.HasRefreshToken("fresh", now) {
		t.Fatalf("fresh token missing")
	}
}

func TestUser_RemoveRefreshToken(t *testing.T) {
	now := time.Now().UTC()
	u := &User{}
	u.AddRefreshToken("keep", "a", now, now.Add(time.Hour))
	u.AddRefreshToken("drop", "b", now, now.Add(time.Hour))

	if !u.RemoveRefreshToken("drop") {
		t.Fatalf("expected removal to report presence")
	}
	if u.RemoveRefreshToken("drop") {
		t.Fatalf("second removal must report absence")
	}
	if u.HasRefreshToken("drop", now) || !u.HasRefreshToken("keep", now) {
		t.Fatalf("wrong token removed: %+v", u.RefreshTokens)
	}
}

func TestValidRole(t *testing.T) {
	for _, r := range []Role{RoleAdmin, RoleManager, RoleUser, RoleViewer} {
		if !ValidRole(r) {
			t.Errorf("ValidRole(%q) = false", r)
		}
	}
	if ValidRole("root") || ValidRole("") {
		t.Errorf("unknown roles must be rejected")
	}
}
