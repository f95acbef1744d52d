package domain

import (
	"testing"
	"time"
)

func TestTokenSpec_Generate(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	raw, hash, expires, err := PasswordResetToken.Generate(now)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(raw) != 64 {
		t.Fatalf("raw token = %d chars, want 64", len(raw))
	}
	if hash == raw {
		t.Fatalf("stored hash must differ from the raw token")
	}
	if hash != HashToken(raw) {
		t.Fatalf("hash does not match HashToken(raw)")
	}
	if !expires.Equal(now.Add(10 * time.Minute)) {
		t.Fatalf("reset token expiry = %v, want now+10m", expires)
	}

	// Each flavor carries its own TTL.
	if _, _, exp, _ := EmailVerificationToken.Generate(now); !exp.Equal(now.Add(24 * time.Hour)) {
		t.Fatalf("verification token expiry = %v, want now+24h", exp)
	}
	if _, _, exp, _ := InvitationToken.Generate(now); !exp.Equal(now.Add(7 * 24 * time.Hour)) {
		t.Fatalf("invitation token expiry = %v, want now+7d", exp)
	}

	raw2, _, _, _ := PasswordResetToken.Generate(now)
	if raw == raw2 {
		t.Fatalf("tokens must not repeat")
	}
}

func TestVerifyToken(t *testing.T) {
	now := time.Now().UTC()
	raw, hash, expires, err := EmailVerificationToken.Generate(now)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if !VerifyToken(raw, hash, expires, now) {
		t.Fatalf("valid token rejected")
	}
	if VerifyToken("not-the-token", hash, expires, now) {
		t.Fatalf("wrong raw value accepted")
	}
	if VerifyToken(raw, hash, expires, expires.Add(time.Second)) {
		t.Fatalf("expired token accepted")
	}
	if VerifyToken(raw, "", expires, now) {
		t.Fatalf("empty stored hash accepted")
	}
	if VerifyToken(raw, hash, time.Time{}, now) {
		t.Fatalf("zero expiry accepted")
	}
}
