package domain

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"time"
)

// TokenSpec parametrizes the single-use hashed-token pattern shared by
// password reset, email verification, and invitations: generate random bytes,
// store only the SHA-256 hash plus expiry, email the raw value, validate by
// re-hashing the presented value, clear both fields on success.
type TokenSpec struct {
	TTL time.Duration
}

// The three token flavors used by the portal.
var (
	PasswordResetToken     = TokenSpec{TTL: 10 * time.Minute}
	EmailVerificationToken = TokenSpec{TTL: 24 * time.Hour}
	InvitationToken        = TokenSpec{TTL: 7 * 24 * time.Hour}
)

// Generate returns the raw token to be emailed, its stored hash, and the
// expiry computed from now.
func (s TokenSpec) Generate(now time.Time) (raw, hash string, expires time.Time, err error) {
	b := make([]byte, 32)
	if _, err = rand.Read(b); err != nil {
		return "", "", time.Time{}, err
	}
	raw = hex.EncodeToString(b)
	return raw, HashToken(raw), now.Add(s.TTL), nil
}

// HashToken is the stored form of a raw token. Raw values never touch the
// credential store.
func HashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// VerifyToken re-hashes the presented raw value and matches it against the
// stored hash and expiry. Constant-time hash comparison.
func VerifyToken(raw, storedHash string, expires, now time.Time) bool {
	if storedHash == "" || expires.IsZero() || !expires.After(now) {
		return false
	}
	presented := HashToken(raw)
	return subtle.ConstantTimeCompare([]byte(presented), []byte(storedHash)) == 1
}
