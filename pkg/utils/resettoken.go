package utils

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"time"
)

// resetTokenBytes gives 256 bits of entropy per reset token.
const resetTokenBytes = 32

// GenerateResetToken returns a random one-time reset token together with the
// SHA-256 digest to persist. The plaintext is disclosed to the user exactly
// once and never stored.
func GenerateResetToken() (plaintext, digest string, err error) {
	buf := make([]byte, resetTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", "", fmt.Errorf("failed to generate reset token: %w", err)
	}

	plaintext = hex.EncodeToString(buf)
	return plaintext, HashResetToken(plaintext), nil
}

// HashResetToken returns the hex-encoded SHA-256 digest of a reset token.
func HashResetToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// VerifyResetToken reports whether the plaintext token matches the stored
// digest and is still within its expiry window. Wrong token and expired token
// are indistinguishable in the result, and the comparison is constant time.
func VerifyResetToken(plaintext, storedDigest string, expiresAt, now time.Time) bool {
	if storedDigest == "" || expiresAt.IsZero() {
		return false
	}

	match := subtle.ConstantTimeCompare(
		[]byte(HashResetToken(plaintext)),
		[]byte(storedDigest),
	) == 1

	return match && !now.After(expiresAt)
}
