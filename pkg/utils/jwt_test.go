package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "trosc-backend/pkg/errors"
)

func TestGenerateAndValidateToken(t *testing.T) {
	t.Parallel()

	token, err := GenerateToken("user-123", "ada@example.com", "user", "super-secret", 7)
	require.NoError(t, err)

	claims, err := ValidateToken(token, "super-secret")
	require.NoError(t, err)

	assert.Equal(t, "user-123", claims.UserID)
	assert.Equal(t, "ada@example.com", claims.Email)
	assert.Equal(t, "user", claims.Role)
	require.NotNil(t, claims.IssuedAt)
	assert.WithinDuration(t, time.Now(), claims.IssuedAt.Time, time.Minute)
}

func TestValidateToken_Expired(t *testing.T) {
	t.Parallel()

	token, err := GenerateToken("u1", "u1@example.com", "user", "secret", -1)
	require.NoError(t, err)

	_, err = ValidateToken(token, "secret")
	assert.ErrorIs(t, err, appErrors.ErrTokenExpired)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	t.Parallel()

	token, err := GenerateToken("u2", "u2@example.com", "user", "right-secret", 7)
	require.NoError(t, err)

	_, err = ValidateToken(token, "wrong-secret")
	assert.ErrorIs(t, err, appErrors.ErrTokenInvalid)
}

func TestValidateToken_Malformed(t *testing.T) {
	t.Parallel()

	_, err := ValidateToken("not.a.jwt", "secret")
	assert.ErrorIs(t, err, appErrors.ErrTokenInvalid)
}
