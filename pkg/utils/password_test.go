package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword(t *testing.T) {
	t.Parallel()

	digest, err := HashPassword("LongPass1", bcrypt.MinCost)
	require.NoError(t, err)

	assert.NotEqual(t, "LongPass1", digest)
	assert.True(t, CheckPassword(digest, "LongPass1"))
}

func TestHashPassword_Empty(t *testing.T) {
	t.Parallel()

	_, err := HashPassword("", bcrypt.MinCost)
	assert.Error(t, err)
}

func TestHashPassword_CostOutOfRange(t *testing.T) {
	t.Parallel()

	// An out-of-range cost falls back to the default instead of failing.
	digest, err := HashPassword("LongPass1", 99)
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(digest))
	require.NoError(t, err)
	assert.Equal(t, DefaultBcryptCost, cost)
}

func TestCheckPassword_Mismatch(t *testing.T) {
	t.Parallel()

	digest, err := HashPassword("LongPass1", bcrypt.MinCost)
	require.NoError(t, err)

	assert.False(t, CheckPassword(digest, "WrongPass1"))
	assert.False(t, CheckPassword(digest, ""))
	assert.False(t, CheckPassword("not-a-digest", "LongPass1"))
}

func TestValidatePassword(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"valid", "LongPass1", false},
		{"too short", "Lp1", true},
		{"no uppercase", "longpass1", true},
		{"no lowercase", "LONGPASS1", true},
		{"no number", "LongPassword", true},
		{"over bcrypt limit", "Aa1" + strings.Repeat("a", 80), true},
		{"at bcrypt limit", "Aa1" + strings.Repeat("a", 69), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
