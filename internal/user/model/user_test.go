package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestChangedPasswordAfter(t *testing.T) {
	t.Parallel()

	changed := time.Now()
	u := &User{PasswordChangedAt: changed}

	assert.True(t, u.ChangedPasswordAfter(changed.Add(-time.Hour)))
	assert.False(t, u.ChangedPasswordAfter(changed.Add(time.Hour)))

	// Never changed: nothing can be stale.
	fresh := &User{}
	assert.False(t, fresh.ChangedPasswordAfter(time.Now()))
}

func TestHasValidResetToken(t *testing.T) {
	t.Parallel()

	now := time.Now()

	withToken := &User{
		ResetTokenHash:    "abc",
		ResetTokenExpires: now.Add(10 * time.Minute),
	}
	assert.True(t, withToken.HasValidResetToken(now))
	assert.False(t, withToken.HasValidResetToken(now.Add(11*time.Minute)))

	assert.False(t, (&User{}).HasValidResetToken(now))
	assert.False(t, (&User{ResetTokenHash: "abc"}).HasValidResetToken(now))
}
