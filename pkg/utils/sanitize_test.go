package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeEmail(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "ada@example.com", SanitizeEmail("  Ada@Example.COM "))
	assert.Equal(t, "ada@example.com", SanitizeEmail("<b>ada@example.com</b>"))
}

func TestSanitizeString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Ada Lovelace", SanitizeString("  Ada Lovelace  "))
	assert.Equal(t, "&lt;script&gt;", SanitizeString("<script>"))
}

func TestIsValidEmail(t *testing.T) {
	t.Parallel()

	assert.True(t, IsValidEmail("ada@example.com"))
	assert.False(t, IsValidEmail("not-an-email"))
	assert.False(t, IsValidEmail("@example.com"))
}
