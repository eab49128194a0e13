package utils

import (
	"errors"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// DefaultBcryptCost is used when no cost is configured. Verification with
// this cost takes tens of milliseconds on current hardware.
const DefaultBcryptCost = 12

// HashPassword derives a salted bcrypt digest from the plaintext password.
// The digest embeds its own salt and cost, so verification needs nothing else.
func HashPassword(password string, cost int) (string, error) {
	if password == "" {
		return "", errors.New("password must not be empty")
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultBcryptCost
	}

	bytes, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	return string(bytes), err
}

// CheckPassword reports whether password matches the bcrypt digest.
// A mismatch is not an error, it just returns false.
func CheckPassword(hashedPassword, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
	return err == nil
}

// maxPasswordBytes is bcrypt's input limit; GenerateFromPassword rejects
// anything longer instead of truncating.
const maxPasswordBytes = 72

func ValidatePassword(password string) error {
	if len(password) > maxPasswordBytes {
		return errors.New("password must be at most 72 bytes")
	}

	var (
		hasMinLength = false
		hasUpper     = false
		hasLower     = false
		hasNumber    = false
	)

	if len(password) >= 8 {
		hasMinLength = true
	}

	for _, char := range password {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsNumber(char):
			hasNumber = true
		}
	}

	if !hasMinLength || !hasUpper || !hasLower || !hasNumber {
		return errors.New("password must be at least 8 characters and contain uppercase, " +
			"lowercase and a number")
	}

	return nil
}
