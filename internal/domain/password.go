package domain

import (
	"strings"
	"unicode"
)

// PasswordMinLength is the minimum length of a new password.
const PasswordMinLength = 8

const passwordSpecialChars = `!@#$%^&*(),.?":{}|<>`

// PasswordPolicy lists which requirements a candidate password meets.
type PasswordPolicy struct {
	MinLength      bool `json:"minLength"`
	HasUpperCase   bool `json:"hasUpperCase"`
	HasLowerCase   bool `json:"hasLowerCase"`
	HasNumbers     bool `json:"hasNumbers"`
	HasSpecialChar bool `json:"hasSpecialChar"`
}

// CheckPassword evaluates password against the password policy.
func CheckPassword(password string) PasswordPolicy {
	policy := PasswordPolicy{
		MinLength: len([]rune(password)) >= PasswordMinLength,
	}

	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			policy.HasUpperCase = true
		case unicode.IsLower(r):
			policy.HasLowerCase = true
		case unicode.IsDigit(r):
			policy.HasNumbers = true
		case strings.ContainsRune(passwordSpecialChars, r):
			policy.HasSpecialChar = true
		}
	}

	return policy
}

// Valid reports whether every requirement is met.
func (p PasswordPolicy) Valid() bool {
	return p.MinLength && p.HasUpperCase && p.HasLowerCase && p.HasNumbers && p.HasSpecialChar
}
