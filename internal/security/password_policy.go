package security

import (
	"errors"
	"strings"
)

const (
	PasswordMinLength = 8
	PasswordMaxLength = 64
	// PasswordSymbols lists the special characters a password must draw at least one from.
	PasswordSymbols = "@$!%*?&"
)

// ErrPasswordPolicy is returned when a password does not satisfy the complexity policy.
var ErrPasswordPolicy = errors.New("password must be 8-64 characters with at least one uppercase letter, one lowercase letter, one number, and one of @$!%*?&")

// ValidatePasswordPolicy checks password against the complexity policy: length 8–64, only
// letters, digits and PasswordSymbols, with at least one of each class.
func ValidatePasswordPolicy(password string) error {
	if len(password) < PasswordMinLength || len(password) > PasswordMaxLength {
		return ErrPasswordPolicy
	}
	var hasUpper, hasLower, hasNumber, hasSymbol bool
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= 'a' && r <= 'z':
			hasLower = true
		case r >= '0' && r <= '9':
			hasNumber = true
		case strings.ContainsRune(PasswordSymbols, r):
			hasSymbol = true
		default:
			return ErrPasswordPolicy
		}
	}
	if !hasUpper || !hasLower || !hasNumber || !hasSymbol {
		return ErrPasswordPolicy
	}
	return nil
}
