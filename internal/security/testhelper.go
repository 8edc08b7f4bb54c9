package security

import "time"

// Test signing secret for unit tests only. Do not use in production.
const testSigningSecret = "unit-test-signing-secret-0123456789"

// NewTestTokenProvider returns a TokenProvider using an embedded test secret and a one-day lifetime.
// For unit tests only. Callers must not use in production.
func NewTestTokenProvider() (*TokenProvider, error) {
	return NewTokenProvider([]byte(testSigningSecret), "test-issuer", "test-audience", 24*time.Hour)
}

// NewTestCipher returns a Cipher using the embedded test decrypt key. For unit tests only.
func NewTestCipher() (*Cipher, error) {
	return NewCipher([]byte("@my-secret-key-@"))
}
