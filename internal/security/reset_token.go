package security

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"time"
)

// ErrInvalidResetToken is returned when a password reset token is malformed, expired, or no longer bound
// to the user's current password hash.
var ErrInvalidResetToken = errors.New("invalid or expired password reset token")

// ResetTokens issues stateless password reset tokens. A token is an HMAC over the user id, the current
// password hash and an expiry, so it stops verifying as soon as the password changes.
type ResetTokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewResetTokens returns a ResetTokens keyed by secret. A non-positive ttl selects one hour.
func NewResetTokens(secret []byte, ttl time.Duration) (*ResetTokens, error) {
	if len(secret) == 0 {
		return nil, ErrIssuerConfig
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &ResetTokens{secret: secret, ttl: ttl, now: time.Now}, nil
}

// Issue returns a URL-safe reset token for userID bound to passwordHash.
func (r *ResetTokens) Issue(userID, passwordHash string) string {
	exp := r.now().Add(r.ttl).Unix()
	buf := make([]byte, 8, 8+sha256.Size)
	binary.BigEndian.PutUint64(buf, uint64(exp))
	buf = append(buf, r.mac(userID, passwordHash, buf[:8])...)
	return base64.RawURLEncoding.EncodeToString(buf)
}

// Verify checks token against userID and the current passwordHash.
func (r *ResetTokens) Verify(userID, passwordHash, token string) error {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil || len(raw) != 8+sha256.Size {
		return ErrInvalidResetToken
	}
	exp := int64(binary.BigEndian.Uint64(raw[:8]))
	if r.now().Unix() > exp {
		return ErrInvalidResetToken
	}
	if !hmac.Equal(raw[8:], r.mac(userID, passwordHash, raw[:8])) {
		return ErrInvalidResetToken
	}
	return nil
}

func (r *ResetTokens) mac(userID, passwordHash string, exp []byte) []byte {
	m := hmac.New(sha256.New, r.secret)
	m.Write([]byte("password-reset\x00"))
	m.Write([]byte(userID))
	m.Write([]byte{0})
	m.Write([]byte(passwordHash))
	m.Write([]byte{0})
	m.Write(exp)
	return m.Sum(nil)
}
