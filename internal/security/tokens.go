package security

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AccessTokenType is the JWT "typ" header set on access tokens.
const AccessTokenType = "at+jwt"

var (
	// ErrInvalidToken is returned when a token is malformed, badly signed, expired, or for another issuer/audience.
	ErrInvalidToken = errors.New("invalid token")
	// ErrIssuerConfig is returned when the signing key is missing; it is a startup failure, never a per-request one.
	ErrIssuerConfig = errors.New("token issuer: signing key is not configured")
)

// AccessClaims holds JWT claims for the access token.
type AccessClaims struct {
	jwt.RegisteredClaims
	// Role is the effective role used for authorization decisions.
	Role string `json:"role"`
	// Roles lists every role grant of the principal.
	Roles []string `json:"roles,omitempty"`
}

// TokenProvider issues and validates HS256-signed access tokens.
type TokenProvider struct {
	secret   []byte
	issuer   string
	audience string
	ttl      time.Duration
	now      func() time.Time
}

// NewTokenProvider returns a TokenProvider signing with secret. issuer and audience are set on
// every token and checked on validation. ttl is the access token lifetime and must be positive.
func NewTokenProvider(secret []byte, issuer, audience string, ttl time.Duration) (*TokenProvider, error) {
	if len(secret) == 0 {
		return nil, ErrIssuerConfig
	}
	if ttl <= 0 {
		return nil, &ConfigError{Setting: "JWT_EXPIRES_AT", Reason: "access token lifetime must be positive"}
	}
	return &TokenProvider{
		secret:   slices.Clone(secret),
		issuer:   issuer,
		audience: audience,
		ttl:      ttl,
		now:      time.Now,
	}, nil
}

// TTL returns the configured access token lifetime.
func (p *TokenProvider) TTL() time.Duration { return p.ttl }

// IssueAccess signs an access token for userID. roles are all grants; role is the effective one.
// Returns the token, its jti and its expiry.
func (p *TokenProvider) IssueAccess(userID, role string, roles []string) (token, jti string, expiresAt time.Time, err error) {
	jti, err = generateJTI()
	if err != nil {
		return "", "", time.Time{}, err
	}
	now := p.now().UTC()
	expiresAt = now.Add(p.ttl)
	claims := AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   userID,
			Issuer:    p.issuer,
			Audience:  jwt.ClaimStrings{p.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Role:  role,
		Roles: roles,
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	t.Header["typ"] = AccessTokenType
	token, err = t.SignedString(p.secret)
	return token, jti, expiresAt, err
}

// ValidateAccess parses and validates the access token (signature, nbf/exp, iss, aud).
func (p *TokenProvider) ValidateAccess(tokenString string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return p.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(p.issuer),
		jwt.WithAudience(p.audience),
		jwt.WithTimeFunc(p.now),
	)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func generateJTI() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
