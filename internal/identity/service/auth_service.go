package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"employee-directory/backend/internal/logging"
	"employee-directory/backend/internal/platform/rbac"
	refreshdomain "employee-directory/backend/internal/refreshtoken/domain"
	"employee-directory/backend/internal/security"
	userdomain "employee-directory/backend/internal/user/domain"
)

const meterName = "employee-directory/backend/identity"

// Token is the credential envelope returned by sign-in and refresh.
type Token struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	UserID       string
	Role         rbac.Role
	FirstName    string
}

// UserLookup is the minimal user repository needed by the auth service.
type UserLookup interface {
	GetByUserName(ctx context.Context, userName string) (*userdomain.User, error)
}

// RefreshTokenRepo is the refresh token store used for issuance and rotation.
type RefreshTokenRepo interface {
	GetByUserID(ctx context.Context, userID string) (*refreshdomain.RefreshToken, error)
	Replace(ctx context.Context, t *refreshdomain.RefreshToken) error
	Consume(ctx context.Context, userID, tokenHash string) (bool, error)
	DeleteByUserID(ctx context.Context, userID string) (bool, error)
}

// AuthService issues access/refresh pairs and rotates refresh tokens.
type AuthService struct {
	users     UserLookup
	refresh   RefreshTokenRepo
	tokens    *security.TokenProvider
	log       logrus.FieldLogger
	rotations metric.Int64Counter
	now       func() time.Time
}

// NewAuthService returns an AuthService. Refresh tokens expire with the access token lifetime.
func NewAuthService(users UserLookup, refresh RefreshTokenRepo, tokens *security.TokenProvider, log logrus.FieldLogger) *AuthService {
	if log == nil {
		log = logging.Discard()
	}
	rotations, _ := otel.Meter(meterName).Int64Counter("auth.refresh.rotations",
		metric.WithDescription("Refresh token swaps by outcome"))
	return &AuthService{
		users:     users,
		refresh:   refresh,
		tokens:    tokens,
		log:       log,
		rotations: rotations,
		now:       time.Now,
	}
}

// GenerateToken signs an access token for u and replaces u's refresh token with a fresh one.
func (s *AuthService) GenerateToken(ctx context.Context, u *userdomain.User) (*Token, error) {
	role, ok := u.EffectiveRole()
	if !ok {
		return nil, businessError(ctx, "user has no role", ErrInvalidRole)
	}
	access, _, expiresAt, err := s.tokens.IssueAccess(u.ID, string(role), rbac.Strings(u.Roles))
	if err != nil {
		return nil, err
	}
	raw, err := security.NewRefreshToken()
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	if err := s.refresh.Replace(ctx, &refreshdomain.RefreshToken{
		ID:         uuid.New().String(),
		UserID:     u.ID,
		TokenHash:  security.HashRefreshToken(raw),
		ExpireDate: now.Add(s.tokens.TTL()),
		CreatedAt:  now,
	}); err != nil {
		return nil, err
	}
	return &Token{
		AccessToken:  access,
		RefreshToken: raw,
		ExpiresAt:    expiresAt,
		UserID:       u.ID,
		Role:         role,
		FirstName:    u.FirstName,
	}, nil
}

// RefreshSwap redeems refreshToken for userName exactly once and returns a new pair.
// A mismatching value leaves the stored token in place.
func (s *AuthService) RefreshSwap(ctx context.Context, userName, refreshToken string) (*Token, error) {
	log := logging.FromContext(ctx, s.log)
	u, err := s.users.GetByUserName(ctx, userName)
	if err != nil {
		return nil, err
	}
	if u == nil {
		s.countRotation(ctx, "user_not_found")
		return nil, businessError(ctx, "user not found", ErrNotFound)
	}
	stored, err := s.refresh.GetByUserID(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		s.countRotation(ctx, "token_not_found")
		return nil, businessError(ctx, "refresh token not found", ErrNotFound)
	}
	if stored.Expired(s.now()) {
		if _, err := s.refresh.Consume(ctx, u.ID, stored.TokenHash); err != nil {
			return nil, err
		}
		s.countRotation(ctx, "expired")
		return nil, businessError(ctx, "refresh token expired", ErrInvalidRefreshToken)
	}
	if !security.RefreshTokenHashEqual(refreshToken, stored.TokenHash) {
		s.countRotation(ctx, "mismatch")
		log.WithField("user_id", u.ID).Warn("refresh token mismatch")
		return nil, businessError(ctx, "invalid refresh token", ErrInvalidRefreshToken)
	}
	consumed, err := s.refresh.Consume(ctx, u.ID, stored.TokenHash)
	if err != nil {
		return nil, err
	}
	if !consumed {
		// Another swap burned the token between the read and the delete.
		s.countRotation(ctx, "race_lost")
		return nil, businessError(ctx, "invalid refresh token", ErrInvalidRefreshToken)
	}
	tok, err := s.GenerateToken(ctx, u)
	if err != nil {
		return nil, err
	}
	s.countRotation(ctx, "rotated")
	log.WithField("user_id", u.ID).Info("refresh token rotated")
	return tok, nil
}

// RemoveRefreshToken deletes the user's refresh token. Returns false when none existed.
func (s *AuthService) RemoveRefreshToken(ctx context.Context, userID string) (bool, error) {
	return s.refresh.DeleteByUserID(ctx, userID)
}

func (s *AuthService) countRotation(ctx context.Context, outcome string) {
	if s.rotations != nil {
		s.rotations.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
	}
}
