package repository

import (
	"context"

	"employee-directory/backend/internal/refreshtoken/domain"
)

// Repository persists at most one live refresh token per user.
type Repository interface {
	// GetByUserID returns the user's live token, or nil if none exists.
	GetByUserID(ctx context.Context, userID string) (*domain.RefreshToken, error)
	// Replace atomically drops any existing token for t.UserID and stores t.
	Replace(ctx context.Context, t *domain.RefreshToken) error
	// Consume deletes the user's token only if its hash equals tokenHash.
	// It returns false when no row matched, including when a concurrent call consumed it first.
	Consume(ctx context.Context, userID, tokenHash string) (bool, error)
	// DeleteByUserID removes the user's token. Returns false when none existed.
	DeleteByUserID(ctx context.Context, userID string) (bool, error)
}
