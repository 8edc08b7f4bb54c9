package repository

import (
	"context"

	"employee-directory/backend/internal/platform/rbac"
	"employee-directory/backend/internal/user/domain"
)

// Repository defines persistence for users and their role grants.
// Getters return (nil, nil) when the user does not exist.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByUserName(ctx context.Context, userName string) (*domain.User, error)
	// Create inserts the user and its role grants in one transaction.
	Create(ctx context.Context, u *domain.User) error
	// Update writes profile fields. Returns false when no row matched.
	Update(ctx context.Context, u *domain.User) (bool, error)
	Delete(ctx context.Context, id string) (bool, error)
	SetRoles(ctx context.Context, userID string, roles []rbac.Role) error
	GetRoles(ctx context.Context, userID string) ([]rbac.Role, error)
	SetPasswordHash(ctx context.Context, userID, hash string) error
	// IncrementAccessFailed bumps the failed sign-in counter and returns the new value.
	IncrementAccessFailed(ctx context.Context, userID string) (int, error)
	ResetAccessFailed(ctx context.Context, userID string) error
	List(ctx context.Context) ([]domain.UserWithManager, error)
}
