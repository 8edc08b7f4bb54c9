package rbac

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"employee-directory/backend/internal/server/interceptors"
)

// RoleGetter returns a user's role grants. Used by the guards to resolve the caller's role
// from the store rather than from the token, so demotions apply immediately.
type RoleGetter interface {
	GetRoles(ctx context.Context, userID string) ([]Role, error)
}

// RequireCaller ensures the caller is authenticated and holds at least one known role.
// Returns (userID, effective role, nil) on success; returns a gRPC error (Unauthenticated,
// PermissionDenied or Internal) on failure.
func RequireCaller(ctx context.Context, getter RoleGetter) (userID string, role Role, err error) {
	userID, ok := interceptors.GetUserID(ctx)
	if !ok || userID == "" {
		return "", "", status.Error(codes.Unauthenticated, "user context required")
	}
	grants, err := getter.GetRoles(ctx, userID)
	if err != nil {
		return "", "", status.Error(codes.Internal, "failed to resolve roles")
	}
	role, ok = EffectiveRole(grants)
	if !ok {
		return "", "", status.Error(codes.PermissionDenied, "no role granted")
	}
	return userID, role, nil
}
