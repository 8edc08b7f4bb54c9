package rbac

import (
	"context"
	"errors"
	"testing"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"employee-directory/backend/internal/server/interceptors"
)

type stubRoleGetter struct {
	roles map[string][]Role
	err   error
}

func (s *stubRoleGetter) GetRoles(_ context.Context, userID string) ([]Role, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.roles[userID], nil
}

func codeOf(err error) codes.Code { return status.Code(err) }

func TestRequireCaller(t *testing.T) {
	getter := &stubRoleGetter{roles: map[string][]Role{
		"lead": {RoleEmployee, RoleLeader},
		"none": nil,
	}}

	if _, _, err := RequireCaller(context.Background(), getter); codeOf(err) != codes.Unauthenticated {
		t.Errorf("no identity: code = %v, want Unauthenticated", codeOf(err))
	}

	ctx := interceptors.WithIdentity(context.Background(), "lead", "Employee", "jti")
	userID, role, err := RequireCaller(ctx, getter)
	if err != nil {
		t.Fatalf("RequireCaller: %v", err)
	}
	if userID != "lead" || role != RoleLeader {
		t.Errorf("got (%q, %q), want (lead, Leader): stored grants win over token claim", userID, role)
	}

	ctx = interceptors.WithIdentity(context.Background(), "none", "", "jti")
	if _, _, err := RequireCaller(ctx, getter); codeOf(err) != codes.PermissionDenied {
		t.Errorf("no grants: code = %v, want PermissionDenied", codeOf(err))
	}

	getter.err = errors.New("db down")
	ctx = interceptors.WithIdentity(context.Background(), "lead", "", "jti")
	if _, _, err := RequireCaller(ctx, getter); codeOf(err) != codes.Internal {
		t.Errorf("store error: code = %v, want Internal", codeOf(err))
	}
}
