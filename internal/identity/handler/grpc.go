package handler

import (
	"context"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"employee-directory/backend/internal/identity/service"
	"employee-directory/backend/internal/platform/rbac"
	"employee-directory/backend/internal/server/interceptors"
	userdomain "employee-directory/backend/internal/user/domain"
)

// Accounts is the account orchestration used by AccountServer.
type Accounts interface {
	SignIn(ctx context.Context, userName, encryptedPassword string) (*service.Token, error)
	SignUp(ctx context.Context, creds service.Credentials, in service.CreateUser) (string, error)
	UpdateUser(ctx context.Context, actorID, targetID string, in service.UpdateUser) error
	DeleteUser(ctx context.Context, actorID, targetID string) error
	SignOut(ctx context.Context) bool
	Refresh(ctx context.Context, userName, refreshToken string) (*service.Token, error)
	GetCurrentUser(ctx context.Context) (*userdomain.User, error)
	ListUsers(ctx context.Context) ([]userdomain.UserWithManager, error)
	CanCreateUser(current *userdomain.User, requestedRole string) bool
}

// AccountServer implements employees.v1.AccountService.
type AccountServer struct {
	accounts Accounts
	roles    rbac.RoleGetter
}

// NewAccountServer returns an AccountServer. If accounts is nil, every RPC returns Unimplemented.
func NewAccountServer(accounts Accounts, roles rbac.RoleGetter) *AccountServer {
	return &AccountServer{accounts: accounts, roles: roles}
}

func (s *AccountServer) SignIn(ctx context.Context, req *SignInRequest) (*TokenResponse, error) {
	if s.accounts == nil {
		return nil, status.Error(codes.Unimplemented, "method SignIn not implemented")
	}
	if err := invalid(req); err != nil {
		return nil, err
	}
	tok, err := s.accounts.SignIn(ctx, req.UserName, req.Password)
	if err != nil {
		return nil, toStatus(ctx, err)
	}
	return tokenResponse(tok), nil
}

// SignUp creates an account. The caller must be allowed to provision the requested role.
func (s *AccountServer) SignUp(ctx context.Context, req *SignUpRequest) (*SignUpResponse, error) {
	if s.accounts == nil {
		return nil, status.Error(codes.Unimplemented, "method SignUp not implemented")
	}
	if err := invalid(req); err != nil {
		return nil, err
	}
	current, err := s.accounts.GetCurrentUser(ctx)
	if err != nil {
		return nil, toStatus(ctx, err)
	}
	if !s.accounts.CanCreateUser(current, req.Role) {
		return nil, status.Errorf(codes.PermissionDenied, "not allowed to create a user with role %s", req.Role)
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	token, err := s.accounts.SignUp(ctx,
		service.Credentials{UserName: email, Password: req.Password},
		service.CreateUser{
			FirstName:   req.FirstName,
			LastName:    req.LastName,
			Email:       email,
			DocNumber:   req.DocNumber,
			PhoneNumber: req.PhoneNumber,
			ManagerID:   req.ManagerID,
			Role:        req.Role,
		})
	if err != nil {
		return nil, toStatus(ctx, err)
	}
	return &SignUpResponse{ConfirmationToken: token}, nil
}

func (s *AccountServer) UpdateUser(ctx context.Context, req *UpdateUserRequest) (*UpdateUserResponse, error) {
	if s.accounts == nil {
		return nil, status.Error(codes.Unimplemented, "method UpdateUser not implemented")
	}
	if err := invalid(req); err != nil {
		return nil, err
	}
	actorID, ok := interceptors.GetUserID(ctx)
	if !ok || actorID == "" {
		return nil, status.Error(codes.Unauthenticated, "user context required")
	}
	err := s.accounts.UpdateUser(ctx, actorID, req.UserID, service.UpdateUser{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		DocNumber:   req.DocNumber,
		PhoneNumber: req.PhoneNumber,
		ManagerID:   req.ManagerID,
		Role:        req.Role,
		Password:    req.Password,
	})
	if err != nil {
		return nil, toStatus(ctx, err)
	}
	return &UpdateUserResponse{}, nil
}

func (s *AccountServer) DeleteUser(ctx context.Context, req *DeleteUserRequest) (*DeleteUserResponse, error) {
	if s.accounts == nil {
		return nil, status.Error(codes.Unimplemented, "method DeleteUser not implemented")
	}
	if err := invalid(req); err != nil {
		return nil, err
	}
	actorID, ok := interceptors.GetUserID(ctx)
	if !ok || actorID == "" {
		return nil, status.Error(codes.Unauthenticated, "user context required")
	}
	if err := s.accounts.DeleteUser(ctx, actorID, req.UserID); err != nil {
		return nil, toStatus(ctx, err)
	}
	return &DeleteUserResponse{}, nil
}

// SignOut always answers OK; Success reports whether the session was torn down.
func (s *AccountServer) SignOut(ctx context.Context, _ *SignOutRequest) (*SignOutResponse, error) {
	if s.accounts == nil {
		return nil, status.Error(codes.Unimplemented, "method SignOut not implemented")
	}
	return &SignOutResponse{Success: s.accounts.SignOut(ctx)}, nil
}

func (s *AccountServer) Refresh(ctx context.Context, req *RefreshRequest) (*TokenResponse, error) {
	if s.accounts == nil {
		return nil, status.Error(codes.Unimplemented, "method Refresh not implemented")
	}
	if err := invalid(req); err != nil {
		return nil, err
	}
	refresh := req.RefreshToken
	if refresh == "" {
		refresh = interceptors.CookieValue(ctx, interceptors.RefreshTokenCookie)
	}
	if refresh == "" {
		return nil, status.Error(codes.InvalidArgument, "refresh_token required")
	}
	tok, err := s.accounts.Refresh(ctx, req.UserName, refresh)
	if err != nil {
		return nil, toStatus(ctx, err)
	}
	return tokenResponse(tok), nil
}

func (s *AccountServer) GetCurrentUser(ctx context.Context, _ *GetCurrentUserRequest) (*UserResponse, error) {
	if s.accounts == nil {
		return nil, status.Error(codes.Unimplemented, "method GetCurrentUser not implemented")
	}
	u, err := s.accounts.GetCurrentUser(ctx)
	if err != nil {
		return nil, toStatus(ctx, err)
	}
	resp := userResponse(userdomain.UserWithManager{User: *u})
	return &resp, nil
}

// ListUsers returns the directory. Any caller holding a known role may list it.
func (s *AccountServer) ListUsers(ctx context.Context, _ *ListUsersRequest) (*ListUsersResponse, error) {
	if s.accounts == nil || s.roles == nil {
		return nil, status.Error(codes.Unimplemented, "method ListUsers not implemented")
	}
	if _, _, err := rbac.RequireCaller(ctx, s.roles); err != nil {
		return nil, err
	}
	rows, err := s.accounts.ListUsers(ctx)
	if err != nil {
		return nil, toStatus(ctx, err)
	}
	out := &ListUsersResponse{Users: make([]UserResponse, 0, len(rows))}
	for _, r := range rows {
		out.Users = append(out.Users, userResponse(r))
	}
	return out, nil
}

func invalid(req any) error {
	if msgs := validateRequest(req); len(msgs) > 0 {
		return status.Error(codes.InvalidArgument, strings.Join(msgs, " "))
	}
	return nil
}

func tokenResponse(t *service.Token) *TokenResponse {
	return &TokenResponse{
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		ExpiresAt:    t.ExpiresAt,
		Role:         string(t.Role),
		FirstName:    t.FirstName,
	}
}

func userResponse(u userdomain.UserWithManager) UserResponse {
	role, _ := u.EffectiveRole()
	phones := u.PhoneNumbers()
	if phones == nil {
		phones = []string{}
	}
	return UserResponse{
		UserID:       u.ID,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Email:        u.Email,
		DocNumber:    u.DocNumber,
		ManagerID:    u.ManagerID,
		ManagerName:  u.ManagerName,
		PhoneNumbers: phones,
		Role:         string(role),
	}
}
