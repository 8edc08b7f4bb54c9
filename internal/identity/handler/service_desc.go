package handler

import (
	"context"

	"google.golang.org/grpc"
)

const serviceName = "employees.v1.AccountService"

// Full method names, used by interceptors to mark public RPCs.
const (
	MethodSignIn         = "/" + serviceName + "/SignIn"
	MethodSignUp         = "/" + serviceName + "/SignUp"
	MethodUpdateUser     = "/" + serviceName + "/UpdateUser"
	MethodDeleteUser     = "/" + serviceName + "/DeleteUser"
	MethodSignOut        = "/" + serviceName + "/SignOut"
	MethodRefresh        = "/" + serviceName + "/Refresh"
	MethodGetCurrentUser = "/" + serviceName + "/GetCurrentUser"
	MethodListUsers      = "/" + serviceName + "/ListUsers"
)

// AccountServiceServer is the server API for employees.v1.AccountService.
type AccountServiceServer interface {
	SignIn(context.Context, *SignInRequest) (*TokenResponse, error)
	SignUp(context.Context, *SignUpRequest) (*SignUpResponse, error)
	UpdateUser(context.Context, *UpdateUserRequest) (*UpdateUserResponse, error)
	DeleteUser(context.Context, *DeleteUserRequest) (*DeleteUserResponse, error)
	SignOut(context.Context, *SignOutRequest) (*SignOutResponse, error)
	Refresh(context.Context, *RefreshRequest) (*TokenResponse, error)
	GetCurrentUser(context.Context, *GetCurrentUserRequest) (*UserResponse, error)
	ListUsers(context.Context, *ListUsersRequest) (*ListUsersResponse, error)
}

// RegisterAccountServiceServer registers srv on s.
func RegisterAccountServiceServer(s grpc.ServiceRegistrar, srv AccountServiceServer) {
	s.RegisterService(&AccountService_ServiceDesc, srv)
}

// unaryHandler adapts a typed method to grpc.MethodHandler.
func unaryHandler[Req any, Resp any](fullMethod string, call func(AccountServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(AccountServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(AccountServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// AccountService_ServiceDesc is the grpc.ServiceDesc for employees.v1.AccountService.
var AccountService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*AccountServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "SignIn", Handler: unaryHandler(MethodSignIn, AccountServiceServer.SignIn)},
		{MethodName: "SignUp", Handler: unaryHandler(MethodSignUp, AccountServiceServer.SignUp)},
		{MethodName: "UpdateUser", Handler: unaryHandler(MethodUpdateUser, AccountServiceServer.UpdateUser)},
		{MethodName: "DeleteUser", Handler: unaryHandler(MethodDeleteUser, AccountServiceServer.DeleteUser)},
		{MethodName: "SignOut", Handler: unaryHandler(MethodSignOut, AccountServiceServer.SignOut)},
		{MethodName: "Refresh", Handler: unaryHandler(MethodRefresh, AccountServiceServer.Refresh)},
		{MethodName: "GetCurrentUser", Handler: unaryHandler(MethodGetCurrentUser, AccountServiceServer.GetCurrentUser)},
		{MethodName: "ListUsers", Handler: unaryHandler(MethodListUsers, AccountServiceServer.ListUsers)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "employees/v1/account.proto",
}

// PublicMethods are callable without an access token.
var PublicMethods = map[string]bool{
	MethodSignIn:  true,
	MethodRefresh: true,
}
