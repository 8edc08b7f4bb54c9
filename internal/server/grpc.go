package server

import (
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/encoding"

	healthhandler "employee-directory/backend/internal/health/handler"
	identityhandler "employee-directory/backend/internal/identity/handler"
	"employee-directory/backend/internal/platform/rbac"
	"employee-directory/backend/internal/security"
	"employee-directory/backend/internal/server/interceptors"
)

func init() {
	encoding.RegisterCodec(identityhandler.JSONCodec{})
}

// Deps holds the service dependencies for gRPC handlers.
type Deps struct {
	// Accounts is the account orchestration. If nil, account RPCs return Unimplemented.
	Accounts identityhandler.Accounts
	// Roles resolves caller roles from the store for guarded RPCs.
	Roles rbac.RoleGetter
	// Health serves grpc.health.v1.Health. If nil, the health service is not registered.
	Health *healthhandler.Server
}

// RegisterServices registers the gRPC services with the given server.
//
// Service → handler mapping:
//   - employees.v1.AccountService → internal/identity/handler
//   - grpc.health.v1.Health       → internal/health/handler
func RegisterServices(s grpc.ServiceRegistrar, deps Deps) {
	identityhandler.RegisterAccountServiceServer(s, identityhandler.NewAccountServer(deps.Accounts, deps.Roles))
	if deps.Health != nil {
		deps.Health.Register(s)
	}
}

// NewGRPCServer returns a server with OpenTelemetry instrumentation, request logging and
// bearer-token authentication. Only SignIn and Refresh are reachable without a token.
func NewGRPCServer(tokens *security.TokenProvider, log logrus.FieldLogger, opts ...grpc.ServerOption) *grpc.Server {
	base := []grpc.ServerOption{
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(
			interceptors.RequestLogUnary(log),
			interceptors.AuthUnary(tokens, identityhandler.PublicMethods),
		),
	}
	return grpc.NewServer(append(base, opts...)...)
}
