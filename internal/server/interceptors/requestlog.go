package interceptors

import (
	"context"
	"net"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"

	"employee-directory/backend/internal/logging"
)

// RequestLogUnary attaches a request-scoped log entry (method, client IP, UTC timestamp)
// to the context and logs the outcome of each call.
func RequestLogUnary(logger logrus.FieldLogger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now().UTC()
		entry := logger.WithFields(logrus.Fields{
			"method":    info.FullMethod,
			"client_ip": ClientIP(ctx),
			"timestamp": start.Format(time.RFC3339),
		})
		ctx = logging.WithEntry(ctx, entry)

		resp, err := handler(ctx, req)

		fields := logrus.Fields{
			"code":        status.Code(err).String(),
			"duration_ms": time.Since(start).Milliseconds(),
		}
		if userID, ok := GetUserID(ctx); ok {
			fields["user_id"] = userID
		}
		if err != nil {
			entry.WithFields(fields).WithError(err).Warn("rpc failed")
		} else {
			entry.WithFields(fields).Debug("rpc completed")
		}
		return resp, err
	}
}

// ClientIP returns the client IP from gRPC metadata (x-forwarded-for, x-real-ip) or peer, or "unknown".
func ClientIP(ctx context.Context) string {
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if vals := md.Get("x-forwarded-for"); len(vals) > 0 {
			if s := strings.TrimSpace(vals[0]); s != "" {
				if i := strings.Index(s, ","); i > 0 {
					s = strings.TrimSpace(s[:i])
				}
				return s
			}
		}
		if vals := md.Get("x-real-ip"); len(vals) > 0 {
			if s := strings.TrimSpace(vals[0]); s != "" {
				return s
			}
		}
	}
	if p, ok := peer.FromContext(ctx); ok && p.Addr != nil {
		if host, _, err := net.SplitHostPort(p.Addr.String()); err == nil {
			return host
		}
		return p.Addr.String()
	}
	return "unknown"
}
