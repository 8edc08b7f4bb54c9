package interceptors

import (
	"context"
	"net/http"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

// GRPCSession delivers session values to the caller as set-cookie response headers
// and resolves the current principal from the authenticated context.
type GRPCSession struct {
	Secure    bool
	setHeader func(ctx context.Context, md metadata.MD) error
	now       func() time.Time
}

// NewGRPCSession returns a session adapter writing cookies through grpc.SetHeader.
func NewGRPCSession(secure bool) *GRPCSession {
	return &GRPCSession{Secure: secure, setHeader: grpc.SetHeader, now: time.Now}
}

// CurrentPrincipalID returns the verified user id from the access token,
// falling back to the user cookie set at sign-in.
func (s *GRPCSession) CurrentPrincipalID(ctx context.Context) string {
	if id, ok := GetUserID(ctx); ok && id != "" {
		return id
	}
	return CookieValue(ctx, UserCookie)
}

// Deliver sends name=value as an HttpOnly cookie that expires after ttl.
func (s *GRPCSession) Deliver(ctx context.Context, name, value string, ttl time.Duration) error {
	c := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  s.now().Add(ttl).UTC(),
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   s.Secure,
		SameSite: http.SameSiteStrictMode,
	}
	return s.setHeader(ctx, metadata.Pairs("set-cookie", c.String()))
}

// Clear expires the named cookie on the client.
func (s *GRPCSession) Clear(ctx context.Context, name string) error {
	c := &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.Secure,
		SameSite: http.SameSiteStrictMode,
	}
	return s.setHeader(ctx, metadata.Pairs("set-cookie", c.String()))
}
