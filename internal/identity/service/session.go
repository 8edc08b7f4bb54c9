package service

import (
	"context"
	"time"
)

// Session is the transport collaborator that knows who is signed in and
// delivers or clears session values (cookies) on the response.
type Session interface {
	CurrentPrincipalID(ctx context.Context) string
	Deliver(ctx context.Context, name, value string, ttl time.Duration) error
	Clear(ctx context.Context, name string) error
}

// Session value names.
const (
	AccessTokenName  = "access_token"
	RefreshTokenName = "refresh_token"
	UserIDName       = "user"
)

// DefaultDeliveryTTL is how long delivered session values live on the client.
const DefaultDeliveryTTL = 15 * time.Minute
