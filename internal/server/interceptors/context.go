package interceptors

import "context"

type contextKey struct{ name string }

var (
	userIDKey  = contextKey{"user_id"}
	roleKey    = contextKey{"role"}
	tokenIDKey = contextKey{"token_id"}
)

// WithIdentity returns a context with user_id, role, and token_id set.
// Handlers and the account services read these via GetUserID, GetRole, GetTokenID.
func WithIdentity(ctx context.Context, userID, role, tokenID string) context.Context {
	ctx = context.WithValue(ctx, userIDKey, userID)
	ctx = context.WithValue(ctx, roleKey, role)
	ctx = context.WithValue(ctx, tokenIDKey, tokenID)
	return ctx
}

// GetUserID returns the user_id from context and true if set; otherwise "", false.
func GetUserID(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(userIDKey).(string)
	return v, ok
}

// GetRole returns the effective role carried by the access token, if set.
func GetRole(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(roleKey).(string)
	return v, ok
}

// GetTokenID returns the jti of the access token that authenticated the call.
func GetTokenID(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(tokenIDKey).(string)
	return v, ok
}
