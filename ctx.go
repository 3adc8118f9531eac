package auth

import "context"

var sessionCtxKey = &contextKey{"session"}
var claimsCtxKey = &contextKey{"claims"}

type contextKey struct {
	name string
}

// WithSession sets the Session in the given context
func WithSession(ctx context.Context, session *Session) context.Context {
	return context.WithValue(ctx, sessionCtxKey, session)
}

// SessionFromContext finds the session from the context.
func SessionFromContext(ctx context.Context) (*Session, bool) {
	raw, ok := ctx.Value(sessionCtxKey).(*Session)
	return raw, ok && raw != nil
}

// WithClaimsContext sets the claims in the given context
func WithClaimsContext(ctx context.Context, claims *JWTClaims) context.Context {
	return context.WithValue(ctx, claimsCtxKey, claims)
}

// GetClaims extracts the claims from the context
func GetClaims(ctx context.Context) (*JWTClaims, bool) {
	raw, ok := ctx.Value(claimsCtxKey).(*JWTClaims)
	return raw, ok && raw != nil
}
