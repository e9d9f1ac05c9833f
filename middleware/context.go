package middleware

import (
	"context"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/upb/campaign-hub/services/access"
)

// Context key type to avoid collisions
type contextKey string

const (
	// RequestIDKey is the context key for a request ID set outside chi
	RequestIDKey contextKey = "request_id"

	// IdentityKey is the context key for the authenticated identity
	IdentityKey contextKey = "identity"

	// ResolutionKey is the context key for the roles resolved by the gate
	ResolutionKey contextKey = "resolution"
)

// GetRequestIDFromContext returns the request ID assigned by chi's RequestID
// middleware, falling back to one stored with WithRequestID.
func GetRequestIDFromContext(ctx context.Context) string {
	if id := chimiddleware.GetReqID(ctx); id != "" {
		return id
	}
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}

// WithRequestID adds a request ID to the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// GetIdentityFromContext retrieves the authenticated identity.
func GetIdentityFromContext(ctx context.Context) (access.Identity, bool) {
	ident, ok := ctx.Value(IdentityKey).(access.Identity)
	return ident, ok
}

// WithIdentity adds the authenticated identity to the context
func WithIdentity(ctx context.Context, ident access.Identity) context.Context {
	return context.WithValue(ctx, IdentityKey, ident)
}

// GetResolutionFromContext retrieves the role resolution made by the gate.
func GetResolutionFromContext(ctx context.Context) (access.Resolution, bool) {
	res, ok := ctx.Value(ResolutionKey).(access.Resolution)
	return res, ok
}

// WithResolution adds a role resolution to the context
func WithResolution(ctx context.Context, res access.Resolution) context.Context {
	return context.WithValue(ctx, ResolutionKey, res)
}

// UserIDFromContext returns the internal user id of the caller, if the
// identity has been matched to a users row.
func UserIDFromContext(ctx context.Context) *int64 {
	if res, ok := GetResolutionFromContext(ctx); ok && res.Identity.UserID != nil {
		return res.Identity.UserID
	}
	if ident, ok := GetIdentityFromContext(ctx); ok {
		return ident.UserID
	}
	return nil
}
