package common

import "context"

// RequestContext carries per-request identity injected via X-Finance-* headers.
// ViewID identifies one rendering surface (a browser tab, a CLI session); a newer
// chart query for the same view supersedes any older one still in flight.
type RequestContext struct {
	UserID string
	ViewID string
}

type contextKey int

const requestContextKey contextKey = iota

// WithRequestContext stores a RequestContext in the context.
func WithRequestContext(ctx context.Context, rc *RequestContext) context.Context {
	return context.WithValue(ctx, requestContextKey, rc)
}

// RequestContextFromContext retrieves the RequestContext, or nil if absent.
func RequestContextFromContext(ctx context.Context) *RequestContext {
	rc, _ := ctx.Value(requestContextKey).(*RequestContext)
	return rc
}

// ViewKey returns the supersession key for the request's view, scoped to its
// user. ok is false when the request names no view.
func ViewKey(ctx context.Context) (key string, ok bool) {
	rc := RequestContextFromContext(ctx)
	if rc == nil || rc.ViewID == "" {
		return "", false
	}
	return ResolveUserID(ctx) + "/" + rc.ViewID, true
}

// ResolveUserID returns the user id from context, or "default" in single-tenant mode.
func ResolveUserID(ctx context.Context) string {
	if rc := RequestContextFromContext(ctx); rc != nil && rc.UserID != "" {
		return rc.UserID
	}
	return "default"
}
