package types

import "context"

type ContextKey string

const (
	CtxRequestID     ContextKey = "ctx_request_id"
	CtxTenantID      ContextKey = "ctx_tenant_id"
	CtxUserID        ContextKey = "ctx_user_id"
	CtxEnvironmentID ContextKey = "ctx_environment_id"
)

const (
	// DefaultTenantID is used when no tenant is present on the context,
	// e.g. background jobs started outside an HTTP request.
	DefaultTenantID = "00000000-0000-0000-0000-000000000000"
	DefaultUserID   = "00000000-0000-0000-0000-000000000000"
)

func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(CtxRequestID).(string); ok {
		return id
	}
	return ""
}

func GetTenantID(ctx context.Context) string {
	if id, ok := ctx.Value(CtxTenantID).(string); ok {
		return id
	}
	return ""
}

func GetUserID(ctx context.Context) string {
	if id, ok := ctx.Value(CtxUserID).(string); ok {
		return id
	}
	return ""
}

func GetEnvironmentID(ctx context.Context) string {
	if id, ok := ctx.Value(CtxEnvironmentID).(string); ok {
		return id
	}
	return ""
}

// SetTenantID returns a child context carrying the given tenant ID.
func SetTenantID(ctx context.Context, tenantID string) context.Context {
	return context.WithValue(ctx, CtxTenantID, tenantID)
}

// SetEnvironmentID returns a child context carrying the given environment ID.
func SetEnvironmentID(ctx context.Context, environmentID string) context.Context {
	return context.WithValue(ctx, CtxEnvironmentID, environmentID)
}
