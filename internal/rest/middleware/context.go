package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/recouphq/recoup/internal/types"
)

// RequestIDMiddleware attaches a request ID to the context, generating one
// when the client did not send the header. The ID is echoed back in the
// response for log correlation.
func RequestIDMiddleware(c *gin.Context) {
	requestID := c.GetHeader(types.HeaderRequestID)
	if requestID == "" {
		requestID = types.GenerateUUIDWithPrefix(types.UUID_PREFIX_REQUEST)
	}

	ctx := context.WithValue(c.Request.Context(), types.CtxRequestID, requestID)
	c.Request = c.Request.WithContext(ctx)
	c.Writer.Header().Set(types.HeaderRequestID, requestID)
	c.Next()
}

// TenantMiddleware resolves the tenant and environment from request headers,
// falling back to defaults so internal callers (like the in-process cron
// trigger) work without headers.
func TenantMiddleware(c *gin.Context) {
	tenantID := c.GetHeader(types.HeaderTenant)
	if tenantID == "" {
		tenantID = types.DefaultTenantID
	}

	ctx := types.SetTenantID(c.Request.Context(), tenantID)
	if environmentID := c.GetHeader(types.HeaderEnvironment); environmentID != "" {
		ctx = types.SetEnvironmentID(ctx, environmentID)
	}
	c.Request = c.Request.WithContext(ctx)
	c.Next()
}
