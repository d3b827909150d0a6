package types

const (
	HeaderEnvironment = "X-Environment-ID"
	HeaderRequestID   = "X-Request-ID"
	HeaderTenant      = "X-Tenant-ID"
)
