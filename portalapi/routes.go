package portalapi

// Backend endpoint paths, relative to the configured base URL
const (
	RouteLogin        = "/auth/login"
	RouteRefreshToken = "/auth/refresh-token"
	RouteSignup       = "/auth/signup"
	RouteMe           = "/auth/me"
)
