package server

// Gateway-owned routes. Everything else is gated and forwarded upstream.
const (
	RouteHealth  = "/healthz"
	RouteMetrics = "/metrics"
	RouteGated   = "/"
)
