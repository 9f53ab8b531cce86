package server

import (
	"encoding/json"
	"net/http"
)

func (s *Server) initRoutes() {
	s.RegisterRouteFunc("GET "+RouteHealth, s.HealthHandler())
	s.RegisterRouteHandler("GET "+RouteMetrics, s.metrics.handler())
	s.RegisterRouteHandler(RouteGated, ChainMiddleware(s.upstream.ServeHTTP, s.PageMiddleware()...))
}

func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"status": "ok",
			"app":    s.config.GetAppName(),
		})
	}
}
