// Package server is the portal's edge gateway: it gates every request on
// token presence, resolves the locale, attaches CORS headers to the API and
// forwards what it lets through to the upstream front end.
package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-job-portal/internal/config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Server struct {
	env      string // Environment (e.g., "DEV", "PROD")
	mux      *http.ServeMux
	routes   []string
	config   config.Config
	gate     *Gate
	upstream http.Handler
	metrics  *metrics
	logger   zerolog.Logger
}

type Option func(*Server)

// WithUpstream replaces the proxy built from UPSTREAM_URL
func WithUpstream(h http.Handler) Option {
	return func(s *Server) {
		s.upstream = h
	}
}

// WithLocaleRewriter replaces Accept-Language negotiation
func WithLocaleRewriter(r LocaleRewriter) Option {
	return func(s *Server) {
		s.gate = NewGate(s.config, s.config, r)
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

func New(cfg config.Config, opts ...Option) (*Server, error) {
	s := &Server{
		env:     cfg.GetEnv(),
		mux:     http.NewServeMux(),
		config:  cfg,
		metrics: newMetrics(),
		logger:  log.Logger,
	}
	s.gate = NewGate(cfg, cfg, nil)
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With().Str("component", "gateway").Logger()

	if s.upstream == nil {
		upstream, err := newUpstream(cfg.GetUpstreamURL(), s.logger)
		if err != nil {
			return nil, fmt.Errorf("[Server New] failed to create upstream: %w", err)
		}
		s.upstream = upstream
	}

	s.initRoutes()
	s.logRoutes()
	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)
		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}
