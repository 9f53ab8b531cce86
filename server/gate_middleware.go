package server

import (
	"net/http"
)

// localeHeader tells the upstream which locale the gate resolved
const localeHeader = "X-Portal-Locale"

// GateMiddleware applies the gate decision: CORS headers on API paths,
// preflight short-circuit, redirect or path rewrite before next.
func (s *Server) GateMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d := s.gate.Decide(GateRequestFrom(r))
		s.metrics.observeDecision(d.Action)

		for k, values := range d.Headers {
			for _, v := range values {
				w.Header().Add(k, v)
			}
		}

		if d.API && r.Method == http.MethodOptions {
			w.Header().Set("Access-Control-Max-Age", "86400")
			w.WriteHeader(http.StatusNoContent)
			return
		}

		switch d.Action {
		case ActionRedirect:
			http.Redirect(w, r, d.Location, http.StatusTemporaryRedirect)
			return
		case ActionRewrite:
			r = r.Clone(r.Context())
			r.URL.Path = d.RewritePath
			r.URL.RawPath = ""
		}
		r.Header.Set(localeHeader, d.Locale)
		next(w, r)
	}
}
