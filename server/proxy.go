package server

import (
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"

	"github.com/rs/zerolog"
)

// newUpstream forwards gated requests to the front end at rawURL. Without a
// URL the gateway answers with a placeholder describing the decision.
func newUpstream(rawURL string, logger zerolog.Logger) (http.Handler, error) {
	if rawURL == "" {
		return http.HandlerFunc(placeholderHandler), nil
	}
	target, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid upstream url %q: %w", rawURL, err)
	}
	if target.Scheme == "" || target.Host == "" {
		return nil, fmt.Errorf("upstream url %q needs a scheme and host", rawURL)
	}

	proxy := &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.SetURL(target)
			pr.SetXForwarded()
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			logger.Err(err).Str("path", r.URL.Path).Msg("Upstream request failed")
			logRouteError(r.Method, r.URL.Path, err.Error())
			http.Error(w, "502 - Bad Gateway", http.StatusBadGateway)
		},
	}
	return proxy, nil
}

func placeholderHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintf(w, "%s %s (locale %s)\n", r.Method, r.URL.Path, r.Header.Get(localeHeader))
}
