package server

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/jrsteele09/go-job-portal/internal/config"
)

// Action is what the edge does with a request after the gate decision
type Action int

const (
	ActionContinue Action = iota
	ActionRewrite
	ActionRedirect
)

func (a Action) String() string {
	switch a {
	case ActionContinue:
		return "continue"
	case ActionRewrite:
		return "rewrite"
	case ActionRedirect:
		return "redirect"
	default:
		return "unknown"
	}
}

// GateRequest is everything the gate may look at
type GateRequest struct {
	Path    string
	Cookies map[string]string
	Header  http.Header
}

// GateRequestFrom extracts the gate inputs from an incoming request
func GateRequestFrom(r *http.Request) GateRequest {
	cookies := make(map[string]string)
	for _, c := range r.Cookies() {
		if _, seen := cookies[c.Name]; !seen {
			cookies[c.Name] = c.Value
		}
	}
	return GateRequest{Path: r.URL.Path, Cookies: cookies, Header: r.Header}
}

// Decision is the gate's verdict. Headers are added to the response whatever
// the action.
type Decision struct {
	Action            Action
	Location          string // set for ActionRedirect
	RewritePath       string // set for ActionRewrite
	Locale            string
	PathWithoutLocale string
	Protected         bool
	AuthOnly          bool
	HasToken          bool
	API               bool
	Headers           http.Header
}

// Gate is the coarse, token-presence-only route guard run on every request.
// Role checks happen in the application once the profile is loaded.
type Gate struct {
	locales        map[string]struct{}
	defaultLocale  string
	protectedPaths []string
	authOnlyPaths  []string
	apiPrefix      string
	signInPath     string
	cookieName     string
	corsHeaders    http.Header
	rewriter       LocaleRewriter
}

// NewGate snapshots the gate settings. A nil rewriter negotiates from
// Accept-Language over the configured locales.
func NewGate(gateConfig config.GateConfig, corsConfig config.CorsConfig, rewriter LocaleRewriter) *Gate {
	g := &Gate{
		locales:        make(map[string]struct{}),
		defaultLocale:  gateConfig.GetDefaultLocale(),
		protectedPaths: gateConfig.GetProtectedPaths(),
		authOnlyPaths:  gateConfig.GetAuthOnlyPaths(),
		apiPrefix:      gateConfig.GetAPIPrefix(),
		signInPath:     gateConfig.GetSignInPath(),
		cookieName:     gateConfig.GetAccessTokenCookie(),
		corsHeaders: http.Header{
			"Access-Control-Allow-Origin":  {corsConfig.GetAllowedOrigin()},
			"Access-Control-Allow-Methods": {corsConfig.GetAllowedMethods()},
			"Access-Control-Allow-Headers": {corsConfig.GetAllowedHeaders()},
		},
		rewriter: rewriter,
	}
	for _, l := range gateConfig.GetLocales() {
		g.locales[l] = struct{}{}
	}
	if g.rewriter == nil {
		g.rewriter = NewLocaleRewriter(gateConfig.GetLocales(), g.defaultLocale)
	}
	return g
}

// Decide has no side effects; the same request always gets the same decision.
func (g *Gate) Decide(req GateRequest) Decision {
	path := req.Path
	if path == "" {
		path = "/"
	}
	d := Decision{Headers: http.Header{}}

	if locale, rest, ok := g.splitLocale(path); ok {
		d.Locale = locale
		d.PathWithoutLocale = rest
	} else {
		d.PathWithoutLocale = path
		if g.isAPI(path) {
			d.Locale = g.defaultLocale
		} else {
			d.Locale, d.RewritePath = g.rewriter.Rewrite(path, req.Header)
		}
	}

	d.HasToken = g.bearerToken(req) != ""
	d.Protected = hasAnyPrefix(d.PathWithoutLocale, g.protectedPaths)
	d.AuthOnly = hasAnyPrefix(d.PathWithoutLocale, g.authOnlyPaths)
	d.API = g.isAPI(d.PathWithoutLocale)

	switch {
	case d.Protected && !d.HasToken:
		d.Action = ActionRedirect
		d.Location = "/" + d.Locale + g.signInPath + "?redirect=" + url.QueryEscape(path)
	case d.AuthOnly && d.HasToken:
		d.Action = ActionRedirect
		d.Location = "/" + d.Locale
	case d.RewritePath != "":
		d.Action = ActionRewrite
	default:
		d.Action = ActionContinue
	}
	if d.Action == ActionRedirect {
		d.RewritePath = ""
	}

	if d.API {
		for k, v := range g.corsHeaders {
			d.Headers[k] = append([]string(nil), v...)
		}
	}
	return d
}

// splitLocale recognises a supported locale as the first path segment
func (g *Gate) splitLocale(path string) (locale, rest string, ok bool) {
	trimmed := strings.TrimPrefix(path, "/")
	segment, remainder, hasMore := strings.Cut(trimmed, "/")
	if _, known := g.locales[segment]; !known {
		return "", "", false
	}
	if !hasMore || remainder == "" {
		return segment, "/", true
	}
	return segment, "/" + remainder, true
}

// bearerToken prefers the access token cookie over the Authorization header
func (g *Gate) bearerToken(req GateRequest) string {
	if v := req.Cookies[g.cookieName]; v != "" {
		return v
	}
	if req.Header == nil {
		return ""
	}
	scheme, token, ok := strings.Cut(req.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func (g *Gate) isAPI(path string) bool {
	return g.apiPrefix != "" && strings.HasPrefix(path, g.apiPrefix)
}

func hasAnyPrefix(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if p != "" && strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}
