package fakebackend

import (
	"encoding/json"
	"net/http"
	"strings"

	perrors "github.com/jrsteele09/go-job-portal/internal/errors"
	"github.com/jrsteele09/go-job-portal/portalapi"
	"github.com/jrsteele09/go-job-portal/users"
)

// Handler exposes the backend over HTTP. Successful bodies are wrapped in
// {"data": ...} when wrap is true, matching both response shapes the
// real backend has used.
func (b *Backend) Handler(wrap bool) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST "+portalapi.RouteLogin, func(w http.ResponseWriter, r *http.Request) {
		var creds users.Credentials
		if !decode(w, r, &creds) {
			return
		}
		resp, err := b.Login(r.Context(), creds)
		respond(w, wrap, resp, err)
	})

	mux.HandleFunc("POST "+portalapi.RouteRefreshToken, func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			RefreshToken string `json:"refreshToken"`
		}
		if !decode(w, r, &body) {
			return
		}
		resp, err := b.Refresh(r.Context(), body.RefreshToken)
		respond(w, wrap, resp, err)
	})

	mux.HandleFunc("POST "+portalapi.RouteSignup, func(w http.ResponseWriter, r *http.Request) {
		var reg users.Registration
		if !decode(w, r, &reg) {
			return
		}
		u, err := b.Signup(r.Context(), reg)
		respond(w, wrap, u, err)
	})

	mux.HandleFunc("GET "+portalapi.RouteMe, func(w http.ResponseWriter, r *http.Request) {
		bearer, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || bearer == "" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Missing bearer token"})
			return
		}
		u, err := b.Me(r.Context(), bearer)
		respond(w, wrap, u, err)
	})

	return mux
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Malformed request body"})
		return false
	}
	return true
}

func respond(w http.ResponseWriter, wrap bool, v any, err error) {
	if err != nil {
		var apiErr *perrors.APIError
		if perrors.As(err, &apiErr) {
			writeJSON(w, apiErr.Status, map[string]string{"message": apiErr.Message})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if wrap {
		v = map[string]any{"data": v}
	}
	writeJSON(w, http.StatusOK, v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
