package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-job-portal/internal/utils"
)

// Introspection is what the client can learn from an access token without
// the signing key. Nothing here is trusted for authorization; the backend
// verifies the signature on every call.
type Introspection struct {
	Subject   string
	Roles     []string
	ExpiresAt time.Time // zero when the token carries no exp claim
}

// Expired reports whether the exp claim lies before now
func (i Introspection) Expired(now time.Time) bool {
	return !i.ExpiresAt.IsZero() && !now.Before(i.ExpiresAt)
}

// Inspect decodes the claims of a JWT access token without verifying it.
// ok is false for opaque (non-JWT) tokens.
func Inspect(raw string) (Introspection, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return Introspection{}, false
	}

	var in Introspection
	if sub, err := claims.GetSubject(); err == nil {
		in.Subject = sub
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		in.ExpiresAt = exp.Time
	}
	for _, name := range []string{"roles", "authorities"} {
		if roles := utils.ToStringSlice(claims[name]); len(roles) > 0 {
			in.Roles = roles
			break
		}
	}
	return in, true
}
