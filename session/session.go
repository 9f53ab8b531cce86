// Package session owns the authenticated session of one portal client: the
// token pair, the cached user profile, silent refresh and the published state
// that UI code reads.
package session

import (
	"time"

	"github.com/jrsteele09/go-job-portal/users"
)

type State int

const (
	StateAnonymous State = iota
	StateAuthenticating
	StateAuthenticated
	StateRefreshFailed
)

func (s State) String() string {
	switch s {
	case StateAnonymous:
		return "anonymous"
	case StateAuthenticating:
		return "authenticating"
	case StateAuthenticated:
		return "authenticated"
	case StateRefreshFailed:
		return "refresh-failed"
	default:
		return "unknown"
	}
}

// Session is the live client session. IsAuthenticated implies AccessToken is set.
type Session struct {
	AccessToken     string
	RefreshToken    string
	ExpiresIn       time.Duration // zero when unknown
	IsAuthenticated bool
	User            *users.UserProfile
	Error           string
}

// Snapshot is the published, read-only view of the manager
type Snapshot struct {
	State   State
	Session Session
}

// Authenticated is a shorthand for the snapshot's session flag
func (s Snapshot) Authenticated() bool {
	return s.Session.IsAuthenticated
}
