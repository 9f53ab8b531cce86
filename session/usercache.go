package session

import "github.com/jrsteele09/go-job-portal/users"

// NeedsFetch decides whether the cached profile must be reloaded from the
// backend. Anonymous sessions never fetch; otherwise a forced call, a missing
// user or an embedded profile lacking a first or last name does. A user
// without an embedded profile is complete as it is.
func NeedsFetch(current *users.UserProfile, isAuthenticated, force bool) bool {
	if !isAuthenticated {
		return false
	}
	if force || current == nil {
		return true
	}
	return current.Profile != nil && !current.Profile.Complete()
}
