package session_test

import (
	"testing"

	"github.com/jrsteele09/go-job-portal/session"
	"github.com/jrsteele09/go-job-portal/users"
	"github.com/stretchr/testify/require"
)

func TestNeedsFetch(t *testing.T) {
	complete := &users.UserProfile{Username: "jane", Profile: &users.Profile{FirstName: "Jane", LastName: "Doe"}}
	missingFirst := &users.UserProfile{Username: "jane", Profile: &users.Profile{FirstName: "", LastName: "X"}}
	noProfile := &users.UserProfile{Username: "jane"}

	cases := []struct {
		name            string
		user            *users.UserProfile
		isAuthenticated bool
		force           bool
		want            bool
	}{
		{"anonymous never fetches", nil, false, true, false},
		{"no user", nil, true, false, true},
		{"incomplete profile", missingFirst, true, false, true},
		{"no profile", noProfile, true, false, false},
		{"forced without profile", noProfile, true, true, true},
		{"complete profile", complete, true, false, false},
		{"forced", complete, true, true, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, session.NeedsFetch(tc.user, tc.isAuthenticated, tc.force))
		})
	}
}
