package config

import "time"

type SessionConfig interface {
	GetHomePath() string
	GetRejectExpiredLocally() bool
	GetRequestTimeout() time.Duration
}

type Session struct{}

var _ SessionConfig = Session{}

func (Session) GetHomePath() string {
	return GetEnv("HOME_PATH", "/")
}

// GetRejectExpiredLocally enables the exp-claim check on restore so an expired
// access token is refreshed before the first API call instead of after a 401.
func (Session) GetRejectExpiredLocally() bool {
	return GetEnvBool("REJECT_EXPIRED_LOCALLY", true)
}

func (Session) GetRequestTimeout() time.Duration {
	d, err := time.ParseDuration(GetEnv("REQUEST_TIMEOUT", "15s"))
	if err != nil || d <= 0 {
		return 15 * time.Second
	}
	return d
}
