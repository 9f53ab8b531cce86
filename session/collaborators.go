package session

import (
	"context"

	"github.com/jrsteele09/go-job-portal/portalapi"
	"github.com/jrsteele09/go-job-portal/users"
	"github.com/rs/zerolog"
)

// Backend is the subset of the portal API the manager consumes
type Backend interface {
	Login(ctx context.Context, creds users.Credentials) (portalapi.TokenResponse, error)
	Refresh(ctx context.Context, refreshToken string) (portalapi.TokenResponse, error)
	Signup(ctx context.Context, reg users.Registration) (*users.UserProfile, error)
	Me(ctx context.Context, accessToken string) (*users.UserProfile, error)
}

// Navigator moves the user between routes. HardNavigate discards every
// piece of in-process state tied to the old session (a full page load).
type Navigator interface {
	Navigate(path string)
	HardNavigate(path string)
}

type NotifyLevel string

const (
	NotifySuccess NotifyLevel = "success"
	NotifyError   NotifyLevel = "error"
)

// Notifier shows a transient message to the user
type Notifier interface {
	Notify(level NotifyLevel, message string)
}

type logNavigator struct {
	logger zerolog.Logger
}

func (n logNavigator) Navigate(path string) {
	n.logger.Info().Str("path", path).Msg("Navigate")
}

func (n logNavigator) HardNavigate(path string) {
	n.logger.Info().Str("path", path).Msg("Hard navigate")
}

type logNotifier struct {
	logger zerolog.Logger
}

func (n logNotifier) Notify(level NotifyLevel, message string) {
	ev := n.logger.Info()
	if level == NotifyError {
		ev = n.logger.Warn()
	}
	ev.Str("level", string(level)).Msg(message)
}
