package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/jrsteele09/go-job-portal/internal/config"
	"github.com/jrsteele09/go-job-portal/portalapi"
	"github.com/jrsteele09/go-job-portal/session"
	"github.com/jrsteele09/go-job-portal/storage"
	"github.com/rs/zerolog/log"
)

// terminal is the CLI's navigator and notifier
type terminal struct{}

func (terminal) Navigate(path string) {
	info("next: %s", path)
}

func (terminal) HardNavigate(path string) {
	info("session reset, back to %s", path)
}

func (terminal) Notify(level session.NotifyLevel, message string) {
	if level == session.NotifyError {
		warn("%s", message)
		return
	}
	success("%s", message)
}

// portalSession is an initialised session manager plus what it holds open
type portalSession struct {
	manager *session.Manager
	api     *portalapi.Client
	close   func() error
}

func openSession(ctx context.Context, c config.Config) (*portalSession, error) {
	durable, closeStorage, err := storage.FromConfig(c)
	if err != nil {
		return nil, err
	}

	api, err := portalapi.New(c.GetBackendURL())
	if err != nil {
		_ = closeStorage()
		return nil, err
	}

	manager := session.NewManager(api, durable,
		session.WithNavigator(terminal{}),
		session.WithNotifier(terminal{}),
		session.WithRoutes(c.GetHomePath(), c.GetSignInPath()),
		session.WithRejectExpiredLocally(c.GetRejectExpiredLocally()),
		session.WithRequestTimeout(c.GetRequestTimeout()),
	)

	initCtx, cancel := context.WithTimeout(ctx, c.GetRequestTimeout())
	defer cancel()
	if err := manager.Initialize(initCtx); err != nil {
		log.Debug().Err(err).Msg("Session restore finished with an error")
	}

	return &portalSession{manager: manager, api: api, close: closeStorage}, nil
}

// prompt reads one line from stdin when a flag was left empty
func prompt(label, current string) (string, error) {
	if current != "" {
		return current, nil
	}
	fmt.Printf("%s: ", label)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read %s: %w", strings.ToLower(label), err)
	}
	return strings.TrimSpace(line), nil
}
