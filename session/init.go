package session

import (
	"context"

	perrors "github.com/jrsteele09/go-job-portal/internal/errors"
	"github.com/jrsteele09/go-job-portal/token"
)

// Initialize restores a previous session, re-arms silent refresh and loads
// the user. The sequence runs once per manager; every caller, concurrent or
// later, gets the result of that single run.
func (m *Manager) Initialize(ctx context.Context) error {
	m.initOnce.Do(func() {
		m.initErr = m.initialize(ctx)
	})
	return m.initErr
}

func (m *Manager) initialize(ctx context.Context) error {
	rec, _ := m.records.load(ctx)
	m.tokens.Restore(ctx)

	m.mu.Lock()
	if !rec.IsAuthenticated || !m.tokens.IsValid() {
		if rec.IsAuthenticated || m.tokens.IsValid() {
			m.logger.Warn().Bool("recordAuthenticated", rec.IsAuthenticated).Msg("Stored session is inconsistent, starting anonymous")
			rec.User = nil
			m.version++
		}
		m.state = StateAnonymous
		m.session = Session{User: rec.User}
		snap := m.snapshotLocked()
		m.mu.Unlock()
		m.persist(ctx)
		m.publish(snap)
		return nil
	}

	access, _ := m.tokens.AccessToken()
	refreshToken, _ := m.tokens.RefreshToken()
	expiresIn, _ := m.tokens.ExpiresIn()
	m.state = StateAuthenticated
	m.session = Session{
		AccessToken:     access,
		RefreshToken:    refreshToken,
		ExpiresIn:       expiresIn,
		IsAuthenticated: true,
		User:            rec.User,
	}

	expired := false
	if m.rejectExpiredLocally {
		if claims, ok := token.Inspect(access); ok && claims.Expired(m.nowTime()) {
			expired = true
		}
	}
	if !expired {
		m.armLocked(expiresIn)
	}
	snap := m.snapshotLocked()
	m.mu.Unlock()
	m.publish(snap)

	if expired {
		m.logger.Info().Msg("Restored access token has expired, refreshing")
		if refreshToken == "" {
			m.Logout()
			return perrors.Wrapf(perrors.ErrNoRefreshToken, "[Manager Initialize]")
		}
		if err := m.Refresh(ctx); err != nil {
			return perrors.Wrapf(err, "[Manager Initialize]")
		}
	}
	return m.EnsureCurrentUser(ctx, false)
}
