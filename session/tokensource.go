package session

import (
	"context"
	"net/http"

	perrors "github.com/jrsteele09/go-job-portal/internal/errors"
	"github.com/jrsteele09/go-job-portal/token"
	"golang.org/x/oauth2"
)

type tokenSource struct {
	m *Manager
}

// TokenSource exposes the session's access token to oauth2 transports
func (m *Manager) TokenSource() oauth2.TokenSource {
	return tokenSource{m: m}
}

// HTTPClient returns a client that sends the current access token as a
// bearer credential on every request
func (m *Manager) HTTPClient(ctx context.Context) *http.Client {
	return oauth2.NewClient(ctx, m.TokenSource())
}

func (ts tokenSource) Token() (*oauth2.Token, error) {
	m := ts.m
	snap := m.Snapshot()
	if !snap.Session.IsAuthenticated {
		return nil, perrors.ErrNotAuthenticated
	}

	claims, ok := token.Inspect(snap.Session.AccessToken)
	if ok && m.rejectExpiredLocally && claims.Expired(m.nowTime()) {
		ctx, cancel := context.WithTimeout(context.Background(), m.requestTimeout)
		defer cancel()
		if err := m.Refresh(ctx); err != nil {
			return nil, perrors.Wrapf(err, "[TokenSource Token]")
		}
		snap = m.Snapshot()
		claims, ok = token.Inspect(snap.Session.AccessToken)
	}

	tok := &oauth2.Token{
		AccessToken:  snap.Session.AccessToken,
		TokenType:    "Bearer",
		RefreshToken: snap.Session.RefreshToken,
	}
	if ok {
		tok.Expiry = claims.ExpiresAt
	}
	return tok, nil
}
