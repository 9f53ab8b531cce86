// Package fakebackend is an in-memory stand-in for the portal backend's auth
// endpoints. It serves both as a direct Backend for session tests and as an
// http.Handler for client tests.
package fakebackend

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	perrors "github.com/jrsteele09/go-job-portal/internal/errors"
	"github.com/jrsteele09/go-job-portal/portalapi"
	"github.com/jrsteele09/go-job-portal/users"
)

// Operation names used by Calls and SetHook
const (
	OpLogin   = "login"
	OpRefresh = "refresh"
	OpSignup  = "signup"
	OpMe      = "me"
)

// DefaultTokenLifetime is the expiresIn handed out with every token pair
const DefaultTokenLifetime = 15 * time.Minute

// Hook runs before an operation is processed. A non-nil error is returned
// to the caller in place of the real result. Hooks may block.
type Hook func(ctx context.Context) error

type account struct {
	password string
	profile  users.UserProfile
}

type Backend struct {
	mu            sync.Mutex
	accounts      map[string]*account
	accessTokens  map[string]string
	refreshTokens map[string]string
	nextID        int64
	calls         map[string]int
	hooks         map[string]Hook
	lifetime      time.Duration
}

func New() *Backend {
	return &Backend{
		accounts:      make(map[string]*account),
		accessTokens:  make(map[string]string),
		refreshTokens: make(map[string]string),
		calls:         make(map[string]int),
		hooks:         make(map[string]Hook),
		lifetime:      DefaultTokenLifetime,
		nextID:        1,
	}
}

// SetTokenLifetime changes the expiresIn of future token pairs
func (b *Backend) SetTokenLifetime(d time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lifetime = d
}

// SetHook installs fn in front of op; nil removes it
func (b *Backend) SetHook(op string, fn Hook) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if fn == nil {
		delete(b.hooks, op)
		return
	}
	b.hooks[op] = fn
}

// Calls returns how many times op was invoked
func (b *Backend) Calls(op string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[op]
}

// AddUser seeds an account and returns its profile with the assigned ID
func (b *Backend) AddUser(username, password string, roles users.Roles, profile *users.Profile) users.UserProfile {
	b.mu.Lock()
	defer b.mu.Unlock()
	u := users.UserProfile{ID: b.nextID, Username: username, Roles: roles, Profile: profile}
	b.nextID++
	b.accounts[username] = &account{password: password, profile: u}
	return u
}

// UpdateProfile replaces the profile details served by /auth/me
func (b *Backend) UpdateProfile(username string, profile *users.Profile) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if acc, ok := b.accounts[username]; ok {
		acc.profile.Profile = profile
	}
}

// Revoke invalidates every token issued to username, as a server-side logout
func (b *Backend) Revoke(username string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for tok, owner := range b.accessTokens {
		if owner == username {
			delete(b.accessTokens, tok)
		}
	}
	for tok, owner := range b.refreshTokens {
		if owner == username {
			delete(b.refreshTokens, tok)
		}
	}
}

func (b *Backend) begin(ctx context.Context, op string) error {
	b.mu.Lock()
	b.calls[op]++
	hook := b.hooks[op]
	b.mu.Unlock()
	if hook != nil {
		return hook(ctx)
	}
	return nil
}

func (b *Backend) issueLocked(username string) portalapi.TokenResponse {
	resp := portalapi.TokenResponse{
		AccessToken:  "at-" + uuid.NewString(),
		RefreshToken: "rt-" + uuid.NewString(),
		ExpiresIn:    b.lifetime.Milliseconds(),
	}
	b.accessTokens[resp.AccessToken] = username
	b.refreshTokens[resp.RefreshToken] = username
	return resp
}

func (b *Backend) Login(ctx context.Context, creds users.Credentials) (portalapi.TokenResponse, error) {
	if err := b.begin(ctx, OpLogin); err != nil {
		return portalapi.TokenResponse{}, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	acc, ok := b.accounts[creds.Username]
	if !ok || acc.password != creds.Password {
		return portalapi.TokenResponse{}, &perrors.APIError{Status: http.StatusUnauthorized, Message: "Invalid username or password"}
	}
	return b.issueLocked(creds.Username), nil
}

// Refresh rotates the pair; the presented refresh token is single use
func (b *Backend) Refresh(ctx context.Context, refreshToken string) (portalapi.TokenResponse, error) {
	if err := b.begin(ctx, OpRefresh); err != nil {
		return portalapi.TokenResponse{}, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	username, ok := b.refreshTokens[refreshToken]
	if !ok {
		return portalapi.TokenResponse{}, &perrors.APIError{Status: http.StatusUnauthorized, Message: "Refresh token is invalid or expired"}
	}
	delete(b.refreshTokens, refreshToken)
	return b.issueLocked(username), nil
}

func (b *Backend) Signup(ctx context.Context, reg users.Registration) (*users.UserProfile, error) {
	if err := b.begin(ctx, OpSignup); err != nil {
		return nil, err
	}
	if strings.TrimSpace(reg.Username) == "" || reg.Password == "" {
		return nil, &perrors.APIError{Status: http.StatusBadRequest, Message: "Username and password are required"}
	}
	b.mu.Lock()
	if _, exists := b.accounts[reg.Username]; exists {
		b.mu.Unlock()
		return nil, &perrors.APIError{Status: http.StatusConflict, Message: fmt.Sprintf("Username %s already exists", reg.Username)}
	}
	b.mu.Unlock()

	u := b.AddUser(reg.Username, reg.Password, users.Roles{users.RoleCandidate}, &users.Profile{
		FirstName: reg.FirstName,
		LastName:  reg.LastName,
		Email:     reg.Email,
		Phone:     reg.Phone,
	})
	return &u, nil
}

func (b *Backend) Me(ctx context.Context, accessToken string) (*users.UserProfile, error) {
	if err := b.begin(ctx, OpMe); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	username, ok := b.accessTokens[accessToken]
	if !ok {
		return nil, &perrors.APIError{Status: http.StatusForbidden, Message: "Authentication failed"}
	}
	u := b.accounts[username].profile
	if u.Profile != nil {
		p := *u.Profile
		u.Profile = &p
	}
	return &u, nil
}
