package token

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/jrsteele09/go-job-portal/storage"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Durable storage keys for the raw token material
const (
	AccessTokenKey  = "accessToken"
	RefreshTokenKey = "refreshToken"
	ExpiryKey       = "tokenExpiry"
)

// Store holds the current access/refresh token pair and the access token
// lifetime reported at issuance. The in-memory copy is authoritative; durable
// storage is written through and read back by Restore. Storage failures are
// logged and never surface, so a broken store degrades to memory-only.
type Store struct {
	mu        sync.RWMutex
	storage   storage.Storage
	logger    zerolog.Logger
	access    string
	refresh   string
	expiresIn time.Duration
	hasExpiry bool
}

type StoreOption func(*Store)

func WithLogger(logger zerolog.Logger) StoreOption {
	return func(s *Store) {
		s.logger = logger
	}
}

// NewStore creates a token store over durable; a nil durable keeps tokens in memory only
func NewStore(durable storage.Storage, opts ...StoreOption) *Store {
	s := &Store{storage: durable, logger: log.Logger}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With().Str("component", "token_store").Logger()
	return s
}

// SetSession replaces all three token fields and persists them
func (s *Store) SetSession(ctx context.Context, accessToken, refreshToken string, expiresIn time.Duration) {
	s.mu.Lock()
	s.access = accessToken
	s.refresh = refreshToken
	s.expiresIn = expiresIn
	s.hasExpiry = true
	s.mu.Unlock()

	s.write(ctx, AccessTokenKey, accessToken)
	s.write(ctx, RefreshTokenKey, refreshToken)
	s.write(ctx, ExpiryKey, strconv.FormatInt(expiresIn.Milliseconds(), 10))
}

func (s *Store) AccessToken() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.access, s.access != ""
}

func (s *Store) RefreshToken() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refresh, s.refresh != ""
}

// ExpiresIn is the lifetime reported when the access token was issued
func (s *Store) ExpiresIn() (time.Duration, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.expiresIn, s.hasExpiry
}

// IsValid reports presence of an access token and an expiry record. Wall-clock
// expiry is not checked here; the refresh schedule and the backend decide that.
func (s *Store) IsValid() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.access != "" && s.hasExpiry
}

// Clear removes the token material from memory and durable storage. Idempotent.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	s.access, s.refresh = "", ""
	s.expiresIn, s.hasExpiry = 0, false
	s.mu.Unlock()

	if s.storage == nil {
		return
	}
	for _, key := range []string{AccessTokenKey, RefreshTokenKey, ExpiryKey} {
		if err := s.storage.Remove(ctx, key); err != nil {
			s.logger.Warn().Err(err).Str("key", key).Msg("Failed to remove token from storage")
		}
	}
}

// Restore loads previously persisted tokens. Keys that cannot be read leave the
// corresponding in-memory field untouched.
func (s *Store) Restore(ctx context.Context) {
	if s.storage == nil {
		return
	}
	access, accessOK := s.read(ctx, AccessTokenKey)
	refresh, refreshOK := s.read(ctx, RefreshTokenKey)
	rawExpiry, expiryOK := s.read(ctx, ExpiryKey)

	s.mu.Lock()
	defer s.mu.Unlock()
	if accessOK {
		s.access = access
	}
	if refreshOK {
		s.refresh = refresh
	}
	if expiryOK {
		ms, err := strconv.ParseInt(rawExpiry, 10, 64)
		if err != nil {
			s.logger.Warn().Err(err).Str("value", rawExpiry).Msg("Ignoring malformed token expiry")
			return
		}
		s.expiresIn = time.Duration(ms) * time.Millisecond
		s.hasExpiry = true
	}
}

func (s *Store) write(ctx context.Context, key, value string) {
	if s.storage == nil {
		return
	}
	if err := s.storage.Set(ctx, key, value); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("Token storage unavailable, keeping value in memory")
	}
}

func (s *Store) read(ctx context.Context, key string) (string, bool) {
	value, ok, err := s.storage.Get(ctx, key)
	if err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("Token storage unavailable on restore")
		return "", false
	}
	return value, ok
}
