package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	perrors "github.com/jrsteele09/go-job-portal/internal/errors"
	"github.com/jrsteele09/go-job-portal/portalapi"
	"github.com/jrsteele09/go-job-portal/storage"
	"github.com/jrsteele09/go-job-portal/token"
	"github.com/jrsteele09/go-job-portal/token/refresh"
	"github.com/jrsteele09/go-job-portal/users"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

const (
	flightRefresh = "refresh"
	flightMe      = "me"

	signInFailedMessage = "Sign in failed"
	signUpFailedMessage = "Sign up failed"
	signUpSuccess       = "Account created, please sign in"
)

// Manager is the single owner of a client's session. All reads go through
// Snapshot or Subscribe; all changes go through its methods.
type Manager struct {
	backend   Backend
	tokens    *token.Store
	records   recordStore
	scheduler *refresh.Scheduler
	navigator Navigator
	notifier  Notifier
	logger    zerolog.Logger
	nowTime   func() time.Time

	homePath             string
	signInPath           string
	rejectExpiredLocally bool
	requestTimeout       time.Duration

	mu           sync.Mutex
	state        State
	session      Session
	generation   uint64
	listeners    map[int]func(Snapshot)
	nextListener int
	refreshAt    time.Time
	version      uint64

	// persistMu serializes durable writes; persisted is the version last written
	persistMu sync.Mutex
	persisted uint64

	flights  singleflight.Group
	initOnce sync.Once
	initErr  error
}

type Option func(*Manager)

func WithLogger(logger zerolog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

func WithNavigator(n Navigator) Option {
	return func(m *Manager) {
		m.navigator = n
	}
}

func WithNotifier(n Notifier) Option {
	return func(m *Manager) {
		m.notifier = n
	}
}

// WithScheduler replaces the refresh scheduler, mainly to inject fake timers
func WithScheduler(s *refresh.Scheduler) Option {
	return func(m *Manager) {
		m.scheduler = s
	}
}

func WithNowTime(now func() time.Time) Option {
	return func(m *Manager) {
		m.nowTime = now
	}
}

// WithRoutes sets where logout and registration land
func WithRoutes(homePath, signInPath string) Option {
	return func(m *Manager) {
		m.homePath = homePath
		m.signInPath = signInPath
	}
}

// WithRejectExpiredLocally makes the manager refresh a restored access token
// whose exp claim has passed instead of presenting it to the backend.
func WithRejectExpiredLocally(reject bool) Option {
	return func(m *Manager) {
		m.rejectExpiredLocally = reject
	}
}

// WithRequestTimeout bounds backend calls the manager starts on its own
// (scheduled refresh and token source refresh)
func WithRequestTimeout(d time.Duration) Option {
	return func(m *Manager) {
		m.requestTimeout = d
	}
}

// NewManager builds a manager persisting to durable. A nil durable keeps the
// session in memory only.
func NewManager(backend Backend, durable storage.Storage, opts ...Option) *Manager {
	m := &Manager{
		backend:              backend,
		logger:               log.Logger,
		nowTime:              time.Now,
		homePath:             "/",
		signInPath:           "/auth/signin",
		rejectExpiredLocally: true,
		requestTimeout:       15 * time.Second,
		listeners:            make(map[int]func(Snapshot)),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = m.logger.With().Str("component", "session").Logger()

	if durable == nil {
		durable = storage.NewMemory()
	}
	m.tokens = token.NewStore(durable, token.WithLogger(m.logger))
	m.records = recordStore{durable: durable, logger: m.logger}
	if m.scheduler == nil {
		m.scheduler = refresh.NewScheduler(refresh.WithLogger(m.logger))
	}
	if m.navigator == nil {
		m.navigator = logNavigator{logger: m.logger}
	}
	if m.notifier == nil {
		m.notifier = logNotifier{logger: m.logger}
	}
	return m
}

// Login exchanges credentials for a token pair. A rejected attempt leaves the
// previous session in place. A profile fetch failure after a successful
// exchange leaves the session authenticated with no user.
func (m *Manager) Login(ctx context.Context, creds users.Credentials) error {
	m.mu.Lock()
	m.generation++
	gen := m.generation
	m.scheduler.Cancel()
	m.state = StateAuthenticating
	m.session.Error = ""
	snap := m.snapshotLocked()
	m.mu.Unlock()
	m.publish(snap)

	resp, err := m.backend.Login(ctx, creds)
	if err == nil && resp.AccessToken == "" {
		err = fmt.Errorf("%w: login returned no access token", perrors.ErrInternal)
	}

	m.mu.Lock()
	if gen != m.generation {
		m.mu.Unlock()
		return perrors.ErrSessionSuperseded
	}
	if err != nil {
		msg := perrors.UserMessage(err, signInFailedMessage)
		m.resumeLocked()
		m.session.Error = msg
		snap = m.snapshotLocked()
		m.mu.Unlock()
		m.publish(snap)
		m.notifier.Notify(NotifyError, msg)
		if perrors.IsAuthFailure(err) {
			err = fmt.Errorf("%w: %w", perrors.ErrInvalidCredentials, err)
		}
		return perrors.Wrapf(err, "[Manager Login]")
	}

	m.session = Session{}
	m.applyTokensLocked(resp)
	snap = m.snapshotLocked()
	access := m.session.AccessToken
	m.mu.Unlock()
	m.persist(ctx)
	m.publish(snap)
	m.logger.Info().Str("username", creds.Username).Msg("Signed in")

	// A rejected profile call right after sign-in leaves the user unset
	// rather than undoing the sign-in.
	_ = m.loadUser(ctx, gen, access, false)
	return nil
}

// Register creates an account without signing in, then sends the user to
// the sign-in route.
func (m *Manager) Register(ctx context.Context, reg users.Registration) (*users.UserProfile, error) {
	created, err := m.backend.Signup(ctx, reg)
	if err != nil {
		msg := perrors.UserMessage(err, signUpFailedMessage)
		m.mu.Lock()
		m.session.Error = msg
		snap := m.snapshotLocked()
		m.mu.Unlock()
		m.publish(snap)
		m.notifier.Notify(NotifyError, msg)
		return nil, perrors.Wrapf(err, "[Manager Register]")
	}

	m.notifier.Notify(NotifySuccess, signUpSuccess)
	m.navigator.Navigate(m.signInPath)
	return created, nil
}

// Logout tears the session down and hard-navigates home. Any request still
// in flight for the old session has its result discarded.
func (m *Manager) Logout() {
	ctx := context.Background()

	m.mu.Lock()
	m.generation++
	m.scheduler.Cancel()
	m.refreshAt = time.Time{}
	m.state = StateAnonymous
	m.session = Session{}
	m.version++
	snap := m.snapshotLocked()
	m.mu.Unlock()

	m.persist(ctx)
	m.publish(snap)
	m.logger.Info().Msg("Signed out")
	m.navigator.HardNavigate(m.homePath)
}

// Refresh rotates the token pair. Concurrent callers for the same session
// share one request. Any failure, including a session that holds no refresh
// token, ends the session.
func (m *Manager) Refresh(ctx context.Context) error {
	m.mu.Lock()
	gen := m.generation
	m.mu.Unlock()

	key := fmt.Sprintf("%s:%d", flightRefresh, gen)
	_, err, _ := m.flights.Do(key, func() (any, error) {
		return nil, m.refresh(ctx, gen)
	})
	return err
}

func (m *Manager) refresh(ctx context.Context, gen uint64) error {
	m.mu.Lock()
	if gen != m.generation {
		m.mu.Unlock()
		return perrors.ErrSessionSuperseded
	}
	if m.state != StateAuthenticated {
		m.mu.Unlock()
		return perrors.ErrNotAuthenticated
	}
	refreshToken := m.session.RefreshToken
	m.mu.Unlock()

	var resp portalapi.TokenResponse
	var err error
	if refreshToken == "" {
		err = perrors.ErrNoRefreshToken
	} else {
		resp, err = m.backend.Refresh(ctx, refreshToken)
		if err == nil && resp.AccessToken == "" {
			err = fmt.Errorf("%w: refresh returned no access token", perrors.ErrInternal)
		}
	}

	m.mu.Lock()
	if gen != m.generation || m.state != StateAuthenticated {
		m.mu.Unlock()
		m.logger.Debug().Msg("Discarding refresh result for a superseded session")
		return perrors.ErrSessionSuperseded
	}
	if err != nil {
		m.state = StateRefreshFailed
		snap := m.snapshotLocked()
		m.mu.Unlock()
		m.publish(snap)

		m.logger.Warn().Err(err).Msg("Token refresh failed, signing out")
		m.Logout()
		return fmt.Errorf("%w: %w", perrors.ErrRefreshFailed, err)
	}

	m.applyTokensLocked(resp)
	snap := m.snapshotLocked()
	m.mu.Unlock()
	m.persist(ctx)
	m.publish(snap)
	m.logger.Debug().Dur("expiresIn", resp.Lifetime()).Msg("Tokens refreshed")
	return nil
}

// EnsureCurrentUser loads the profile when NeedsFetch says so. A rejected
// session signs the user out; other failures are logged and keep the
// previous profile.
func (m *Manager) EnsureCurrentUser(ctx context.Context, force bool) error {
	m.mu.Lock()
	authenticated := m.state == StateAuthenticated && m.session.IsAuthenticated
	if !NeedsFetch(m.session.User, authenticated, force) {
		m.mu.Unlock()
		return nil
	}
	gen := m.generation
	access := m.session.AccessToken
	m.mu.Unlock()

	return m.loadUser(ctx, gen, access, true)
}

func (m *Manager) loadUser(ctx context.Context, gen uint64, access string, rejectEndsSession bool) error {
	v, err, _ := m.flights.Do(flightMe+":"+access, func() (any, error) {
		return m.backend.Me(ctx, access)
	})

	if err != nil {
		if rejectEndsSession && perrors.IsAuthFailure(err) {
			m.mu.Lock()
			current := gen == m.generation
			m.mu.Unlock()
			if !current {
				return nil
			}
			m.logger.Info().Err(err).Msg("Session rejected by backend, signing out")
			m.Logout()
			return perrors.Wrapf(err, "[Manager EnsureCurrentUser]")
		}
		m.logger.Warn().Err(err).Msg("Could not load current user")
		return nil
	}

	user, _ := v.(*users.UserProfile)
	m.mu.Lock()
	if gen != m.generation || !m.session.IsAuthenticated {
		m.mu.Unlock()
		return nil
	}
	m.session.User = user
	m.version++
	snap := m.snapshotLocked()
	m.mu.Unlock()
	m.persist(ctx)
	m.publish(snap)
	return nil
}

// Snapshot returns the current published state
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// TakeError returns the pending user-facing error and clears it
func (m *Manager) TakeError() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	msg := m.session.Error
	m.session.Error = ""
	return msg
}

// HasRole checks the loaded profile. False while no profile is loaded.
func (m *Manager) HasRole(roles ...users.Role) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session.User.HasAnyRole(roles...)
}

// RefreshDeadline reports when the next silent refresh is due
func (m *Manager) RefreshDeadline() (time.Time, bool) {
	return m.scheduler.Deadline()
}

// Subscribe registers fn for every state change. fn runs outside the
// manager's lock and may call back into it.
func (m *Manager) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextListener
	m.nextListener++
	m.listeners[id] = fn
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.listeners, id)
	}
}

func (m *Manager) applyTokensLocked(resp portalapi.TokenResponse) {
	expiresIn := resp.Lifetime()
	m.session.AccessToken = resp.AccessToken
	m.session.RefreshToken = resp.RefreshToken
	m.session.ExpiresIn = expiresIn
	m.session.IsAuthenticated = true
	m.state = StateAuthenticated
	m.version++
	m.armLocked(expiresIn)
}

func (m *Manager) armLocked(expiresIn time.Duration) {
	m.scheduler.Arm(expiresIn, m.scheduledRefresh)
	m.refreshAt, _ = m.scheduler.Deadline()
}

// resumeLocked returns to the session held before a sign-in attempt,
// including its refresh deadline
func (m *Manager) resumeLocked() {
	if !m.session.IsAuthenticated {
		m.state = StateAnonymous
		return
	}
	m.state = StateAuthenticated
	if !m.refreshAt.IsZero() {
		m.scheduler.ArmAt(m.refreshAt, m.scheduledRefresh)
	}
}

func (m *Manager) scheduledRefresh(context.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), m.requestTimeout)
	defer cancel()
	return m.Refresh(ctx)
}

// persist writes the current session to durable storage without holding
// m.mu. Writers are serialized and each writes whatever is current, so storage
// never ends up behind memory.
func (m *Manager) persist(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)

	m.persistMu.Lock()
	defer m.persistMu.Unlock()

	m.mu.Lock()
	version := m.version
	sess := m.session
	m.mu.Unlock()
	if version == m.persisted {
		return
	}

	switch {
	case sess.IsAuthenticated:
		m.tokens.SetSession(ctx, sess.AccessToken, sess.RefreshToken, sess.ExpiresIn)
		m.records.save(ctx, PersistedRecord{User: sess.User, IsAuthenticated: true})
	case sess.User != nil:
		m.tokens.Clear(ctx)
		m.records.save(ctx, PersistedRecord{User: sess.User})
	default:
		m.tokens.Clear(ctx)
		m.records.clear(ctx)
	}
	m.persisted = version
}

func (m *Manager) snapshotLocked() Snapshot {
	return Snapshot{State: m.state, Session: m.session}
}

func (m *Manager) publish(snap Snapshot) {
	m.mu.Lock()
	listeners := make([]func(Snapshot), 0, len(m.listeners))
	for _, fn := range m.listeners {
		listeners = append(listeners, fn)
	}
	m.mu.Unlock()

	for _, fn := range listeners {
		fn(snap)
	}
}
