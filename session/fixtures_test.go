package session_test

import (
	"sync"
	"testing"
	"time"

	"github.com/jrsteele09/go-job-portal/portalapi/fakebackend"
	"github.com/jrsteele09/go-job-portal/session"
	"github.com/jrsteele09/go-job-portal/storage"
	"github.com/jrsteele09/go-job-portal/token/refresh"
	"github.com/jrsteele09/go-job-portal/users"
	"github.com/rs/zerolog"
)

const (
	testUser     = "jane"
	testPassword = "s3cret"
)

var janeCredentials = users.Credentials{Username: testUser, Password: testPassword}

// fakeTimers stands in for time.AfterFunc; tests fire timers by hand
type fakeTimers struct {
	mu     sync.Mutex
	timers []*fakeTimer
}

type fakeTimer struct {
	owner   *fakeTimers
	delay   time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	t.owner.mu.Lock()
	defer t.owner.mu.Unlock()
	active := !t.stopped && !t.fired
	t.stopped = true
	return active
}

func (ft *fakeTimers) AfterFunc(d time.Duration, f func()) refresh.Timer {
	ft.mu.Lock()
	defer ft.mu.Unlock()
	t := &fakeTimer{owner: ft, delay: d, f: f}
	ft.timers = append(ft.timers, t)
	return t
}

// active counts timers that are neither stopped nor fired
func (ft *fakeTimers) active() []*fakeTimer {
	ft.mu.Lock()
	defer ft.mu.Unlock()
	var out []*fakeTimer
	for _, t := range ft.timers {
		if !t.stopped && !t.fired {
			out = append(out, t)
		}
	}
	return out
}

func (ft *fakeTimers) armed() int {
	ft.mu.Lock()
	defer ft.mu.Unlock()
	return len(ft.timers)
}

// fire runs the single active timer synchronously
func (ft *fakeTimers) fire() {
	active := ft.active()
	if len(active) != 1 {
		panic("expected exactly one active timer")
	}
	t := active[0]
	ft.mu.Lock()
	t.fired = true
	ft.mu.Unlock()
	t.f()
}

// ui records navigations and notifications
type ui struct {
	mu            sync.Mutex
	navigations   []string
	hardNavs      []string
	notifications []string
}

func (u *ui) Navigate(path string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.navigations = append(u.navigations, path)
}

func (u *ui) HardNavigate(path string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.hardNavs = append(u.hardNavs, path)
}

func (u *ui) Notify(level session.NotifyLevel, message string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.notifications = append(u.notifications, string(level)+": "+message)
}

func (u *ui) hard() []string {
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]string(nil), u.hardNavs...)
}

type managerFixture struct {
	backend *fakebackend.Backend
	durable storage.Storage
	timers  *fakeTimers
	ui      *ui
	manager *session.Manager
}

func newBackend() *fakebackend.Backend {
	b := fakebackend.New()
	b.AddUser(testUser, testPassword, users.Roles{users.RoleCandidate},
		&users.Profile{FirstName: "Jane", LastName: "Doe", Email: "jane@example.com"})
	return b
}

func newManagerFixture(t *testing.T) managerFixture {
	t.Helper()
	return newManagerFixtureWith(t, newBackend(), storage.NewMemory())
}

func newManagerFixtureWith(t *testing.T, backend *fakebackend.Backend, durable storage.Storage, opts ...session.Option) managerFixture {
	t.Helper()
	f := managerFixture{
		backend: backend,
		durable: durable,
		timers:  &fakeTimers{},
		ui:      &ui{},
	}
	scheduler := refresh.NewScheduler(refresh.WithAfterFunc(f.timers.AfterFunc), refresh.WithLogger(zerolog.Nop()))
	opts = append([]session.Option{
		session.WithLogger(zerolog.Nop()),
		session.WithScheduler(scheduler),
		session.WithNavigator(f.ui),
		session.WithNotifier(f.ui),
	}, opts...)
	f.manager = session.NewManager(backend, durable, opts...)
	return f
}
