// Package refresh schedules silent token refresh ahead of access token expiry.
package refresh

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	// LeadTime is how long before expiry the refresh is attempted
	LeadTime = 5 * time.Minute
	// MinDelay keeps short-lived tokens from triggering a refresh storm
	MinDelay = 1 * time.Minute
)

// Delay returns max(expiresIn - LeadTime, MinDelay)
func Delay(expiresIn time.Duration) time.Duration {
	if d := expiresIn - LeadTime; d > MinDelay {
		return d
	}
	return MinDelay
}

// Timer is the handle returned by an AfterFunc
type Timer interface {
	Stop() bool
}

// AfterFunc arms f to run once after d
type AfterFunc func(d time.Duration, f func()) Timer

// DueFunc performs the refresh. An error is logged and ends the cycle; the
// owner decides what a failed refresh means.
type DueFunc func(ctx context.Context) error

// Scheduler holds at most one armed refresh timer. Arming replaces the
// previous timer, and a replaced or cancelled timer never runs its callback.
type Scheduler struct {
	mu        sync.Mutex
	afterFunc AfterFunc
	now       func() time.Time
	logger    zerolog.Logger
	timer     Timer
	deadline  time.Time
	seq       uint64
}

type Option func(*Scheduler)

// WithAfterFunc replaces time.AfterFunc (primarily for testing)
func WithAfterFunc(f AfterFunc) Option {
	return func(s *Scheduler) {
		s.afterFunc = f
	}
}

// WithNow sets the now time function (primarily for testing)
func WithNow(now func() time.Time) Option {
	return func(s *Scheduler) {
		s.now = now
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(s *Scheduler) {
		s.logger = logger
	}
}

func NewScheduler(opts ...Option) *Scheduler {
	s := &Scheduler{
		afterFunc: func(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) },
		now:       time.Now,
		logger:    log.Logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With().Str("component", "refresh_scheduler").Logger()
	return s
}

// Arm cancels any armed timer and schedules onDue for Delay(expiresIn) from now.
// It returns the delay used.
func (s *Scheduler) Arm(expiresIn time.Duration, onDue DueFunc) time.Duration {
	delay := Delay(expiresIn)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.armLocked(s.now(), delay, onDue)
	return delay
}

// ArmAt cancels any armed timer and schedules onDue for deadline. A deadline
// already passed fires as soon as possible.
func (s *Scheduler) ArmAt(deadline time.Time, onDue DueFunc) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	delay := deadline.Sub(now)
	if delay < 0 {
		delay = 0
	}
	s.armLocked(now, delay, onDue)
	return delay
}

func (s *Scheduler) armLocked(now time.Time, delay time.Duration, onDue DueFunc) {
	s.stopLocked()
	s.seq++
	seq := s.seq
	s.deadline = now.Add(delay)
	s.timer = s.afterFunc(delay, func() { s.fire(seq, onDue) })

	s.logger.Debug().Dur("delay", delay).Time("deadline", s.deadline).Msg("Refresh armed")
}

// Cancel stops the armed timer, if any
func (s *Scheduler) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timer != nil {
		s.logger.Debug().Msg("Refresh cancelled")
	}
	s.stopLocked()
	s.seq++
}

// Armed reports whether a timer is outstanding
func (s *Scheduler) Armed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timer != nil
}

// Deadline is the wall-clock time the armed timer targets
func (s *Scheduler) Deadline() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deadline, s.timer != nil
}

func (s *Scheduler) stopLocked() {
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = nil
	s.deadline = time.Time{}
}

func (s *Scheduler) fire(seq uint64, onDue DueFunc) {
	s.mu.Lock()
	if seq != s.seq {
		// Superseded after Stop lost the race with the runtime timer
		s.mu.Unlock()
		return
	}
	s.timer = nil
	s.deadline = time.Time{}
	s.mu.Unlock()

	if err := onDue(context.Background()); err != nil {
		s.logger.Warn().Err(err).Msg("Scheduled refresh failed, not re-arming")
	}
}
