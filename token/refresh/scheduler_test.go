package refresh_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jrsteele09/go-job-portal/token/refresh"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// fakeTimers records every armed timer so tests can fire them by hand
type fakeTimers struct {
	mu     sync.Mutex
	timers []*fakeTimer
}

type fakeTimer struct {
	delay   time.Duration
	f       func()
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	wasActive := !t.stopped
	t.stopped = true
	return wasActive
}

func (ft *fakeTimers) AfterFunc(d time.Duration, f func()) refresh.Timer {
	ft.mu.Lock()
	defer ft.mu.Unlock()
	t := &fakeTimer{delay: d, f: f}
	ft.timers = append(ft.timers, t)
	return t
}

func (ft *fakeTimers) last() *fakeTimer {
	ft.mu.Lock()
	defer ft.mu.Unlock()
	return ft.timers[len(ft.timers)-1]
}

func newTestScheduler(ft *fakeTimers, now time.Time) *refresh.Scheduler {
	return refresh.NewScheduler(
		refresh.WithAfterFunc(ft.AfterFunc),
		refresh.WithNow(func() time.Time { return now }),
		refresh.WithLogger(zerolog.Nop()),
	)
}

func TestDelay(t *testing.T) {
	cases := []struct {
		expiresIn time.Duration
		want      time.Duration
	}{
		{time.Hour, 55 * time.Minute},
		{360 * time.Second, time.Minute},
		{361 * time.Second, 61 * time.Second},
		{359 * time.Second, time.Minute},
		{4 * time.Minute, time.Minute},
		{0, time.Minute},
		{-time.Hour, time.Minute},
	}
	for _, c := range cases {
		require.Equal(t, c.want, refresh.Delay(c.expiresIn), "expiresIn=%s", c.expiresIn)
	}
}

func TestDelayLeadTimeProperty(t *testing.T) {
	for ms := int64(0); ms <= 2_000_000; ms += 7_919 {
		expiresIn := time.Duration(ms) * time.Millisecond
		got := refresh.Delay(expiresIn)
		if ms >= 360_000 {
			require.Equal(t, expiresIn-300*time.Second, got)
		} else {
			require.Equal(t, 60*time.Second, got)
		}
	}
}

func TestArmReplacesPreviousTimer(t *testing.T) {
	ft := &fakeTimers{}
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s := newTestScheduler(ft, now)

	calls := 0
	onDue := func(context.Context) error { calls++; return nil }

	require.Equal(t, 55*time.Minute, s.Arm(time.Hour, onDue))
	first := ft.last()

	require.Equal(t, 25*time.Minute, s.Arm(30*time.Minute, onDue))
	second := ft.last()
	require.True(t, first.stopped)
	require.False(t, second.stopped)

	deadline, ok := s.Deadline()
	require.True(t, ok)
	require.Equal(t, now.Add(25*time.Minute), deadline)

	// A superseded timer that still fires does nothing
	first.f()
	require.Equal(t, 0, calls)
	require.True(t, s.Armed())

	second.f()
	require.Equal(t, 1, calls)
	require.False(t, s.Armed())
}

func TestArmAt(t *testing.T) {
	ft := &fakeTimers{}
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s := newTestScheduler(ft, now)
	onDue := func(context.Context) error { return nil }

	s.Arm(time.Hour, onDue)
	first := ft.last()

	require.Equal(t, 7*time.Minute, s.ArmAt(now.Add(7*time.Minute), onDue))
	require.True(t, first.stopped)
	deadline, ok := s.Deadline()
	require.True(t, ok)
	require.Equal(t, now.Add(7*time.Minute), deadline)

	require.Zero(t, s.ArmAt(now.Add(-time.Minute), onDue))
	require.Zero(t, ft.last().delay)
}

func TestCancel(t *testing.T) {
	ft := &fakeTimers{}
	s := newTestScheduler(ft, time.Now())

	s.Cancel()
	require.False(t, s.Armed())

	calls := 0
	s.Arm(time.Hour, func(context.Context) error { calls++; return nil })
	s.Cancel()
	require.True(t, ft.last().stopped)
	require.False(t, s.Armed())
	_, ok := s.Deadline()
	require.False(t, ok)

	ft.last().f()
	require.Equal(t, 0, calls)
}

func TestFailedRefreshDoesNotRearm(t *testing.T) {
	ft := &fakeTimers{}
	s := newTestScheduler(ft, time.Now())

	s.Arm(time.Hour, func(context.Context) error { return errors.New("refresh rejected") })
	ft.last().f()

	require.False(t, s.Armed())
	require.Len(t, ft.timers, 1)
}

func TestCallbackCanRearm(t *testing.T) {
	ft := &fakeTimers{}
	s := newTestScheduler(ft, time.Now())

	var onDue refresh.DueFunc
	onDue = func(context.Context) error {
		s.Arm(2*time.Minute, onDue)
		return nil
	}
	s.Arm(time.Hour, onDue)
	ft.last().f()

	require.True(t, s.Armed())
	require.Len(t, ft.timers, 2)
	require.Equal(t, refresh.MinDelay, ft.last().delay)
}

func TestRealTimerFires(t *testing.T) {
	fired := make(chan struct{})
	s := refresh.NewScheduler(
		refresh.WithLogger(zerolog.Nop()),
		refresh.WithAfterFunc(func(_ time.Duration, f func()) refresh.Timer {
			return time.AfterFunc(time.Millisecond, f)
		}),
	)
	s.Arm(time.Hour, func(context.Context) error { close(fired); return nil })

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("refresh callback never fired")
	}
}
