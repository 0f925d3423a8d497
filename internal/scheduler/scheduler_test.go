package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSweeper struct {
	mu        sync.Mutex
	calls     int
	failures  int
	olderThan time.Duration
}

func (f *fakeSweeper) SweepStale(_ context.Context, olderThan time.Duration) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.olderThan = olderThan
	if f.calls <= f.failures {
		return 0, errors.New("database unavailable")
	}
	return 2, nil
}

func (f *fakeSweeper) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func TestStartStop(t *testing.T) {
	s := New(&fakeSweeper{}, "@every 1h", 45*time.Minute)

	require.NoError(t, s.Start(context.Background()))
	assert.True(t, s.Running())
	assert.Error(t, s.Start(context.Background()), "a running scheduler cannot start twice")

	s.Stop()
	assert.False(t, s.Running())
	s.Stop()

	require.NoError(t, s.Start(context.Background()), "a stopped scheduler can start again")
	s.Stop()
}

func TestStartRejectsBadSpec(t *testing.T) {
	s := New(&fakeSweeper{}, "every now and then", time.Minute)
	assert.Error(t, s.Start(context.Background()))
	assert.False(t, s.Running())
}

func TestSweepRunsOnSchedule(t *testing.T) {
	sweeper := &fakeSweeper{}
	s := New(sweeper, "@every 1s", 45*time.Minute)
	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	assert.Eventually(t, func() bool { return sweeper.callCount() > 0 }, 3*time.Second, 50*time.Millisecond)
}

func TestSweepNowRetries(t *testing.T) {
	sweeper := &fakeSweeper{failures: 2}
	s := New(sweeper, "@every 1h", 45*time.Minute)
	s.retryDelay = time.Millisecond

	n, err := s.SweepNow(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 3, sweeper.callCount())
	assert.Equal(t, 45*time.Minute, sweeper.olderThan)

	sweeper = &fakeSweeper{failures: 5}
	s = New(sweeper, "@every 1h", time.Minute)
	s.retryDelay = time.Millisecond
	_, err = s.SweepNow(context.Background())
	assert.ErrorContains(t, err, "failed after 3 attempts")
}
