package scheduler

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestScheduler() *Scheduler {
	return NewScheduler(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestSchedulerStartStop(t *testing.T) {
	s := newTestScheduler()
	assert.False(t, s.IsRunning())

	require.NoError(t, s.Start(context.Background()))
	assert.True(t, s.IsRunning())

	// Start is idempotent.
	require.NoError(t, s.Start(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))
	assert.False(t, s.IsRunning())
}

func TestAddIntervalTaskReplacesByName(t *testing.T) {
	s := newTestScheduler()

	noop := func(context.Context) error { return nil }
	require.NoError(t, s.AddIntervalTask("reconcile", time.Minute, noop))
	require.NoError(t, s.AddIntervalTask("reconcile", 2*time.Minute, noop))

	assert.Equal(t, []string{"reconcile"}, s.ListTasks())
}

func TestAddCronTaskRejectsBadSchedule(t *testing.T) {
	s := newTestScheduler()

	err := s.AddCronTask("bad", "not a schedule", func(context.Context) error { return nil })
	require.Error(t, err)
	assert.Empty(t, s.ListTasks())
}
