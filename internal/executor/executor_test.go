package executor

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/specialistvlad/graphua/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPool_RunsEveryTask(t *testing.T) {
	t.Parallel()
	ctx, _ := testutil.LoggedContext(t)
	p := New(4, 100)
	p.Start(ctx)

	var mu sync.Mutex
	seen := make(map[int]bool)

	// Act
	for i := 0; i < 50; i++ {
		i := i
		require.NoError(t, p.Submit(ctx, "task", func(context.Context) {
			mu.Lock()
			seen[i] = true
			mu.Unlock()
		}))
	}
	p.Stop()

	// Assert
	assert.Len(t, seen, 50)
	stats := p.Stats()
	assert.Equal(t, uint64(50), stats.Completed)
	assert.Equal(t, 4, stats.Workers)
	assert.Zero(t, stats.Running)
}

func TestPool_RejectsWhenFull(t *testing.T) {
	t.Parallel()
	ctx, logs := testutil.LoggedContext(t)
	p := New(1, 1)
	p.Start(ctx)

	started := make(chan struct{})
	release := make(chan struct{})
	require.NoError(t, p.Submit(ctx, "blocker", func(context.Context) {
		close(started)
		<-release
	}))
	<-started

	// Act
	require.NoError(t, p.Submit(ctx, "queued", func(context.Context) {}))
	err := p.Submit(ctx, "overflow", func(context.Context) {})

	// Assert
	require.ErrorIs(t, err, ErrQueueFull)
	close(release)
	p.Stop()
	assert.Equal(t, uint64(1), p.Stats().Rejected)
	assert.Equal(t, uint64(2), p.Stats().Completed)
	testutil.AssertLogged(t, logs, "Executor queue full", "overflow")
}

func TestPool_SubmitAfterStop(t *testing.T) {
	t.Parallel()
	p := New(2, 2)
	p.Start(context.Background())
	p.Stop()
	p.Stop()

	err := p.Submit(context.Background(), "late", func(context.Context) {})
	assert.ErrorIs(t, err, ErrStopped)
}

func TestPool_SkipsCancelledTasks(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	p := New(1, 4)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	ran := false
	require.NoError(t, p.Submit(cancelled, "cancelled", func(context.Context) { ran = true }))

	// Act
	p.Start(ctx)
	p.Stop()

	// Assert
	assert.False(t, ran)
	assert.Equal(t, uint64(1), p.Stats().Skipped)
}

func TestPool_RecoversPanics(t *testing.T) {
	t.Parallel()
	ctx, logs := testutil.LoggedContext(t)
	p := New(1, 4)
	p.Start(ctx)

	done := make(chan struct{})
	require.NoError(t, p.Submit(ctx, "boom", func(context.Context) { panic("boom") }))
	require.NoError(t, p.Submit(ctx, "after", func(context.Context) { close(done) }))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not survive the panic")
	}
	p.Stop()

	assert.Equal(t, uint64(1), p.Stats().Panics)
	assert.Equal(t, uint64(1), p.Stats().Completed)
	testutil.AssertLogged(t, logs, "Task panicked.")
}

func TestPool_StopWithoutStart(t *testing.T) {
	t.Parallel()
	p := New(0, 0)
	require.NoError(t, p.Submit(context.Background(), "orphan", func(context.Context) {}))

	p.Stop()

	assert.Equal(t, uint64(1), p.Stats().Skipped)
	assert.Equal(t, 1, p.Stats().Workers)
}
