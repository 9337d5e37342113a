package poll_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ProductDash/internal/poll"
)

func TestTask_ImmediateThenPerTick(t *testing.T) {
	clock := poll.NewManualClock()
	calls := make(chan struct{}, 10)
	var n atomic.Int32

	task := poll.Start(context.Background(), clock, 5*time.Second, func(context.Context) {
		n.Add(1)
		calls <- struct{}{}
	})

	<-calls
	assert.Equal(t, int32(1), n.Load())

	require.True(t, clock.Tick())
	<-calls
	require.True(t, clock.Tick())
	<-calls
	assert.Equal(t, int32(3), n.Load())

	task.Stop()
	assert.False(t, clock.Tick(), "stopped ticker must not take ticks")
	assert.Equal(t, int32(3), n.Load())
}

func TestTask_StopIsIdempotent(t *testing.T) {
	task := poll.Start(context.Background(), poll.NewManualClock(), time.Second, func(context.Context) {})

	task.Stop()
	task.Stop()

	select {
	case <-task.Done():
	default:
		t.Fatal("task not done after Stop")
	}
}

func TestTask_ParentCancelEndsLoop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	task := poll.Start(ctx, poll.NewManualClock(), time.Second, func(context.Context) {})

	cancel()

	select {
	case <-task.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("task still running after parent cancel")
	}
}

func TestTask_RealClock(t *testing.T) {
	var n atomic.Int32
	task := poll.Start(context.Background(), nil, 5*time.Millisecond, func(context.Context) { n.Add(1) })

	require.Eventually(t, func() bool { return n.Load() >= 3 }, 2*time.Second, time.Millisecond)
	task.Stop()

	after := n.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, after, n.Load())
}
