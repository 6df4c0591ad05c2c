package eventloop

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startLoop(t *testing.T) *Loop {
	t.Helper()
	l := New()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go l.Run(ctx)
	return l
}

func waitIdle(t *testing.T, l *Loop) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, l.WaitIdle(ctx))
}

func TestPost_RunsTasksInOrderOnOneGoroutine(t *testing.T) {
	l := startLoop(t)

	var order []int
	for i := 0; i < 50; i++ {
		i := i
		l.Post(func() { order = append(order, i) })
	}
	waitIdle(t, l)

	require.Len(t, order, 50)
	for i, v := range order {
		assert.Equal(t, i, v)
	}
}

func TestPost_FromInsideTaskDoesNotDeadlock(t *testing.T) {
	l := startLoop(t)

	var got []string
	l.Call(func() {
		got = append(got, "outer")
		l.Post(func() { got = append(got, "inner") })
	})
	waitIdle(t, l)

	assert.Equal(t, []string{"outer", "inner"}, got)
}

func TestGo_ContinuationRunsOnLoopAfterWork(t *testing.T) {
	l := startLoop(t)

	var loopGoroutineTasks atomic.Int32
	var result string

	Go(l, func() string {
		return "read 10 bytes"
	}, func(v string) {
		loopGoroutineTasks.Add(1)
		result = v
	})
	waitIdle(t, l)

	assert.Equal(t, int32(1), loopGoroutineTasks.Load())
	assert.Equal(t, "read 10 bytes", result)
}

func TestWaitIdle_BlocksWhileWorkIsOutstanding(t *testing.T) {
	l := startLoop(t)

	release := make(chan struct{})
	done := false
	Go(l, func() struct{} {
		<-release
		return struct{}{}
	}, func(struct{}) { done = true })

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	require.ErrorIs(t, l.WaitIdle(ctx), context.DeadlineExceeded)

	close(release)
	waitIdle(t, l)
	l.Call(func() { assert.True(t, done) })
}

func TestWaitIdle_ReturnsImmediatelyOnFreshLoop(t *testing.T) {
	l := New()
	require.NoError(t, l.WaitIdle(context.Background()))
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	l := New()
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		l.Run(ctx)
		close(stopped)
	}()

	cancel()
	select {
	case <-stopped:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestCall_ReturnsAfterRunStops(t *testing.T) {
	l := New()
	ctx, cancel := context.WithCancel(context.Background())
	go l.Run(ctx)
	require.True(t, l.Call(func() {}))

	cancel()
	select {
	case <-l.Stopped():
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}

	returned := make(chan bool)
	go func() { returned <- l.Call(func() { t.Error("task ran on a stopped loop") }) }()
	select {
	case ran := <-returned:
		assert.False(t, ran)
	case <-time.After(5 * time.Second):
		t.Fatal("Call blocked on a stopped loop")
	}

	require.ErrorIs(t, l.WaitIdle(context.Background()), ErrStopped)
}
