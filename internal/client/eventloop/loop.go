// Package eventloop runs all client state on a single goroutine.
//
// Component state (session gate, flows, upload workflow) is only touched
// from tasks executed by Loop.Run, so components need no locks. Blocking
// work such as a file read or an HTTP round trip is started with Go: it runs
// on its own goroutine and its continuation is posted back to the loop.
//
// The loop counts queued tasks and outstanding async work; WaitIdle blocks
// until both reach zero, which is how the REPL and the tests wait for a
// command and every continuation it triggered to settle.
package eventloop

import (
	"context"
	"errors"
	"sync"
)

// ErrStopped is returned by WaitIdle once Run has returned.
var ErrStopped = errors.New("event loop stopped")

type Loop struct {
	mu      sync.Mutex
	queue   []func()
	pending int
	idle    chan struct{}
	wake    chan struct{}

	stopped  chan struct{}
	stopOnce sync.Once
}

// New returns a loop that does nothing until Run is called.
func New() *Loop {
	idle := make(chan struct{})
	close(idle)
	return &Loop{idle: idle, wake: make(chan struct{}, 1), stopped: make(chan struct{})}
}

// acquire must be called with mu held.
func (l *Loop) acquire() {
	if l.pending == 0 {
		l.idle = make(chan struct{})
	}
	l.pending++
}

func (l *Loop) release() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.pending--
	if l.pending == 0 {
		close(l.idle)
	}
}

// Post queues fn for execution on the loop goroutine. It never blocks, so
// tasks may post further tasks.
func (l *Loop) Post(fn func()) {
	l.mu.Lock()
	l.acquire()
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Call posts fn and waits for it to finish. It reports false when the loop
// stopped before fn ran. It must not be called from the loop goroutine itself.
func (l *Loop) Call(fn func()) bool {
	done := make(chan struct{})
	l.Post(func() {
		defer close(done)
		fn()
	})
	select {
	case <-done:
		return true
	case <-l.stopped:
		select {
		case <-done:
			return true
		default:
			return false
		}
	}
}

// Stopped is closed once Run has returned.
func (l *Loop) Stopped() <-chan struct{} {
	return l.stopped
}

// Go runs work on a new goroutine and posts then(result) to the loop once
// work returns. The loop is not idle while work is running.
func Go[T any](l *Loop, work func() T, then func(T)) {
	l.mu.Lock()
	l.acquire()
	l.mu.Unlock()

	go func() {
		v := work()
		l.Post(func() { then(v) })
		l.release()
	}()
}

// Run executes queued tasks until ctx is done. Tasks still queued then are
// never run.
func (l *Loop) Run(ctx context.Context) {
	defer l.stopOnce.Do(func() { close(l.stopped) })
	for {
		l.mu.Lock()
		if len(l.queue) == 0 {
			l.mu.Unlock()
			select {
			case <-l.wake:
				continue
			case <-ctx.Done():
				return
			}
		}
		fn := l.queue[0]
		l.queue[0] = nil
		l.queue = l.queue[1:]
		l.mu.Unlock()

		fn()
		l.release()
	}
}

// WaitIdle blocks until no task is queued and no async work is running,
// until the loop stops or until ctx is done.
func (l *Loop) WaitIdle(ctx context.Context) error {
	l.mu.Lock()
	idle := l.idle
	l.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-l.stopped:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}
