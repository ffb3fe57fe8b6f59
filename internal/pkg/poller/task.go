// Package poller runs fixed-interval background fetches and keeps the merged result lists the
// chat and notification streams render.
package poller

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/FACorreiaa/go-mentorportal/internal/app/observability/metrics"
)

// RunFunc is one tick of a Task.
type RunFunc func(ctx context.Context) error

// Task calls a RunFunc immediately on Start and then every interval until Stop or the parent
// context is cancelled. A failed run is logged and the timer keeps going.
type Task struct {
	name     string
	interval time.Duration
	run      RunFunc
	logger   *zap.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewTask(name string, interval time.Duration, run RunFunc, logger *zap.Logger) *Task {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Task{name: name, interval: interval, run: run, logger: logger}
}

// Start launches the loop. It returns false if the task is already running.
func (t *Task) Start(ctx context.Context) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancel != nil {
		return false
	}

	ctx, cancel := context.WithCancel(ctx)
	t.cancel = cancel
	t.done = make(chan struct{})
	go t.loop(ctx, t.done)
	return true
}

// Stop cancels the loop and waits for an in-flight run to return. Safe to call more than once.
func (t *Task) Stop() {
	t.mu.Lock()
	cancel, done := t.cancel, t.done
	t.cancel, t.done = nil, nil
	t.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (t *Task) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cancel != nil
}

func (t *Task) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	t.tick(ctx)
	if t.interval <= 0 {
		<-ctx.Done()
		return
	}

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// both channels may be ready at once
			if ctx.Err() != nil {
				return
			}
			t.tick(ctx)
		}
	}
}

func (t *Task) tick(ctx context.Context) {
	if err := t.run(ctx); err != nil {
		if ctx.Err() != nil {
			return
		}
		metrics.PollTick(ctx, t.name, "error")
		t.logger.Warn("Poll tick failed", zap.String("task", t.name), zap.Error(err))
		return
	}
	metrics.PollTick(ctx, t.name, "ok")
}
