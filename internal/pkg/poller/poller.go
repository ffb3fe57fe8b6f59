package poller

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Fetcher returns the server's current snapshot of a list.
type Fetcher[T any] func(ctx context.Context) ([]T, error)

type Option[T any] func(*Poller[T])

// WithOrder sorts the merged list with less.
func WithOrder[T any](less func(a, b T) bool) Option[T] {
	return func(p *Poller[T]) { p.less = less }
}

func WithLogger[T any](logger *zap.Logger) Option[T] {
	return func(p *Poller[T]) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// OnUpdate registers fn to receive the merged list after every successful fetch.
func OnUpdate[T any](fn func(items []T)) Option[T] {
	return func(p *Poller[T]) { p.onUpdate = fn }
}

// OnRefresh registers fn to run when a manual Refresh starts, before its fetch.
func OnRefresh[T any](fn func()) Option[T] {
	return func(p *Poller[T]) { p.onRefresh = fn }
}

// Poller keeps a list in sync with a REST endpoint. Ticks and manual refreshes share one
// fetch-and-merge path; a failed fetch leaves the list unchanged.
type Poller[T any] struct {
	name      string
	fetch     Fetcher[T]
	key       func(T) string
	less      func(a, b T) bool
	onUpdate  func([]T)
	onRefresh func()
	logger    *zap.Logger
	task      *Task

	mu         sync.RWMutex
	items      []T
	loading    bool
	refreshing bool
	lastErr    error
	updatedAt  time.Time
}

func New[T any](name string, interval time.Duration, fetch Fetcher[T], key func(T) string, opts ...Option[T]) *Poller[T] {
	p := &Poller[T]{
		name:    name,
		fetch:   fetch,
		key:     key,
		logger:  zap.NewNop(),
		loading: true,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.task = NewTask(name, interval, p.poll, p.logger)
	return p
}

// Start begins polling; the first fetch happens immediately.
func (p *Poller[T]) Start(ctx context.Context) bool { return p.task.Start(ctx) }

// Stop cancels the timer. No fetch starts after Stop returns.
func (p *Poller[T]) Stop() { p.task.Stop() }

// Refresh fetches now, outside the timer. Refreshing is reset before the result is merged, so
// OnUpdate observes the settled state.
func (p *Poller[T]) Refresh(ctx context.Context) error {
	p.mu.Lock()
	p.refreshing = true
	onRefresh := p.onRefresh
	p.mu.Unlock()
	if onRefresh != nil {
		onRefresh()
	}

	snapshot, err := p.fetch(ctx)

	p.mu.Lock()
	p.refreshing = false
	p.mu.Unlock()
	return p.settle(snapshot, err)
}

// Upsert merges one locally known item, e.g. a message echoed back by the send endpoint.
func (p *Poller[T]) Upsert(item T) {
	p.apply([]T{item}, false)
}

// Snapshot returns a copy of the merged list.
func (p *Poller[T]) Snapshot() []T {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]T, len(p.items))
	copy(out, p.items)
	return out
}

// Loading is true until the first fetch completes, successfully or not.
func (p *Poller[T]) Loading() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.loading
}

// Refreshing is true while the fetch of a manual Refresh is in flight.
func (p *Poller[T]) Refreshing() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.refreshing
}

// Err is the error of the most recent fetch, nil after a success.
func (p *Poller[T]) Err() error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.lastErr
}

func (p *Poller[T]) UpdatedAt() time.Time {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.updatedAt
}

func (p *Poller[T]) poll(ctx context.Context) error {
	snapshot, err := p.fetch(ctx)
	return p.settle(snapshot, err)
}

func (p *Poller[T]) settle(snapshot []T, err error) error {
	if err != nil {
		p.mu.Lock()
		p.loading = false
		p.lastErr = err
		p.mu.Unlock()
		return err
	}
	p.apply(snapshot, true)
	return nil
}

func (p *Poller[T]) apply(snapshot []T, fetched bool) {
	p.mu.Lock()
	p.items = Merge(p.items, snapshot, p.key, p.less)
	if fetched {
		p.loading = false
		p.lastErr = nil
		p.updatedAt = time.Now()
	}
	items := make([]T, len(p.items))
	copy(items, p.items)
	onUpdate := p.onUpdate
	p.mu.Unlock()

	if onUpdate != nil {
		onUpdate(items)
	}
}
