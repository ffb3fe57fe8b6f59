// Package streaming serves server-sent event streams and keeps track of the ones each browser
// profile has open, so signing out can end them.
package streaming

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Event is one SSE message. Type doubles as the SSE event name.
type Event struct {
	Type      string    `json:"type"`
	EventID   string    `json:"event_id"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data,omitempty"`
	Error     string    `json:"error,omitempty"`
	IsFinal   bool      `json:"is_final,omitempty"`
	// Loading is set until the first poll behind the stream completes.
	Loading    bool `json:"loading"`
	Refreshing bool `json:"refreshing"`
}

func NewEvent(typ string, data any) Event {
	return Event{Type: typ, EventID: uuid.NewString(), Timestamp: time.Now().UTC(), Data: data}
}

// ErrorEvent is sent when a poll fails; the stream stays open.
func ErrorEvent(typ string, err error) Event {
	ev := NewEvent(typ, nil)
	ev.Error = err.Error()
	return ev
}

// Offer hands ev to a buffered channel, replacing an undelivered older event. Every event
// carries a full snapshot, so only the newest one matters.
func Offer(ch chan Event, ev Event) {
	for {
		select {
		case ch <- ev:
			return
		default:
			select {
			case <-ch:
			default:
			}
		}
	}
}

// Serve writes events until ctx is done or a final event was sent.
func Serve(ctx context.Context, c *gin.Context, events <-chan Event, logger *zap.Logger) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		logger.Error("Streaming unsupported by response writer")
		return
	}
	flusher.Flush()

	for {
		select {
		case ev := <-events:
			c.SSEvent(ev.Type, ev)
			flusher.Flush()
			if ev.IsFinal {
				return
			}
		case <-ctx.Done():
			logger.Debug("SSE connection closed", zap.String("path", c.Request.URL.Path))
			return
		}
	}
}

// Manager tracks open streams per profile, and the live values (usually pollers) behind them
// so other requests from the same profile can reach them.
type Manager struct {
	mu      sync.Mutex
	streams map[string]map[string]context.CancelFunc
	live    map[liveKey]map[string]any
}

type liveKey struct {
	profileID string
	name      string
}

func NewManager() *Manager {
	return &Manager{
		streams: make(map[string]map[string]context.CancelFunc),
		live:    make(map[liveKey]map[string]any),
	}
}

// Register publishes v under name for profileID until unregister is called.
func (m *Manager) Register(profileID, name string, v any) (unregister func()) {
	key := liveKey{profileID: profileID, name: name}
	id := uuid.NewString()

	m.mu.Lock()
	if m.live[key] == nil {
		m.live[key] = make(map[string]any)
	}
	m.live[key][id] = v
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.live[key], id)
		if len(m.live[key]) == 0 {
			delete(m.live, key)
		}
	}
}

// Lookup returns the values of type T registered under name for profileID. A browser with two
// tabs on the same stream has two.
func Lookup[T any](m *Manager, profileID, name string) []T {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []T
	for _, v := range m.live[liveKey{profileID: profileID, name: name}] {
		if t, ok := v.(T); ok {
			out = append(out, t)
		}
	}
	return out
}

// Open registers a stream for profileID. The returned context ends when the parent does or
// when StopProfile is called; release must be called once the stream is done.
func (m *Manager) Open(parent context.Context, profileID string) (context.Context, func()) {
	ctx, cancel := context.WithCancel(parent)
	id := uuid.NewString()

	m.mu.Lock()
	if m.streams[profileID] == nil {
		m.streams[profileID] = make(map[string]context.CancelFunc)
	}
	m.streams[profileID][id] = cancel
	m.mu.Unlock()

	release := func() {
		cancel()
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.streams[profileID], id)
		if len(m.streams[profileID]) == 0 {
			delete(m.streams, profileID)
		}
	}
	return ctx, release
}

// StopProfile ends every stream of profileID and returns how many there were.
func (m *Manager) StopProfile(profileID string) int {
	m.mu.Lock()
	streams := m.streams[profileID]
	delete(m.streams, profileID)
	m.mu.Unlock()

	for _, cancel := range streams {
		cancel()
	}
	return len(streams)
}

// Active counts the open streams of profileID.
func (m *Manager) Active(profileID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.streams[profileID])
}

// StopAll ends every open stream, e.g. before the server shuts down.
func (m *Manager) StopAll() int {
	m.mu.Lock()
	streams := m.streams
	m.streams = make(map[string]map[string]context.CancelFunc)
	m.mu.Unlock()

	n := 0
	for _, byID := range streams {
		for _, cancel := range byID {
			cancel()
			n++
		}
	}
	return n
}
