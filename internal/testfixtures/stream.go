package testfixtures

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/stretchr/testify/require"
)

// SSEEvent is one parsed server-sent event.
type SSEEvent struct {
	Name string
	Data string
}

// SSEStream reads events from a live response.
type SSEStream struct {
	Response *http.Response
	scanner  *bufio.Scanner
}

// Next blocks until the next complete event. ok is false once the stream has ended.
func (s *SSEStream) Next() (ev SSEEvent, ok bool) {
	for s.scanner.Scan() {
		line := s.scanner.Text()
		switch {
		case line == "":
			if ev.Name != "" || ev.Data != "" {
				return ev, true
			}
		case strings.HasPrefix(line, "event:"):
			ev.Name = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			ev.Data += strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		}
	}
	return ev, false
}

// Stream opens path on a real listener with this browser's cookies, since a recorder cannot be
// read while the handler is still writing. Cancel ctx to hang up.
func (h *Harness) Stream(ctx context.Context, path string) *SSEStream {
	h.t.Helper()
	if h.server == nil {
		h.server = httptest.NewServer(h.Router)
		h.t.Cleanup(h.server.Close)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.server.URL+path, nil)
	require.NoError(h.t, err)
	req.Header.Set("Accept", "text/event-stream")
	for _, ck := range h.cookies {
		req.AddCookie(ck)
	}

	resp, err := h.server.Client().Do(req)
	require.NoError(h.t, err)
	h.t.Cleanup(func() { _ = resp.Body.Close() })
	return &SSEStream{Response: resp, scanner: bufio.NewScanner(resp.Body)}
}
