package messages

import (
	"context"
	"encoding/json"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-mentorportal/internal/app/middleware"
	"github.com/FACorreiaa/go-mentorportal/internal/app/models"
	"github.com/FACorreiaa/go-mentorportal/internal/app/streaming"
	"github.com/FACorreiaa/go-mentorportal/internal/pkg/guard"
	"github.com/FACorreiaa/go-mentorportal/internal/testfixtures"
)

func newHarness(t *testing.T, streams *streaming.Manager) *testfixtures.Harness {
	t.Helper()
	return newHarnessEvery(t, streams, 20*time.Millisecond)
}

func newHarnessEvery(t *testing.T, streams *streaming.Manager, interval time.Duration) *testfixtures.Harness {
	t.Helper()
	h := testfixtures.NewHarness(t)
	handlers := NewMessagesHandlers(streams, interval, nil)
	g := guard.Require(guard.DefaultConfig(nil), middleware.Provider)
	h.Router.GET("/messages", g, handlers.Contacts)
	h.Router.GET("/messages/conversation", g, handlers.Conversation)
	h.Router.POST("/messages/send", g, handlers.Send)
	h.Router.GET("/messages/stream", g, handlers.Stream)
	h.Router.POST("/messages/stream/refresh", g, handlers.RefreshStream)
	return h
}

func msg(id, createdAt string) models.Message {
	return models.Message{ID: id, SenderID: "s1", ReceiverID: "m1", Content: "hi " + id, CreatedAt: createdAt}
}

func TestConversation_OldestFirst(t *testing.T) {
	h := newHarness(t, streaming.NewManager())
	h.SignIn("tok", testfixtures.Student("s1"))
	h.Backend.JSON(http.MethodGet, "/messages/conversation", http.StatusOK, []models.Message{
		msg("b", "2024-05-01T10:05:00Z"),
		msg("a", "2024-05-01T10:00:00Z"),
	})

	w := h.Do(http.MethodGet, "/messages/conversation?with=m1", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	page := testfixtures.Decode[struct {
		Data struct {
			With     string           `json:"with"`
			Messages []models.Message `json:"messages"`
		} `json:"data"`
	}](t, w)
	assert.Equal(t, "m1", page.Data.With)
	require.Len(t, page.Data.Messages, 2)
	assert.Equal(t, "a", page.Data.Messages[0].ID)
	assert.Equal(t, "with=m1", h.Backend.Requests()[0].Query)
}

func TestConversation_RequiresCounterpart(t *testing.T) {
	h := newHarness(t, streaming.NewManager())
	h.SignIn("tok", testfixtures.Student("s1"))

	w := h.Do(http.MethodGet, "/messages/conversation", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, h.Backend.Requests())
}

func TestSend(t *testing.T) {
	h := newHarness(t, streaming.NewManager())
	h.SignIn("tok", testfixtures.Student("s1"))
	h.Backend.JSON(http.MethodPost, "/messages/send", http.StatusCreated, msg("n1", "2024-05-01T11:00:00Z"))

	w := h.Do(http.MethodPost, "/messages/send", models.OutgoingMessage{ReceiverID: "m1", Content: "Hello"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"id":"n1"`)
	assert.Equal(t, "Bearer tok", h.Backend.Requests()[0].Authorization)

	w = h.Do(http.MethodPost, "/messages/send", models.OutgoingMessage{ReceiverID: "m1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 1, h.Backend.Count(http.MethodPost, "/messages/send"))
}

func TestSend_RequiresSession(t *testing.T) {
	h := newHarness(t, streaming.NewManager())

	w := h.Do(http.MethodPost, "/messages/send", models.OutgoingMessage{ReceiverID: "m1", Content: "Hello"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Empty(t, h.Backend.Requests())
}

type streamEvent struct {
	Type       string           `json:"type"`
	Data       []models.Message `json:"data"`
	Error      string           `json:"error"`
	Loading    bool             `json:"loading"`
	Refreshing bool             `json:"refreshing"`
}

// nextMessages reads events until one with the messages type satisfies match.
func nextMessages(t *testing.T, s *testfixtures.SSEStream, match func(streamEvent) bool) streamEvent {
	t.Helper()
	for {
		ev, ok := s.Next()
		require.True(t, ok, "stream ended early")
		if ev.Name != EventMessages {
			continue
		}
		var e streamEvent
		require.NoError(t, json.Unmarshal([]byte(ev.Data), &e))
		if match(e) {
			return e
		}
	}
}

type contactsPage struct {
	Data struct {
		Contacts []Contact `json:"contacts"`
	} `json:"data"`
}

func TestContacts(t *testing.T) {
	t.Run("student sees their mentor", func(t *testing.T) {
		h := newHarness(t, streaming.NewManager())
		h.SignIn("tok", testfixtures.Student("s1"))
		h.Backend.JSON(http.MethodGet, "/student/mentor", http.StatusOK, models.Mentor{ID: "m1", Name: "Ravi"})

		w := h.Do(http.MethodGet, "/messages", nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		page := testfixtures.Decode[contactsPage](t, w)
		assert.Equal(t, []Contact{{ID: "m1", Name: "Ravi", Role: models.RoleMentor}}, page.Data.Contacts)
	})

	t.Run("student without a mentor has no contacts", func(t *testing.T) {
		h := newHarness(t, streaming.NewManager())
		h.SignIn("tok", testfixtures.Student("s1"))
		h.Backend.JSON(http.MethodGet, "/student/mentor", http.StatusOK, nil)

		w := h.Do(http.MethodGet, "/messages", nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Empty(t, testfixtures.Decode[contactsPage](t, w).Data.Contacts)
	})

	t.Run("mentor sees assigned students", func(t *testing.T) {
		h := newHarness(t, streaming.NewManager())
		h.SignIn("tok", testfixtures.Mentor("m1"))
		h.Backend.JSON(http.MethodGet, "/mentor/assigned-students", http.StatusOK, []models.User{
			testfixtures.Student("s1"), testfixtures.Student("s2"),
		})

		w := h.Do(http.MethodGet, "/messages", nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		contacts := testfixtures.Decode[contactsPage](t, w).Data.Contacts
		require.Len(t, contacts, 2)
		assert.Equal(t, "s2", contacts[1].ID)
		assert.Equal(t, models.RoleStudent, contacts[1].Role)
	})

	t.Run("admin sees mentors", func(t *testing.T) {
		h := newHarness(t, streaming.NewManager())
		h.SignIn("tok", testfixtures.Admin("a1"))
		h.Backend.JSON(http.MethodGet, "/admin/mentors", http.StatusOK, []models.Mentor{{ID: "m1", Name: "Ravi"}})

		w := h.Do(http.MethodGet, "/messages", nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Len(t, testfixtures.Decode[contactsPage](t, w).Data.Contacts, 1)
	})
}

func TestStream_MergesPollsAndSurvivesErrors(t *testing.T) {
	streams := streaming.NewManager()
	h := newHarness(t, streams)
	profileID := h.SignIn("tok", testfixtures.Student("s1"))

	var calls atomic.Int32
	h.Backend.Handle(http.MethodGet, "/messages/conversation", func(w http.ResponseWriter, r *http.Request) {
		switch calls.Add(1) {
		case 1:
			testfixtures.WriteJSON(w, http.StatusOK, []models.Message{msg("a", "2024-05-01T10:00:00Z")})
		case 2:
			// The backend window moved on; "a" is no longer returned but must be kept.
			testfixtures.WriteJSON(w, http.StatusOK, []models.Message{msg("b", "2024-05-01T10:05:00Z")})
		default:
			testfixtures.WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": "Database error"})
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s := h.Stream(ctx, "/messages/stream?with=m1")
	require.Equal(t, http.StatusOK, s.Response.StatusCode)
	assert.Equal(t, "text/event-stream", s.Response.Header.Get("Content-Type"))

	var merged, sawError bool
	for !merged || !sawError {
		ev, ok := s.Next()
		require.True(t, ok, "stream ended early")
		var e streamEvent
		require.NoError(t, json.Unmarshal([]byte(ev.Data), &e))
		switch ev.Name {
		case EventMessages:
			if len(e.Data) == 2 {
				assert.Equal(t, "a", e.Data[0].ID)
				assert.Equal(t, "b", e.Data[1].ID)
				merged = true
			}
		case EventStreamError:
			if merged {
				assert.NotEmpty(t, e.Error)
				sawError = true
			}
		}
	}

	assert.Equal(t, 1, streams.StopProfile(profileID))
	for {
		if _, ok := s.Next(); !ok {
			break
		}
	}
	assert.Zero(t, streams.Active(profileID))

	polled := calls.Load()
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, polled, calls.Load(), "poller kept running after the stream closed")
}

func TestStream_RefreshAndSendReachOpenStream(t *testing.T) {
	streams := streaming.NewManager()
	h := newHarnessEvery(t, streams, time.Hour)
	h.SignIn("tok", testfixtures.Student("s1"))
	h.Backend.JSON(http.MethodGet, "/messages/conversation", http.StatusOK, []models.Message{msg("a", "2024-05-01T10:00:00Z")})
	h.Backend.JSON(http.MethodPost, "/messages/send", http.StatusCreated, msg("n1", "2024-05-01T11:00:00Z"))

	w := h.Do(http.MethodPost, "/messages/stream/refresh?with=m1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code, "nothing to refresh without an open stream")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s := h.Stream(ctx, "/messages/stream?with=m1")
	require.Equal(t, http.StatusOK, s.Response.StatusCode)

	nextMessages(t, s, func(e streamEvent) bool { return len(e.Data) == 1 && !e.Loading })

	w = h.Do(http.MethodPost, "/messages/send", models.OutgoingMessage{ReceiverID: "m1", Content: "Hello"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	e := nextMessages(t, s, func(e streamEvent) bool { return len(e.Data) == 2 })
	assert.Equal(t, "n1", e.Data[1].ID, "sent message shows up without waiting for a poll")

	w = h.Do(http.MethodPost, "/messages/stream/refresh?with=m1", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"refreshed":1}`, w.Body.String())
	assert.Equal(t, 2, h.Backend.Count(http.MethodGet, "/messages/conversation"))
	e = nextMessages(t, s, func(e streamEvent) bool { return !e.Refreshing })
	assert.Len(t, e.Data, 2, "refresh keeps the sent message")

	w = h.Do(http.MethodPost, "/messages/stream/refresh?with=m2", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
