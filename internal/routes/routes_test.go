package routes

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/FACorreiaa/go-mentorportal/internal/app/domain"
	"github.com/FACorreiaa/go-mentorportal/internal/app/models"
	"github.com/FACorreiaa/go-mentorportal/internal/pkg/config"
	"github.com/FACorreiaa/go-mentorportal/internal/testfixtures"
)

func newPortal(t *testing.T) *testfixtures.Harness {
	t.Helper()
	h := testfixtures.NewHarness(t)
	Setup(h.Router, Dependencies{Config: &config.Config{
		DirectoryPageSize: 12,
		Polling: config.PollingConfig{
			ChatInterval:         time.Second,
			NotificationInterval: time.Second,
		},
	}}, zap.NewNop())
	return h
}

func TestActiveStudentJourney(t *testing.T) {
	h := newPortal(t)
	h.Backend.JSON(http.MethodPost, "/auth/login", http.StatusOK, models.AuthResponse{
		Token: "student-token",
		User:  testfixtures.Student("s1"),
	})
	h.Backend.JSON(http.MethodGet, "/student/mentor", http.StatusOK, models.Mentor{ID: "m1", Name: "Mentor m1"})
	h.Backend.JSON(http.MethodGet, "/announcements/feed", http.StatusOK, []models.Announcement{{ID: "a1", Title: "Welcome"}})
	h.Backend.JSON(http.MethodGet, "/announcements/my-announcements", http.StatusOK, []models.Announcement{})

	w := h.Do(http.MethodPost, "/auth/login", models.Credentials{Email: "s1@example.com", Password: "secret1"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "/student/dashboard", testfixtures.Decode[map[string]any](t, w)["redirect"])

	w = h.Do(http.MethodGet, "/student/dashboard", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"Welcome"`)
	for _, r := range h.Backend.Requests()[1:] {
		assert.Equal(t, "Bearer student-token", r.Authorization, r.Path)
	}

	w = h.Do(http.MethodGet, "/messages", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"id":"m1"`)

	before := len(h.Backend.Requests())
	w = h.Do(http.MethodGet, "/admin/dashboard", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
	assert.Len(t, h.Backend.Requests(), before, "admin view must not reach the backend")

	w = h.Do(http.MethodGet, "/mentor/dashboard", nil, "Accept", "text/html")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))

	w = h.Do(http.MethodPost, "/auth/logout", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = h.Do(http.MethodGet, "/student/dashboard", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
}

func TestAnonymousVisitor(t *testing.T) {
	h := newPortal(t)

	assert.Equal(t, http.StatusOK, h.Do(http.MethodGet, "/", nil).Code)
	assert.Equal(t, http.StatusOK, h.Do(http.MethodGet, "/login", nil).Code)

	for _, path := range []string{"/profile", "/student/dashboard", "/mentor/dashboard", "/admin/dashboard", "/notifications", "/messages/stream?with=m1"} {
		w := h.Do(http.MethodGet, path, nil, "Accept", "text/html")
		assert.Equal(t, http.StatusFound, w.Code, path)
		assert.Equal(t, "/login", w.Header().Get("Location"), path)
	}
	assert.Empty(t, h.Backend.Requests())
}

func TestBlockedSessionIsEnded(t *testing.T) {
	h := newPortal(t)
	blocked := testfixtures.Mentor("m1")
	blocked.Status = models.StatusBlocked
	h.SignIn("tok", blocked)

	w := h.Do(http.MethodGet, "/mentor/dashboard", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	view := testfixtures.Decode[map[string]any](t, h.Do(http.MethodGet, "/auth/session", nil))
	assert.Equal(t, false, view["authenticated"])
}

func TestNavLinksAreRoutes(t *testing.T) {
	h := newPortal(t)
	get := map[string]bool{}
	for _, r := range h.Router.Routes() {
		if r.Method == http.MethodGet {
			get[r.Path] = true
		}
	}

	users := []*models.User{nil}
	for _, u := range []models.User{testfixtures.Student("s1"), testfixtures.Mentor("m1"), testfixtures.Admin("a1")} {
		users = append(users, &u)
	}
	for _, u := range users {
		for _, item := range domain.NavFor(u) {
			assert.True(t, get[item.URL], "nav link %s has no GET route", item.URL)
		}
	}
}
