package mentor

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-mentorportal/internal/app/middleware"
	"github.com/FACorreiaa/go-mentorportal/internal/app/models"
	"github.com/FACorreiaa/go-mentorportal/internal/pkg/guard"
	"github.com/FACorreiaa/go-mentorportal/internal/testfixtures"
)

func newHarness(t *testing.T) *testfixtures.Harness {
	t.Helper()
	h := testfixtures.NewHarness(t)
	handlers := NewMentorHandlers(nil)
	g := guard.Require(guard.DefaultConfig(nil), middleware.Provider, models.RoleMentor)
	h.Router.GET("/mentor/dashboard", g, handlers.Dashboard)
	h.Router.POST("/mentor/announcements/approve", g, handlers.ApproveAnnouncement)
	h.Router.POST("/mentor/announcements/reject", g, handlers.RejectAnnouncement)
	h.Router.POST("/mentor/students/block", g, handlers.BlockStudent)
	h.Router.POST("/mentor/broadcast", g, handlers.Broadcast)
	return h
}

func TestDashboard(t *testing.T) {
	h := newHarness(t)
	h.SignIn("tok", testfixtures.Mentor("m1"))
	h.Backend.JSON(http.MethodGet, "/mentor/pending-announcements", http.StatusOK, []models.Announcement{{ID: "a1"}, {ID: "a2"}})
	h.Backend.JSON(http.MethodGet, "/mentor/assigned-students", http.StatusOK, []models.User{testfixtures.Student("s1")})

	w := h.Do(http.MethodGet, "/mentor/dashboard", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	page := testfixtures.Decode[struct {
		Data Dashboard `json:"data"`
	}](t, w)
	assert.Len(t, page.Data.PendingAnnouncements, 2)
	assert.Len(t, page.Data.Students, 1)
}

func TestModeration(t *testing.T) {
	h := newHarness(t)
	h.SignIn("tok", testfixtures.Mentor("m1"))
	for _, path := range []string{"/mentor/approve-announcement", "/mentor/reject-announcement", "/mentor/block-student", "/mentor/broadcast-to-students"} {
		h.Backend.JSON(http.MethodPost, path, http.StatusOK, map[string]string{"message": "ok"})
	}

	w := h.Do(http.MethodPost, "/mentor/announcements/approve", models.ModerationDecision{AnnouncementID: "a1"})
	assert.Equal(t, http.StatusOK, w.Code)
	w = h.Do(http.MethodPost, "/mentor/announcements/reject", models.ModerationDecision{AnnouncementID: "a2", Reason: "off topic"})
	assert.Equal(t, http.StatusOK, w.Code)
	w = h.Do(http.MethodPost, "/mentor/students/block", models.UserAction{UserID: "s1"})
	assert.Equal(t, http.StatusOK, w.Code)
	w = h.Do(http.MethodPost, "/mentor/broadcast", models.NewAnnouncement{Title: "Exam", Content: "Tomorrow"})
	assert.Equal(t, http.StatusOK, w.Code)

	reqs := h.Backend.Requests()
	require.Len(t, reqs, 4)
	var d models.ModerationDecision
	require.NoError(t, json.Unmarshal(reqs[1].Body, &d))
	assert.Equal(t, "off topic", d.Reason)
	for _, r := range reqs {
		assert.Equal(t, "Bearer tok", r.Authorization)
	}
}

func TestModeration_MissingTarget(t *testing.T) {
	h := newHarness(t)
	h.SignIn("tok", testfixtures.Mentor("m1"))

	w := h.Do(http.MethodPost, "/mentor/students/block", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, h.Backend.Requests())
}

func TestStudentCannotModerate(t *testing.T) {
	h := newHarness(t)
	h.SignIn("tok", testfixtures.Student("s1"))

	w := h.Do(http.MethodPost, "/mentor/announcements/approve", models.ModerationDecision{AnnouncementID: "a1"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Empty(t, h.Backend.Requests())
}
