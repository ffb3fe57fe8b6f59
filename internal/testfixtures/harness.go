package testfixtures

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-mentorportal/internal/app/middleware"
	"github.com/FACorreiaa/go-mentorportal/internal/app/models"
	"github.com/FACorreiaa/go-mentorportal/internal/pkg/apiclient"
	"github.com/FACorreiaa/go-mentorportal/internal/pkg/storage"
)

const signInPath = "/_test/sign-in"

// Harness is a portal router wired like production (cookie session, browser profile) in front
// of a scripted Backend. It acts as a single browser: cookies persist between calls.
type Harness struct {
	t       testing.TB
	Router  *gin.Engine
	Storage *storage.MemoryBackend
	Backend *Backend
	Clock   *Clock

	cookies map[string]*http.Cookie
	server  *httptest.Server
}

func NewHarness(t testing.TB) *Harness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	h := &Harness{
		t:       t,
		Router:  gin.New(),
		Storage: storage.NewMemoryBackend(0),
		Backend: NewBackend(t),
		Clock:   NewClock(ReferenceTime()),
		cookies: make(map[string]*http.Cookie),
	}
	t.Cleanup(func() { _ = h.Storage.Close() })

	h.Router.Use(sessions.Sessions("portal_profile", cookie.NewStore([]byte("harness-secret"))))
	h.Router.Use(middleware.ProfileMiddleware(middleware.ProfileConfig{
		Backend: h.Storage,
		API:     apiclient.New(h.Backend.URL()),
		Now:     h.Clock.Now,
	}))
	h.Router.POST(signInPath, func(c *gin.Context) {
		var body struct {
			Token string      `json:"token"`
			User  models.User `json:"user"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.Status(http.StatusBadRequest)
			return
		}
		p, _ := middleware.ProfileFromContext(c)
		if err := p.Auth.Login(c.Request.Context(), body.Token, body.User); err != nil {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.String(http.StatusOK, p.ID)
	})
	return h
}

// SignIn stores a session for user in this browser's profile and returns the profile id.
func (h *Harness) SignIn(token string, user models.User) string {
	h.t.Helper()
	w := h.Do(http.MethodPost, signInPath, map[string]any{"token": token, "user": user})
	require.Equal(h.t, http.StatusOK, w.Code)
	return w.Body.String()
}

// Do sends a request with this browser's cookies. A non-nil body is sent as JSON; headers are
// key/value pairs.
func (h *Harness) Do(method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	h.t.Helper()

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		require.NoError(h.t, err)
		reader = bytes.NewReader(buf)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	for _, ck := range h.cookies {
		req.AddCookie(ck)
	}

	w := httptest.NewRecorder()
	h.Router.ServeHTTP(w, req)
	for _, ck := range w.Result().Cookies() {
		h.cookies[ck.Name] = ck
	}
	return w
}

// Decode unmarshals a JSON response body.
func Decode[T any](t testing.TB, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func Student(id string) models.User {
	return models.User{ID: id, Name: "Student " + id, Email: id + "@example.com", Role: models.RoleStudent, Status: models.StatusActive}
}

func Mentor(id string) models.User {
	return models.User{ID: id, Name: "Mentor " + id, Email: id + "@example.com", Role: models.RoleMentor, Status: models.StatusActive}
}

func Admin(id string) models.User {
	return models.User{ID: id, Name: "Admin " + id, Email: id + "@example.com", Role: models.RoleAdmin, Status: models.StatusActive}
}
