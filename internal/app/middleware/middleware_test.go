package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-mentorportal/internal/app/models"
	"github.com/FACorreiaa/go-mentorportal/internal/pkg/apiclient"
	"github.com/FACorreiaa/go-mentorportal/internal/pkg/storage"
)

func newProfileRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	backend := storage.NewMemoryBackend(0)
	t.Cleanup(func() { _ = backend.Close() })

	r := gin.New()
	r.Use(sessions.Sessions("portal_profile", cookie.NewStore([]byte("test-secret"))))
	r.Use(ProfileMiddleware(ProfileConfig{
		Backend: backend,
		API:     apiclient.New("http://backend.invalid/api"),
	}))
	r.POST("/login", func(c *gin.Context) {
		p, _ := ProfileFromContext(c)
		err := p.Auth.Login(c.Request.Context(), "tok", models.User{ID: "u1", Role: models.RoleStudent, Status: models.StatusActive})
		require.NoError(t, err)
		c.String(http.StatusOK, p.ID)
	})
	r.GET("/whoami", func(c *gin.Context) {
		p, ok := ProfileFromContext(c)
		require.True(t, ok)
		u, _ := p.Auth.User()
		c.JSON(http.StatusOK, gin.H{"profile": p.ID, "user": u.ID, "authenticated": p.Auth.IsAuthenticated()})
	})
	return r
}

func do(r http.Handler, method, path string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestProfileMiddleware_SessionSurvivesAcrossRequests(t *testing.T) {
	r := newProfileRouter(t)

	w := do(r, http.MethodPost, "/login", nil)
	require.Equal(t, http.StatusOK, w.Code)
	profileID := w.Body.String()
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)

	w = do(r, http.MethodGet, "/whoami", cookies)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"profile":"`+profileID+`","user":"u1","authenticated":true}`, w.Body.String())
}

func TestProfileMiddleware_NewBrowserIsAnonymous(t *testing.T) {
	r := newProfileRouter(t)

	w := do(r, http.MethodPost, "/login", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(r, http.MethodGet, "/whoami", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"authenticated":false`)
}

func TestProfileMiddleware_LateUserUpdateDoesNotUndoLogout(t *testing.T) {
	r := newProfileRouter(t)
	entered := make(chan struct{})
	release := make(chan struct{})

	r.POST("/logout", func(c *gin.Context) {
		p, _ := ProfileFromContext(c)
		assert.NoError(t, p.Auth.Logout(c.Request.Context()))
		c.Status(http.StatusNoContent)
	})
	r.PUT("/rename", func(c *gin.Context) {
		p, _ := ProfileFromContext(c)
		close(entered)
		<-release
		err := p.Auth.SetUser(c.Request.Context(), models.User{ID: "u1", Name: "Renamed", Role: models.RoleStudent, Status: models.StatusActive})
		if errors.Is(err, models.ErrNoSession) {
			c.Status(http.StatusUnauthorized)
			return
		}
		c.Status(http.StatusOK)
	})

	w := do(r, http.MethodPost, "/login", nil)
	require.Equal(t, http.StatusOK, w.Code)
	cookies := w.Result().Cookies()

	renamed := make(chan *httptest.ResponseRecorder, 1)
	go func() { renamed <- do(r, http.MethodPut, "/rename", cookies) }()
	<-entered

	w = do(r, http.MethodPost, "/logout", cookies)
	require.Equal(t, http.StatusNoContent, w.Code)
	close(release)

	w = <-renamed
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(r, http.MethodGet, "/whoami", cookies)
	assert.Contains(t, w.Body.String(), `"authenticated":false`)
}

func TestProvider_WithoutProfile(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Nil(t, Provider(c))
}

func TestCORSMiddleware_Preflight(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORSMiddleware([]string{"https://portal.example.com/"}))
	r.OPTIONS("/x", func(c *gin.Context) { c.Status(http.StatusTeapot) })

	preflight := func(origin string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodOptions, "/x", nil)
		req.Header.Set("Origin", origin)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	w := preflight("https://portal.example.com")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://portal.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
	assert.Contains(t, w.Header().Values("Vary"), "Origin")

	w = preflight("https://evil.example.com")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))
}

func TestCORSMiddleware_NeverWildcardsCredentials(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORSMiddleware(nil))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "https://portal.example.com")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEqual(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))
}

func TestRequestIDMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestIDMiddleware(), SecurityMiddleware())
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := do(r, http.MethodGet, "/x", nil)
	assert.Len(t, w.Header().Get(RequestIDHeader), 36)
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(RequestIDHeader, "abc")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc", w.Header().Get(RequestIDHeader))
}
