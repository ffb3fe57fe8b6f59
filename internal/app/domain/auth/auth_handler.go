// Package auth serves sign-in, sign-up, sign-out and the session views.
package auth

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/FACorreiaa/go-mentorportal/internal/app/domain"
	"github.com/FACorreiaa/go-mentorportal/internal/app/middleware"
	"github.com/FACorreiaa/go-mentorportal/internal/app/models"
	"github.com/FACorreiaa/go-mentorportal/internal/app/streaming"
	"github.com/FACorreiaa/go-mentorportal/internal/pkg/session"
)

type AuthHandlers struct {
	*domain.BaseHandler
	streams *streaming.Manager
}

func NewAuthHandlers(logger *zap.Logger, streams *streaming.Manager) *AuthHandlers {
	return &AuthHandlers{BaseHandler: domain.NewBaseHandler(logger), streams: streams}
}

// SessionView reports the held session.
type SessionView struct {
	Authenticated  bool             `json:"authenticated"`
	User           *domain.UserView `json:"user,omitempty"`
	TokenExpiresAt *time.Time       `json:"tokenExpiresAt,omitempty"`
	Home           string           `json:"home"`
}

func (h *AuthHandlers) LoginHandler(c *gin.Context) {
	p, ok := h.Profile(c)
	if !ok {
		return
	}
	var creds models.Credentials
	if !h.Bind(c, &creds) {
		return
	}

	res, err := p.API.Login(c.Request.Context(), creds)
	if err != nil {
		h.Logger.Warn("Login rejected", zap.String("email", creds.Email), zap.Error(err))
		h.HandleError(c, err, "sign in")
		return
	}
	if res.User.Blocked() {
		h.Logger.Warn("Blocked user tried to sign in", zap.String("user_id", res.User.ID))
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Your account has been blocked"})
		return
	}

	h.startSession(c, p, res)
}

func (h *AuthHandlers) SignupHandler(c *gin.Context) {
	p, ok := h.Profile(c)
	if !ok {
		return
	}
	var form SignupForm
	if !h.Bind(c, &form) {
		return
	}
	req, err := form.Validate()
	if err != nil {
		h.HandleError(c, err, "sign up")
		return
	}

	res, err := p.API.Signup(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err, "sign up")
		return
	}
	h.startSession(c, p, res)
}

func (h *AuthHandlers) startSession(c *gin.Context, p *middleware.Profile, res models.AuthResponse) {
	if err := p.Auth.Login(c.Request.Context(), res.Token, res.User); err != nil {
		h.HandleError(c, err, "start session")
		return
	}
	h.Logger.Info("Successful login",
		zap.String("user_id", res.User.ID),
		zap.String("role", string(res.User.Role)),
		zap.String("profile_id", p.ID))
	h.Redirect(c, http.StatusOK, domain.HomeFor(res.User.Role), gin.H{"user": domain.NewUserView(res.User)})
}

// LogoutHandler ends the session and any open streams. The cache is left alone.
func (h *AuthHandlers) LogoutHandler(c *gin.Context) {
	p, ok := h.Profile(c)
	if !ok {
		return
	}
	if err := p.Auth.Logout(c.Request.Context()); err != nil {
		h.HandleError(c, err, "sign out")
		return
	}
	h.streams.StopProfile(p.ID)
	h.Redirect(c, http.StatusOK, "/login", nil)
}

// ResetHandler signs out and wipes the cache.
func (h *AuthHandlers) ResetHandler(c *gin.Context) {
	p, ok := h.Profile(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	if err := p.Auth.Logout(ctx); err != nil {
		h.HandleError(c, err, "reset session")
		return
	}
	if err := p.Cache.Clear(ctx); err != nil {
		h.HandleError(c, err, "clear cache")
		return
	}
	stopped := h.streams.StopProfile(p.ID)
	h.Logger.Info("Profile reset", zap.String("profile_id", p.ID), zap.Int("streams_stopped", stopped))
	h.Redirect(c, http.StatusOK, "/login", gin.H{"reset": true})
}

// MeHandler refreshes the held user from the backend.
func (h *AuthHandlers) MeHandler(c *gin.Context) {
	p, ok := h.Profile(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	user, err := p.API.Me(ctx)
	if err != nil {
		h.HandleError(c, err, "load account")
		return
	}
	if err := p.Auth.SetUser(ctx, user); err != nil {
		h.HandleError(c, err, "update session")
		return
	}
	if state, _, err := p.Auth.Revalidate(ctx); state != session.Valid {
		if err != nil {
			h.Logger.Error("Failed to revoke blocked session", zap.Error(err))
		}
		c.Header("Location", "/login")
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Your account has been blocked", "redirect": "/login"})
		return
	}
	c.JSON(http.StatusOK, domain.NewUserView(user))
}

func (h *AuthHandlers) SessionHandler(c *gin.Context) {
	p, ok := h.Profile(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, sessionView(p.Auth))
}

// LandingPage is public and the target of role redirects.
func (h *AuthHandlers) LandingPage(c *gin.Context) {
	p, ok := h.Profile(c)
	if !ok {
		return
	}
	h.RenderPage(c, "Mentor Portal", "Home", sessionView(p.Auth))
}

// LoginPage is public and the target of session redirects.
func (h *AuthHandlers) LoginPage(c *gin.Context) {
	p, ok := h.Profile(c)
	if !ok {
		return
	}
	data := gin.H{"login": "/auth/login", "signup": "/auth/signup", "minPasswordLength": MinPasswordLength}
	if p.Auth.IsAuthenticated() {
		if u, ok := p.Auth.User(); ok {
			data["home"] = domain.HomeFor(u.Role)
		}
	}
	h.RenderPage(c, "Sign in - Mentor Portal", "Sign in", data)
}

func sessionView(s *session.Store) SessionView {
	v := SessionView{Authenticated: s.IsAuthenticated(), Home: "/login"}
	if u, ok := s.User(); ok {
		v.User = domain.NewUserView(u)
		v.Home = domain.HomeFor(u.Role)
	}
	if exp, ok := s.TokenExpiry(); ok {
		v.TokenExpiresAt = &exp
	}
	return v
}
