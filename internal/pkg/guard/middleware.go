package guard

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/FACorreiaa/go-mentorportal/internal/app/models"
	"github.com/FACorreiaa/go-mentorportal/internal/app/observability/metrics"
	"github.com/FACorreiaa/go-mentorportal/internal/pkg/session"
)

// UserContextKey is where Require stores the admitted models.User.
const UserContextKey = "user"

// Config names the redirect targets.
type Config struct {
	LoginPath   string
	LandingPath string
	Logger      *zap.Logger
}

func DefaultConfig(logger *zap.Logger) Config {
	return Config{LoginPath: "/login", LandingPath: "/", Logger: logger}
}

// ProviderFunc extracts the session of the current request.
type ProviderFunc func(c *gin.Context) session.Provider

// Require guards the following handlers with Evaluate.
func Require(cfg Config, provider ProviderFunc, roles ...models.Role) gin.HandlerFunc {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.LoginPath == "" {
		cfg.LoginPath = "/login"
	}
	if cfg.LandingPath == "" {
		cfg.LandingPath = "/"
	}

	return func(c *gin.Context) {
		d := Evaluate(c.Request.Context(), provider(c), roles...)
		metrics.GuardDecision(c.Request.Context(), d.Outcome.String())

		switch d.Outcome {
		case Render:
			c.Set(UserContextKey, d.User)
			c.Next()
		case RedirectLogin:
			if d.Err != nil {
				cfg.Logger.Error("Failed to revoke blocked session", zap.Error(d.Err))
			}
			cfg.Logger.Debug("Guard redirect to login",
				zap.String("path", c.Request.URL.Path),
				zap.String("reason", string(d.Reason)))
			handleAuthRedirect(c, cfg.LoginPath, http.StatusUnauthorized, "Authentication required")
		case RedirectLanding:
			cfg.Logger.Debug("Guard redirect to landing",
				zap.String("path", c.Request.URL.Path),
				zap.String("role", string(d.User.Role)))
			handleAuthRedirect(c, cfg.LandingPath, http.StatusForbidden, "Not available for your role")
		}
	}
}

// UserFromContext returns the user admitted by Require.
func UserFromContext(c *gin.Context) (models.User, bool) {
	v, ok := c.Get(UserContextKey)
	if !ok {
		return models.User{}, false
	}
	u, ok := v.(models.User)
	return u, ok
}

// handleAuthRedirect redirects HTMX requests via HX-Redirect, answers JSON callers with a
// status and Location header, and sends everyone else a plain 302.
func handleAuthRedirect(c *gin.Context, location string, apiStatus int, message string) {
	switch {
	case c.GetHeader("HX-Request") == "true":
		c.Header("HX-Redirect", location)
		c.AbortWithStatus(http.StatusUnauthorized)
	case wantsJSON(c.Request):
		c.Header("Location", location)
		c.AbortWithStatusJSON(apiStatus, gin.H{"error": message, "redirect": location})
	default:
		c.Redirect(http.StatusFound, location)
		c.Abort()
	}
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}
