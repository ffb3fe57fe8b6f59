package middleware

import (
	"net/http"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/FACorreiaa/go-mentorportal/internal/pkg/apiclient"
	"github.com/FACorreiaa/go-mentorportal/internal/pkg/cache"
	"github.com/FACorreiaa/go-mentorportal/internal/pkg/session"
	"github.com/FACorreiaa/go-mentorportal/internal/pkg/storage"
)

const (
	ProfileContextKey = "profile"
	profileIDKey      = "profile_id"
)

// Profile is everything the portal keeps for one browser: its two storage scopes, the auth
// session restored from the local scope, the TTL cache over the session scope, and a backend
// client that sends the session's token.
type Profile struct {
	ID      string
	Local   *storage.Scoped
	Session *storage.Scoped
	Auth    *session.Store
	Cache   *cache.TTLCache
	API     *apiclient.Client
}

// Provider adapts Profile lookup to the route guard.
func Provider(c *gin.Context) session.Provider {
	p, ok := ProfileFromContext(c)
	if !ok {
		return nil
	}
	return p.Auth
}

// ProfileConfig wires ProfileMiddleware.
type ProfileConfig struct {
	Backend  storage.Backend
	API      *apiclient.Client
	CacheTTL time.Duration
	Logger   *zap.Logger
	// Sessions shares one auth Store per profile. A private registry is used when nil.
	Sessions *session.Registry
	// Now overrides the cache clock.
	Now func() time.Time
}

// ProfileMiddleware identifies the browser through the cookie session and attaches its
// Profile. Requires sessions.Sessions earlier in the chain.
func ProfileMiddleware(cfg ProfileConfig) gin.HandlerFunc {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	sessionsReg := cfg.Sessions
	if sessionsReg == nil {
		sessionsReg = session.NewRegistry(session.DefaultIdle, logger)
	}

	return func(c *gin.Context) {
		id := profileID(c, logger)
		ctx := c.Request.Context()

		local := storage.Local(cfg.Backend, id)
		auth, err := sessionsReg.Get(ctx, id, session.NewStoragePersister(local))
		if err != nil {
			logger.Error("Failed to restore session", zap.String("profile_id", id), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "Session storage unavailable"})
			return
		}

		scope := storage.Session(cfg.Backend, id)
		opts := []cache.Option{cache.WithTTL(cfg.CacheTTL), cache.WithLogger(logger)}
		if cfg.Now != nil {
			opts = append(opts, cache.WithClock(cfg.Now))
		}

		c.Set(ProfileContextKey, &Profile{
			ID:      id,
			Local:   local,
			Session: scope,
			Auth:    auth,
			Cache:   cache.New(scope, opts...),
			API:     cfg.API.As(auth),
		})
		c.Next()
	}
}

// ProfileFromContext returns the Profile attached by ProfileMiddleware.
func ProfileFromContext(c *gin.Context) (*Profile, bool) {
	v, ok := c.Get(ProfileContextKey)
	if !ok {
		return nil, false
	}
	p, ok := v.(*Profile)
	return p, ok
}

func profileID(c *gin.Context, logger *zap.Logger) string {
	sess := sessions.Default(c)
	if id, ok := sess.Get(profileIDKey).(string); ok {
		if _, err := uuid.Parse(id); err == nil {
			return id
		}
	}

	id := uuid.NewString()
	sess.Set(profileIDKey, id)
	if err := sess.Save(); err != nil {
		logger.Warn("Failed to save profile cookie", zap.Error(err))
	}
	return id
}
