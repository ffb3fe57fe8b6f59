// Package session holds the authenticated identity of one browser profile: the backend token
// and the user it belongs to. Every mutation is written through a Persister so a reload
// restores the session without signing in again.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/FACorreiaa/go-mentorportal/internal/app/models"
)

// State is the outcome of Revalidate.
type State int

const (
	Invalid State = iota
	Valid
)

func (s State) String() string {
	if s == Valid {
		return "valid"
	}
	return "invalid"
}

// Reason explains an Invalid state.
type Reason string

const (
	ReasonNone      Reason = ""
	ReasonNoSession Reason = "no-session"
	ReasonBlocked   Reason = "blocked"
)

// Provider is what the route guard and views need from a session.
type Provider interface {
	Revalidate(ctx context.Context) (State, Reason, error)
	User() (models.User, bool)
	IsAuthenticated() bool
}

// Store is one profile's session. It is safe for concurrent use.
type Store struct {
	mu        sync.RWMutex
	persister Persister
	logger    *zap.Logger

	token         string
	user          *models.User
	authenticated bool
}

var _ Provider = (*Store)(nil)

// NewStore returns an empty (unauthenticated) store.
func NewStore(p Persister, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{persister: p, logger: logger}
}

// Restore loads the last persisted session. Corrupt or inconsistent snapshots are discarded
// and the store starts out unauthenticated; storage failures are returned.
func Restore(ctx context.Context, p Persister, logger *zap.Logger) (*Store, error) {
	s := NewStore(p, logger)
	if err := s.Sync(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Sync replaces the in-memory session with the persisted one, picking up logins and logouts
// made through another Store over the same storage.
func (s *Store) Sync(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap, err := s.loadLocked(ctx)
	if err != nil {
		return err
	}
	s.applyLocked(snap)
	return nil
}

func (s *Store) loadLocked(ctx context.Context) (*Snapshot, error) {
	snap, err := s.persister.Load(ctx)
	if errors.Is(err, ErrCorruptSnapshot) {
		s.logger.Warn("Discarding unreadable persisted session", zap.Error(err))
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if snap == nil || snap.Token == "" || snap.User == nil {
		return nil, nil
	}
	return snap, nil
}

func (s *Store) applyLocked(snap *Snapshot) {
	if snap == nil {
		s.token, s.user, s.authenticated = "", nil, false
		return
	}
	u := *snap.User
	s.token = snap.Token
	s.user = &u
	s.authenticated = true
}

// Login replaces whatever session was held. The token must not be empty.
func (s *Store) Login(ctx context.Context, token string, user models.User) error {
	if token == "" {
		return models.ErrEmptyToken
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = token
	s.user = &user
	s.authenticated = true
	s.logger.Info("Session started", zap.String("user_id", user.ID), zap.String("role", string(user.Role)))
	return s.persistLocked(ctx)
}

// Logout drops the token and user. It does not touch the TTL cache.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.user != nil {
		s.logger.Info("Session ended", zap.String("user_id", s.user.ID))
	}
	s.token = ""
	s.user = nil
	s.authenticated = false
	return s.persister.Clear(ctx)
}

// SetUser replaces the user while keeping the token, e.g. after a profile edit. The write only
// happens while the persisted session still carries the same token; a logout or re-login that
// landed in the meantime wins and the store falls back to the persisted state.
func (s *Store) SetUser(ctx context.Context, user models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.authenticated {
		return models.ErrNoSession
	}
	snap, err := s.loadLocked(ctx)
	if err != nil {
		return err
	}
	if snap == nil || snap.Token != s.token {
		s.logger.Warn("Dropping user update for a session that has ended")
		s.applyLocked(snap)
		return models.ErrNoSession
	}
	s.user = &user
	return s.persistLocked(ctx)
}

// Token returns the held token, or "" when signed out. It satisfies apiclient.TokenSource.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Store) User() (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return models.User{}, false
	}
	return *s.user, true
}

func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.authenticated
}

// Revalidate decides whether the held session may still be used. A blocked user is logged
// out as part of the transition to Invalid.
func (s *Store) Revalidate(ctx context.Context) (State, Reason, error) {
	s.mu.RLock()
	authenticated, user := s.authenticated, s.user
	s.mu.RUnlock()

	if !authenticated || user == nil {
		return Invalid, ReasonNoSession, nil
	}
	if user.Blocked() {
		s.logger.Warn("Blocked user session revoked", zap.String("user_id", user.ID))
		if err := s.Logout(ctx); err != nil {
			return Invalid, ReasonBlocked, err
		}
		return Invalid, ReasonBlocked, nil
	}
	return Valid, ReasonNone, nil
}

// TokenExpiry reports the exp claim when the opaque token happens to be a JWT. The signature
// is not checked; the value is informational only.
func (s *Store) TokenExpiry() (time.Time, bool) {
	tok := s.Token()
	if tok == "" {
		return time.Time{}, false
	}
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tok, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

func (s *Store) persistLocked(ctx context.Context) error {
	snap := Snapshot{Token: s.token, IsAuthenticated: s.authenticated}
	if s.user != nil {
		u := *s.user
		snap.User = &u
	}
	return s.persister.Save(ctx, snap)
}
