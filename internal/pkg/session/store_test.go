package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-mentorportal/internal/app/models"
	"github.com/FACorreiaa/go-mentorportal/internal/pkg/storage"
)

func student(status models.Status) models.User {
	return models.User{ID: "u1", Name: "Asha", Email: "asha@example.com", Role: models.RoleStudent, Status: status, EmailVerified: true}
}

func newLocal(t *testing.T) *storage.Scoped {
	t.Helper()
	b := storage.NewMemoryBackend(0)
	t.Cleanup(func() { _ = b.Close() })
	return storage.Local(b, "profile-1")
}

func TestLoginLogout(t *testing.T) {
	ctx := context.Background()
	s := NewStore(NewStoragePersister(newLocal(t)), nil)

	assert.False(t, s.IsAuthenticated())

	require.NoError(t, s.Login(ctx, "tok-1", student(models.StatusActive)))
	assert.True(t, s.IsAuthenticated())
	assert.Equal(t, "tok-1", s.Token())

	require.NoError(t, s.Login(ctx, "tok-2", models.User{ID: "u2", Role: models.RoleMentor}))
	u, ok := s.User()
	require.True(t, ok)
	assert.Equal(t, "u2", u.ID, "login overwrites the previous session")
	assert.Equal(t, "tok-2", s.Token())

	require.NoError(t, s.Logout(ctx))
	assert.False(t, s.IsAuthenticated())
	assert.Empty(t, s.Token())
	_, ok = s.User()
	assert.False(t, ok)
}

func TestLoginRejectsEmptyToken(t *testing.T) {
	s := NewStore(NewStoragePersister(newLocal(t)), nil)
	err := s.Login(context.Background(), "", student(models.StatusActive))
	assert.ErrorIs(t, err, models.ErrEmptyToken)
	assert.False(t, s.IsAuthenticated())
}

func TestSetUserKeepsToken(t *testing.T) {
	ctx := context.Background()
	s := NewStore(NewStoragePersister(newLocal(t)), nil)

	assert.ErrorIs(t, s.SetUser(ctx, student(models.StatusActive)), models.ErrNoSession)

	require.NoError(t, s.Login(ctx, "tok-1", student(models.StatusActive)))
	updated := student(models.StatusActive)
	updated.Name = "Asha K"
	require.NoError(t, s.SetUser(ctx, updated))

	assert.Equal(t, "tok-1", s.Token())
	u, _ := s.User()
	assert.Equal(t, "Asha K", u.Name)
}

func TestPersistenceSurvivesReload(t *testing.T) {
	ctx := context.Background()
	local := newLocal(t)

	s := NewStore(NewStoragePersister(local), nil)
	require.NoError(t, s.Login(ctx, "tok-1", student(models.StatusActive)))

	reloaded, err := Restore(ctx, NewStoragePersister(local), nil)
	require.NoError(t, err)
	assert.True(t, reloaded.IsAuthenticated())
	assert.Equal(t, "tok-1", reloaded.Token())

	require.NoError(t, reloaded.Logout(ctx))
	again, err := Restore(ctx, NewStoragePersister(local), nil)
	require.NoError(t, err)
	assert.False(t, again.IsAuthenticated())
}

func TestRestoreDiscardsCorruptSnapshot(t *testing.T) {
	ctx := context.Background()
	local := newLocal(t)
	require.NoError(t, local.SetItem(ctx, StorageKey, "{broken"))

	s, err := Restore(ctx, NewStoragePersister(local), nil)
	require.NoError(t, err)
	assert.False(t, s.IsAuthenticated())
}

func TestSetUserAfterLogoutElsewhere(t *testing.T) {
	ctx := context.Background()
	local := newLocal(t)

	a := NewStore(NewStoragePersister(local), nil)
	require.NoError(t, a.Login(ctx, "tok-1", student(models.StatusActive)))

	b, err := Restore(ctx, NewStoragePersister(local), nil)
	require.NoError(t, err)
	require.True(t, b.IsAuthenticated())

	require.NoError(t, a.Logout(ctx))

	renamed := student(models.StatusActive)
	renamed.Name = "Late"
	assert.ErrorIs(t, b.SetUser(ctx, renamed), models.ErrNoSession)
	assert.False(t, b.IsAuthenticated())
	assert.Empty(t, b.Token())

	fresh, err := Restore(ctx, NewStoragePersister(local), nil)
	require.NoError(t, err)
	assert.False(t, fresh.IsAuthenticated(), "a late update must not bring the session back")
}

func TestSetUserAfterReloginElsewhere(t *testing.T) {
	ctx := context.Background()
	local := newLocal(t)

	a := NewStore(NewStoragePersister(local), nil)
	require.NoError(t, a.Login(ctx, "tok-1", student(models.StatusActive)))
	b, err := Restore(ctx, NewStoragePersister(local), nil)
	require.NoError(t, err)

	require.NoError(t, a.Login(ctx, "tok-2", models.User{ID: "u2", Role: models.RoleMentor}))

	assert.ErrorIs(t, b.SetUser(ctx, student(models.StatusActive)), models.ErrNoSession)
	assert.Equal(t, "tok-2", b.Token(), "the store adopts the newer session")
	u, _ := b.User()
	assert.Equal(t, "u2", u.ID)
}

func TestSync(t *testing.T) {
	ctx := context.Background()
	local := newLocal(t)

	a := NewStore(NewStoragePersister(local), nil)
	b := NewStore(NewStoragePersister(local), nil)
	require.NoError(t, a.Login(ctx, "tok-1", student(models.StatusActive)))

	require.NoError(t, b.Sync(ctx))
	assert.Equal(t, "tok-1", b.Token())

	require.NoError(t, a.Logout(ctx))
	require.NoError(t, b.Sync(ctx))
	assert.False(t, b.IsAuthenticated())
}

type mockPersister struct{ mock.Mock }

func (m *mockPersister) Load(ctx context.Context) (*Snapshot, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Snapshot), args.Error(1)
}

func (m *mockPersister) Save(ctx context.Context, snap Snapshot) error {
	return m.Called(ctx, snap).Error(0)
}

func (m *mockPersister) Clear(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func TestRestoreReturnsStorageErrors(t *testing.T) {
	ctx := context.Background()
	p := new(mockPersister)
	p.On("Load", ctx).Return(nil, errors.New("redis down")).Once()

	_, err := Restore(ctx, p, nil)
	assert.Error(t, err)
	p.AssertExpectations(t)
}

func TestEveryMutationIsPersisted(t *testing.T) {
	ctx := context.Background()
	p := new(mockPersister)
	user := student(models.StatusActive)

	p.On("Save", ctx, Snapshot{Token: "tok", User: &user, IsAuthenticated: true}).Return(nil).Once()
	p.On("Save", ctx, mock.MatchedBy(func(s Snapshot) bool { return s.Token == "tok" && s.User.Name == "New" })).Return(nil).Once()
	p.On("Clear", ctx).Return(nil).Once()

	p.On("Load", ctx).Return(&Snapshot{Token: "tok", User: &user, IsAuthenticated: true}, nil).Once()

	s := NewStore(p, nil)
	require.NoError(t, s.Login(ctx, "tok", user))
	renamed := user
	renamed.Name = "New"
	require.NoError(t, s.SetUser(ctx, renamed))
	require.NoError(t, s.Logout(ctx))

	p.AssertExpectations(t)
}

func TestRevalidate(t *testing.T) {
	ctx := context.Background()

	t.Run("no session", func(t *testing.T) {
		s := NewStore(NewStoragePersister(newLocal(t)), nil)
		state, reason, err := s.Revalidate(ctx)
		require.NoError(t, err)
		assert.Equal(t, Invalid, state)
		assert.Equal(t, ReasonNoSession, reason)
	})

	t.Run("active", func(t *testing.T) {
		s := NewStore(NewStoragePersister(newLocal(t)), nil)
		require.NoError(t, s.Login(ctx, "tok", student(models.StatusActive)))
		state, _, err := s.Revalidate(ctx)
		require.NoError(t, err)
		assert.Equal(t, Valid, state)
	})

	t.Run("pending accounts are still valid sessions", func(t *testing.T) {
		s := NewStore(NewStoragePersister(newLocal(t)), nil)
		require.NoError(t, s.Login(ctx, "tok", student(models.StatusPending)))
		state, _, err := s.Revalidate(ctx)
		require.NoError(t, err)
		assert.Equal(t, Valid, state)
	})

	t.Run("blocked user is logged out", func(t *testing.T) {
		local := newLocal(t)
		s := NewStore(NewStoragePersister(local), nil)
		require.NoError(t, s.Login(ctx, "tok", student(models.StatusBlocked)))

		state, reason, err := s.Revalidate(ctx)
		require.NoError(t, err)
		assert.Equal(t, Invalid, state)
		assert.Equal(t, ReasonBlocked, reason)
		assert.False(t, s.IsAuthenticated())

		_, persisted, err := local.GetItem(ctx, StorageKey)
		require.NoError(t, err)
		assert.False(t, persisted, "blocked session is removed from storage too")
	})
}

func TestTokenExpiry(t *testing.T) {
	ctx := context.Background()
	s := NewStore(NewStoragePersister(newLocal(t)), nil)

	_, ok := s.TokenExpiry()
	assert.False(t, ok)

	require.NoError(t, s.Login(ctx, "opaque-token", student(models.StatusActive)))
	_, ok = s.TokenExpiry()
	assert.False(t, ok, "non-JWT tokens have no expiry")

	exp := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(exp),
	}).SignedString([]byte("backend-secret"))
	require.NoError(t, err)

	require.NoError(t, s.Login(ctx, signed, student(models.StatusActive)))
	got, ok := s.TokenExpiry()
	require.True(t, ok)
	assert.True(t, exp.Equal(got))
}
