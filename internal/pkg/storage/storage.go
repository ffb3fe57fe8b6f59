// Package storage provides the key-value scopes that stand in for a browser's localStorage and
// sessionStorage. Every browser profile gets a durable local scope and a session scope; both live
// in a shared Backend under distinct key prefixes.
package storage

import (
	"context"
	"strings"

	"github.com/pkg/errors"
)

// ErrClosed is returned by backends used after Close.
var ErrClosed = errors.New("storage: backend closed")

// Backend is a flat string key-value store shared by all profiles.
type Backend interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
	// Keys returns every key starting with prefix, in no particular order.
	Keys(ctx context.Context, prefix string) ([]string, error)
	Close() error
}

// Storage is one profile's view of a Backend, mirroring the Web Storage API.
type Storage interface {
	GetItem(ctx context.Context, key string) (string, bool, error)
	SetItem(ctx context.Context, key, value string) error
	RemoveItem(ctx context.Context, key string) error
	// Clear removes every item of the scope, including items written by other components.
	Clear(ctx context.Context) error
}

const (
	localPrefix   = "local:"
	sessionPrefix = "session:"
)

// Scoped confines a Backend to the keys under a prefix.
type Scoped struct {
	backend Backend
	prefix  string
}

var _ Storage = (*Scoped)(nil)

// Local returns the durable scope of a browser profile.
func Local(b Backend, profileID string) *Scoped {
	return &Scoped{backend: b, prefix: localPrefix + profileID + ":"}
}

// Session returns the tab-scoped storage of a browser profile.
func Session(b Backend, profileID string) *Scoped {
	return &Scoped{backend: b, prefix: sessionPrefix + profileID + ":"}
}

// IsSessionKey reports whether a raw backend key belongs to a session scope.
func IsSessionKey(key string) bool {
	return strings.HasPrefix(key, sessionPrefix)
}

func (s *Scoped) Prefix() string { return s.prefix }

func (s *Scoped) GetItem(ctx context.Context, key string) (string, bool, error) {
	v, ok, err := s.backend.Get(ctx, s.prefix+key)
	if err != nil {
		return "", false, errors.Wrapf(err, "storage: get %q", key)
	}
	return v, ok, nil
}

func (s *Scoped) SetItem(ctx context.Context, key, value string) error {
	if err := s.backend.Set(ctx, s.prefix+key, value); err != nil {
		return errors.Wrapf(err, "storage: set %q", key)
	}
	return nil
}

func (s *Scoped) RemoveItem(ctx context.Context, key string) error {
	if err := s.backend.Delete(ctx, s.prefix+key); err != nil {
		return errors.Wrapf(err, "storage: remove %q", key)
	}
	return nil
}

func (s *Scoped) Clear(ctx context.Context) error {
	keys, err := s.backend.Keys(ctx, s.prefix)
	if err != nil {
		return errors.Wrap(err, "storage: list scope")
	}
	if len(keys) == 0 {
		return nil
	}
	if err := s.backend.Delete(ctx, keys...); err != nil {
		return errors.Wrap(err, "storage: clear scope")
	}
	return nil
}

// Keys lists the scope's item keys with the prefix stripped.
func (s *Scoped) Keys(ctx context.Context) ([]string, error) {
	raw, err := s.backend.Keys(ctx, s.prefix)
	if err != nil {
		return nil, errors.Wrap(err, "storage: list scope")
	}
	keys := make([]string, 0, len(raw))
	for _, k := range raw {
		keys = append(keys, strings.TrimPrefix(k, s.prefix))
	}
	return keys, nil
}
