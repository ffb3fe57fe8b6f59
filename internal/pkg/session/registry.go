package session

import (
	"context"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// DefaultIdle is how long an unused profile's Store stays in a Registry.
const DefaultIdle = 30 * time.Minute

// Registry hands out one Store per profile so overlapping requests from the same browser
// share a lock and see each other's logins and logouts.
type Registry struct {
	mu     sync.Mutex
	stores *gocache.Cache
	logger *zap.Logger
}

// NewRegistry evicts stores that have not been requested for idle.
func NewRegistry(idle time.Duration, logger *zap.Logger) *Registry {
	if idle <= 0 {
		idle = DefaultIdle
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{stores: gocache.New(idle, idle/2), logger: logger}
}

// Get returns the profile's Store, creating it over p on first use, and syncs it with storage.
func (r *Registry) Get(ctx context.Context, profileID string, p Persister) (*Store, error) {
	r.mu.Lock()
	var s *Store
	if v, ok := r.stores.Get(profileID); ok {
		s = v.(*Store)
	} else {
		s = NewStore(p, r.logger)
	}
	r.stores.SetDefault(profileID, s)
	r.mu.Unlock()

	if err := s.Sync(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Len reports how many profiles currently hold a Store.
func (r *Registry) Len() int {
	return r.stores.ItemCount()
}
