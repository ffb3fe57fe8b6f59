package session

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/FACorreiaa/go-mentorportal/internal/app/models"
	"github.com/FACorreiaa/go-mentorportal/internal/pkg/storage"
)

// StorageKey is the local-scope key the session is persisted under.
const StorageKey = "auth-storage"

// ErrCorruptSnapshot marks a persisted session that cannot be decoded.
var ErrCorruptSnapshot = errors.New("session: corrupt persisted snapshot")

// Snapshot is the persisted form of a session.
type Snapshot struct {
	Token           string       `json:"token,omitempty"`
	User            *models.User `json:"user,omitempty"`
	IsAuthenticated bool         `json:"isAuthenticated"`
}

// Persister writes session snapshots somewhere that survives a page reload.
type Persister interface {
	Load(ctx context.Context) (*Snapshot, error)
	Save(ctx context.Context, snap Snapshot) error
	Clear(ctx context.Context) error
}

// StoragePersister keeps the snapshot as JSON in a storage scope.
type StoragePersister struct {
	store storage.Storage
	key   string
}

var _ Persister = (*StoragePersister)(nil)

func NewStoragePersister(store storage.Storage) *StoragePersister {
	return &StoragePersister{store: store, key: StorageKey}
}

// Load returns (nil, nil) when nothing is persisted.
func (p *StoragePersister) Load(ctx context.Context) (*Snapshot, error) {
	raw, ok, err := p.store.GetItem(ctx, p.key)
	if err != nil || !ok {
		return nil, err
	}
	var snap Snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		return nil, errors.WithMessage(ErrCorruptSnapshot, err.Error())
	}
	return &snap, nil
}

func (p *StoragePersister) Save(ctx context.Context, snap Snapshot) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return errors.Wrap(err, "session: encode snapshot")
	}
	return p.store.SetItem(ctx, p.key, string(raw))
}

func (p *StoragePersister) Clear(ctx context.Context) error {
	return p.store.RemoveItem(ctx, p.key)
}
