package storage

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/FACorreiaa/go-mentorportal/internal/pkg/config"
)

// Open builds the backend named by cfg.Backend. pool is only used by the postgres backend and
// must already be migrated.
func Open(ctx context.Context, cfg config.StorageConfig, pool PgxQuerier, logger *zap.Logger) (Backend, error) {
	switch cfg.Backend {
	case config.BackendMemory, "":
		logger.Info("Using in-memory storage", zap.Duration("session_scope_idle", cfg.SessionScopeIdle))
		return NewMemoryBackend(cfg.SessionScopeIdle), nil
	case config.BackendRedis:
		b, err := NewRedisBackend(ctx, RedisOptions{
			Addr:        cfg.Redis.Addr,
			Password:    cfg.Redis.Password,
			DB:          cfg.Redis.DB,
			SessionIdle: cfg.SessionScopeIdle,
		})
		if err != nil {
			return nil, err
		}
		logger.Info("Using redis storage", zap.String("addr", cfg.Redis.Addr), zap.Int("db", cfg.Redis.DB))
		return b, nil
	case config.BackendPostgres:
		if pool == nil {
			return nil, errors.New("storage: postgres backend needs a connection pool")
		}
		logger.Info("Using postgres storage", zap.String("host", cfg.Postgres.Host), zap.String("database", cfg.Postgres.DB))
		return NewPostgresBackend(pool, cfg.SessionScopeIdle), nil
	}
	return nil, errors.Errorf("storage: unknown backend %q", cfg.Backend)
}
