package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/FACorreiaa/go-mentorportal/internal/app/streaming"
	database "github.com/FACorreiaa/go-mentorportal/internal/db"
	"github.com/FACorreiaa/go-mentorportal/internal/pkg/config"
	"github.com/FACorreiaa/go-mentorportal/internal/pkg/poller"
	"github.com/FACorreiaa/go-mentorportal/internal/pkg/session"
	"github.com/FACorreiaa/go-mentorportal/internal/pkg/storage"
)

// Server holds the dependencies for the HTTP server
type Server struct {
	cfg      *config.Config
	logger   *zap.Logger
	dbPool   *pgxpool.Pool
	storage  storage.Backend
	streams  *streaming.Manager
	sessions *session.Registry
	sweeper  *poller.Task
	router   http.Handler
}

// New opens the storage backend named in cfg. For postgres it connects and migrates first.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Server, error) {
	s := &Server{
		cfg:      cfg,
		logger:   logger,
		streams:  streaming.NewManager(),
		sessions: session.NewRegistry(session.DefaultIdle, logger),
	}

	if err := s.setupStorage(ctx); err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to setup storage: %w", err)
	}
	return s, nil
}

func (s *Server) setupStorage(ctx context.Context) error {
	var querier storage.PgxQuerier
	if s.cfg.Storage.Backend == config.BackendPostgres {
		s.logger.Info("Setting up database connection and migrations")
		pool, err := database.Setup(ctx, s.cfg.Storage.Postgres, s.logger)
		if err != nil {
			return err
		}
		s.dbPool = pool
		querier = pool
	}

	backend, err := storage.Open(ctx, s.cfg.Storage, querier, s.logger)
	if err != nil {
		return err
	}
	s.storage = backend

	if pg, ok := backend.(*storage.PostgresBackend); ok {
		s.sweeper = poller.NewTask("storage-sweep", s.cfg.Storage.SweepInterval, func(ctx context.Context) error {
			n, err := pg.Sweep(ctx)
			if err != nil {
				return err
			}
			if n > 0 {
				s.logger.Info("Swept expired storage rows", zap.Int64("rows", n))
			}
			return nil
		}, s.logger)
	}
	return nil
}

// StartBackground starts the periodic jobs of the storage backend, if it has any.
func (s *Server) StartBackground(ctx context.Context) {
	if s.sweeper != nil {
		s.sweeper.Start(ctx)
	}
}

// HTTPServer creates and configures the HTTP server. There is no write timeout because the
// SSE streams stay open for as long as the browser is connected.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:              ":" + s.cfg.ServerPort,
		Handler:           s.router,
		IdleTimeout:       time.Minute,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
	}
}

func (s *Server) SetRouter(router http.Handler) {
	s.router = router
}

func (s *Server) Storage() storage.Backend { return s.storage }

func (s *Server) Streams() *streaming.Manager { return s.streams }

func (s *Server) GetLogger() *zap.Logger { return s.logger }

func (s *Server) GetConfig() *config.Config { return s.cfg }

// Close stops background jobs and releases the storage backend and database pool.
func (s *Server) Close() {
	if s.sweeper != nil {
		s.sweeper.Stop()
	}
	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			s.logger.Warn("Failed to close storage backend", zap.Error(err))
		}
	}
	if s.dbPool != nil {
		s.dbPool.Close()
	}
}
