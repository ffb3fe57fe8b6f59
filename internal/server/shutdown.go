package server

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/FACorreiaa/go-mentorportal/internal/app/streaming"
)

// GracefulShutdown waits for SIGINT or SIGTERM, ends every open event stream and then drains
// srv. extra servers (pprof) are shut down alongside it.
func GracefulShutdown(srv *http.Server, streams *streaming.Manager, logger *zap.Logger, done chan bool, extra ...*http.Server) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	logger.Info("Shutting down gracefully, press Ctrl+C again to force")

	stop() // Allow Ctrl+C to force shutdown

	if streams != nil {
		logger.Info("Closing event streams", zap.Int("streams", streams.StopAll()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}
	for _, s := range extra {
		if s == nil {
			continue
		}
		if err := s.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Auxiliary server forced to shutdown", zap.String("addr", s.Addr), zap.Error(err))
		}
	}

	logger.Info("Server exiting")

	done <- true
}
