package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/specialistvlad/graphua/internal/ctxlog"
)

const shutdownTimeout = 5 * time.Second

// startHealthCheckServer runs the health check on its own port, for probes
// that must not reach the main listener.
func (a *App) startHealthCheckServer() {
	logger := ctxlog.FromContext(a.ctx)
	if a.config.HealthcheckPort <= 0 {
		logger.Debug("Health check server not started: disabled")
		return
	}

	r := chi.NewRouter()
	r.Get("/health", a.healthHandler)
	addr := fmt.Sprintf(":%d", a.config.HealthcheckPort)
	srv := &http.Server{Addr: addr, Handler: r}

	a.mu.Lock()
	a.healthServer = srv
	a.mu.Unlock()

	go func() {
		logger.Info("Health check server starting", "address", fmt.Sprintf("http://localhost%s/health", addr))
		// ListenAndServe returns ErrServerClosed on graceful shutdown.
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Health check server failed unexpectedly", "error", err)
		}
	}()
}

// shutdownServer stops srv, waiting at most shutdownTimeout for requests.
func (a *App) shutdownServer(name string, srv *http.Server) error {
	logger := ctxlog.FromContext(a.ctx)
	if srv == nil {
		logger.Debug("Server was not running.", "server", name)
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	logger.Info("Shutting down server...", "server", name)
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown failed", "server", name, "error", err)
		return err
	}
	logger.Debug("Server shut down gracefully.", "server", name)
	return nil
}
