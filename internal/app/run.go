package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/specialistvlad/graphua/internal/ctxlog"
)

// Run serves until ctx is cancelled, then shuts everything down in reverse
// order of startup.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	a.bus.Start(ctx)
	a.pool.Start(ctx)

	ln, err := net.Listen("tcp", a.config.Listen)
	if err != nil {
		a.pool.Stop()
		a.bus.Stop()
		return fmt.Errorf("failed to listen on %s: %w", a.config.Listen, err)
	}
	srv := &http.Server{Handler: a.Router()}
	a.mu.Lock()
	a.addr = ln.Addr().String()
	a.httpServer = srv
	a.mu.Unlock()

	a.startHealthCheckServer()

	serveErr := make(chan error, 1)
	go func() {
		a.logger.Info("Server starting", "address", ln.Addr().String(), "namespace", a.config.Namespace, "workers", a.config.Workers)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		a.logger.Info("Shutdown requested.")
	case err := <-serveErr:
		runErr = fmt.Errorf("server failed: %w", err)
	}

	a.mu.Lock()
	health := a.healthServer
	a.mu.Unlock()
	errs := []error{
		runErr,
		a.shutdownServer("main", srv),
		a.shutdownServer("healthcheck", health),
	}
	a.transport.Close()
	a.pool.Stop()
	a.bus.Stop()

	a.logger.Debug("App.Run method finished.")
	return errors.Join(errs...)
}
