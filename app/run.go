package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"
)

// Run starts the schedule engine and the HTTP server and blocks until ctx is
// cancelled or the server fails. Shutdown stops accepting requests first, then
// stops the engine and waits for in-flight jobs within the shutdown timeout.
func (c *Container) Run(ctx context.Context) error {
	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", c.Config.Server.Port))
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	return c.Serve(ctx, listener)
}

// Serve is Run on an existing listener.
func (c *Container) Serve(ctx context.Context, listener net.Listener) error {
	if err := c.Engine.Start(ctx); err != nil {
		_ = listener.Close()
		return fmt.Errorf("start scheduler: %w", err)
	}

	server := &http.Server{
		Handler:           c.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		c.Logger.Info().
			Str("addr", listener.Addr().String()).
			Str("scheduler", c.Config.Scheduler.Mode.String()).
			Str("notifier", c.Config.Notifier.String()).
			Msg("cronfire started")
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	var runErr error
	select {
	case <-ctx.Done():
	case err := <-serveErr:
		runErr = err
	}

	c.Logger.Info().Msg("cronfire shutting down gracefully")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		runErr = errors.Join(runErr, fmt.Errorf("shutdown http: %w", err))
	}
	if err := c.Engine.Stop(shutdownCtx); err != nil {
		runErr = errors.Join(runErr, fmt.Errorf("stop scheduler: %w", err))
	}
	return runErr
}
