package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// startHTTPServer serves router until ctx is cancelled or the listener
// fails, then shuts down gracefully and runs the application cleanup.
func (app *application) startHTTPServer(ctx context.Context, router http.Handler) error {
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", app.config.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		app.logger.Info("starting server", slog.Int("port", app.config.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	var listenErr error
	select {
	case <-ctx.Done():
		app.logger.Info("shutting down server")
	case listenErr = <-serveErr:
		if listenErr != nil {
			app.logger.Error("server failed", slog.String("error", listenErr.Error()))
		}
	}

	timeout := time.Duration(app.config.Server.ShutdownTimeoutSeconds) * time.Second
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	shutdownErr := server.Shutdown(shutdownCtx)
	app.cleanup()

	if listenErr != nil {
		return listenErr
	}
	if shutdownErr != nil {
		app.logger.Error("server shutdown failed", slog.String("error", shutdownErr.Error()))
		return fmt.Errorf("server shutdown failed: %w", shutdownErr)
	}
	app.logger.Info("server shutdown completed")
	return nil
}
