package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/agentkit/agentctl/app"
	"github.com/agentkit/agentctl/routes"
)

// runServe exposes the tools over HTTP and blocks until the context is
// cancelled or the server fails.
func runServe(ctx context.Context, deps *app.Dependencies, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	port := fs.Int("port", deps.Config.Server.Port, "port to listen on")
	if err := fs.Parse(args); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      routes.SetupRoutes(deps),
		ReadTimeout:  deps.Config.Server.ReadTimeout,
		WriteTimeout: deps.Config.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		deps.Logger.Info("gateway listening",
			zap.String("addr", srv.Addr),
			zap.Bool("auth_enabled", deps.AuthMiddleware != nil))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	deps.Logger.Info("shutting down gateway")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), deps.Config.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}
