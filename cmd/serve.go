package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/dig"

	"github.com/davidbz/troubleshooter/internal/config"
	"github.com/davidbz/troubleshooter/internal/httpserver"
	"github.com/davidbz/troubleshooter/internal/httpserver/middleware"
	"github.com/davidbz/troubleshooter/internal/observability"
)

type serveDeps struct {
	dig.In

	Server  *httpserver.Server
	Config  *config.ServerConfig
	Limiter middleware.Limiter
}

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the troubleshooting HTTP service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			container, err := buildContainer()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := container.Invoke(func(deps serveDeps) error {
				return serve(ctx, deps)
			}); err != nil {
				return fmt.Errorf("failed to run server: %w", dig.RootCause(err))
			}
			return nil
		},
	}
}

// serve runs the server until ctx is cancelled, then drains in-flight requests.
func serve(ctx context.Context, deps serveDeps) error {
	if closer, ok := deps.Limiter.(io.Closer); ok {
		defer func() { _ = closer.Close() }()
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- deps.Server.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger := observability.FromContext(ctx)
	logger.Info("shutdown signal received")

	timeout := time.Duration(deps.Config.ShutdownTimeout) * time.Second
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	if err := deps.Server.Shutdown(shutdownCtx); err != nil {
		return err
	}

	if err := <-errCh; err != nil {
		return err
	}

	logger.Info("server stopped")
	return nil
}
