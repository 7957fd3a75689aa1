package httpserver //nolint:testpackage // Shares helpers with handler tests

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/davidbz/troubleshooter/internal/config"
	"github.com/davidbz/troubleshooter/internal/domain"
	"github.com/davidbz/troubleshooter/internal/mocks"
	"github.com/davidbz/troubleshooter/internal/render"
)

func TestServer_StartShutdown(t *testing.T) {
	renderers, err := render.NewDefaultRegistry()
	require.NoError(t, err)

	service := domain.NewTroubleshootService(mocks.NewMockLLMClient(t), renderers, nil, domain.ServiceConfig{})
	server := NewServer(
		&config.ServerConfig{Port: 0, ReadTimeout: 1, WriteTimeout: 1},
		NewHandler(service, domain.FormatJSON),
		nil,
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	require.NoError(t, server.Shutdown(ctx))

	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop after shutdown")
	}
}

func TestServer_ShutdownBeforeStart(t *testing.T) {
	server := NewServer(&config.ServerConfig{}, nil, nil)

	require.NoError(t, server.Shutdown(context.Background()))
	require.NoError(t, server.Start())
}
