package servers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBaseServer(t *testing.T) {
	t.Parallel()

	var order []string

	name, server := BuildBaseServer(
		func(context.Context) { order = append(order, "scheduler") },
		func(context.Context) { order = append(order, "tracer") },
	)
	assert.Equal(t, "base-server", name)

	done := make(chan error, 1)
	go func() { done <- server.Run(context.Background()) }()

	require.NoError(t, server.Stop(context.Background()))

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after Stop")
	}

	assert.Equal(t, []string{"scheduler", "tracer"}, order)
}

func TestBaseServer_RunReturnsOnCancel(t *testing.T) {
	t.Parallel()

	_, server := BuildBaseServer()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, server.Run(ctx))
}

func TestHttpServer_RunFailure(t *testing.T) {
	t.Parallel()

	name, server := BuildHttpServer("rest-server", NewServer("localhost", "not-a-port", http.NotFoundHandler()))
	assert.Equal(t, "rest-server", name)

	errChan := make(chan error, 1)
	Start(context.Background(), name, server, errChan)

	select {
	case err := <-errChan:
		require.Error(t, err)
		assert.Contains(t, err.Error(), "server rest-server failed to start")
	case <-time.After(5 * time.Second):
		t.Fatal("expected a start failure")
	}
}

func TestHttpServer_StopBeforeRun(t *testing.T) {
	t.Parallel()

	_, server := BuildHttpServer("debug-server", NewServer("localhost", "0", http.NotFoundHandler()))

	require.NoError(t, server.Stop(context.Background()))
}
