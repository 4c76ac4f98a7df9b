package servers

import (
	"context"

	"github.com/qmdx00/lifecycle"
	"github.com/rs/zerolog/log"
)

// Closer releases a resource owned by the application on shutdown.
type Closer func(ctx context.Context)

// baseServer holds the process open until stopped, then runs the closers in
// registration order.
type baseServer struct {
	name         string
	closeChannel chan struct{}
	closers      []Closer
}

func BuildBaseServer(closers ...Closer) (string, Server) {
	return "base-server", NewBaseServer(closers...)
}

func NewBaseServer(closers ...Closer) lifecycle.Server {
	return &baseServer{
		name:         "base-server",
		closeChannel: make(chan struct{}),
		closers:      closers,
	}
}

func (server *baseServer) Run(ctx context.Context) error {
	log.Ctx(ctx).Info().Str("stage", "startup").Str("component", server.name).Msg("starting up")

	select {
	case <-server.closeChannel:
	case <-ctx.Done():
	}

	return nil
}

func (server *baseServer) Stop(ctx context.Context) error {
	log.Ctx(ctx).Info().Str("stage", "shut down").Str("component", server.name).Msg("stopping")
	defer log.Ctx(ctx).Info().Str("stage", "shut down").Str("component", server.name).Msg("stopped")

	for _, closer := range server.closers {
		closer(ctx)
	}

	close(server.closeChannel)

	return nil
}
