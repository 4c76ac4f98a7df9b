package servers

import (
	"context"
	"net/http"

	"github.com/qmdx00/lifecycle"
	"github.com/rs/zerolog/log"
)

var (
	_ Server = (*httpServer)(nil)
	_ Server = (*baseServer)(nil)
)

type Server interface {
	lifecycle.Server
}

var (
	_ BuildHttpServerFn = BuildHttpServer
	_ BuildBaseServerFn = BuildBaseServer
)

type BuildHttpServerFn func(name string, server *http.Server) (string, Server)

type BuildBaseServerFn func(closers ...Closer) (string, Server)

// Start runs server in its own goroutine and reports a failed run on errChan.
func Start(ctx context.Context, name string, server Server, errChan chan<- error) {
	go func() {
		err := server.Run(ctx)
		if err != nil {
			log.Ctx(ctx).Error().Str("component", name).Err(err).Msg("server stopped unexpectedly")
			errChan <- err
		}
	}()
}
