package resources

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// CreateLogger configures the global zerolog logger and returns ctx carrying
// it. Local environments get the console writer; every environment also
// forwards records to the OTel log bridge.
func CreateLogger(ctx context.Context, cfg *Config) context.Context {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}

	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339Nano

	var out io.Writer = os.Stdout
	if cfg.Env == "local" {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}

	log.Logger = zerolog.New(zerolog.MultiLevelWriter(out, NewOTelWriter(cfg.Name))).
		With().
		Timestamp().
		Str("service", cfg.Name).
		Str("version", cfg.Version).
		Str("env", cfg.Env).
		Logger()

	return log.Logger.WithContext(ctx)
}
