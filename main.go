package main

import (
	"context"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"event-scheduler/core"
	"event-scheduler/pkg/resources"
	"event-scheduler/pkg/servers"
)

func main() {
	// 1. Config
	cfg, err := resources.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("unable to load configuration")
	}

	// 2. Logger (zerolog -> stdout + OTel log bridge)
	ctx := resources.CreateLogger(context.Background(), cfg)
	startupLogger := log.Ctx(ctx).With().Str("stage", "startup").Str("component", "main").Logger()
	shutdownLogger := log.Ctx(ctx).With().Str("stage", "shut down").Str("component", "main").Logger()

	startupLogger.Info().Msg("application starting up")
	defer shutdownLogger.Info().Msg("application stopped")

	// 3. Telemetry (traces/metrics/logs)
	stopTelemetryFn, err := resources.CreateTelemetry(ctx, cfg)
	if err != nil {
		shutdownLogger.Fatal().Err(err).Msg("unable to setup otel telemetry")
	}
	defer shutdown(ctx, "telemetry", stopTelemetryFn)

	// 4. Core
	window, err := core.ParseDayWindow(cfg.DayStart, cfg.DayEnd)
	if err != nil {
		shutdownLogger.Fatal().Err(err).Msg("invalid day window")
	}

	scheduler := core.NewScheduler(
		core.WithIDGenerator(core.NewRandomIDGenerator(cfg.IDMax)),
		core.WithDayWindow(window),
	)
	handlers := core.NewHandlers(scheduler)

	// 5. Daemons/servers setup
	gin.SetMode(gin.ReleaseMode)

	restHandler := gin.New()
	restHandler.Use(gin.Recovery())
	restHandler.Use(resources.LoggerMiddleware())
	restHandler.Use(resources.TracerMiddleware(cfg.Name))
	restHandler.Use(resources.MeterMiddleware(cfg.Name))

	restHandler.POST("/events", handlers.PostEvents)
	restHandler.GET("/events", handlers.ListEvents)
	restHandler.GET("/events/:id", handlers.GetEvents)
	restHandler.PUT("/events/:id", handlers.PutEvents)
	restHandler.DELETE("/events/:id", handlers.DeleteEvents)
	restHandler.GET("/schedule/:date", handlers.GetDay)
	restHandler.GET("/schedule/:date/overlaps", handlers.GetOverlaps)
	restHandler.GET("/schedule/:date/free", handlers.GetFreeSlots)
	restHandler.GET("/calendar.ics", handlers.GetCalendar)

	debugHandler := http.NewServeMux()
	debugHandler.HandleFunc("/debug/pprof/", pprof.Index)
	debugHandler.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	debugHandler.HandleFunc("/debug/pprof/profile", pprof.Profile)
	debugHandler.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	debugHandler.HandleFunc("/debug/pprof/trace", pprof.Trace)

	// 6. Daemons/servers lifecycle
	errChan := make(chan error, 16)

	baseName, baseServer := servers.BuildBaseServer(func(ctx context.Context) {
		released := scheduler.Close()
		log.Ctx(ctx).Info().Str("stage", "shut down").Int("released", released).Msg("schedule released")
	})
	servers.Start(ctx, baseName, baseServer, errChan)
	defer stop(ctx, baseName, baseServer)

	debugName, debugServer := servers.BuildHttpServer("debug-server", servers.NewServer(cfg.HTTPHost, cfg.DebugPort, debugHandler))
	servers.Start(ctx, debugName, debugServer, errChan)
	defer stop(ctx, debugName, debugServer)

	restName, restServer := servers.BuildHttpServer("rest-server", servers.NewServer(cfg.HTTPHost, cfg.HTTPPort, restHandler))
	servers.Start(ctx, restName, restServer, errChan)
	defer stop(ctx, restName, restServer)

	startupLogger.Info().Msg("application running")

	// 7. Wait for shutdown signal
	notifyCtx, cancelNotifyFn := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer cancelNotifyFn()

	select {
	case <-notifyCtx.Done():
		startupLogger.Info().Msg("application shutdown requested")
	case runErr := <-errChan:
		shutdownLogger.Error().Err(runErr).Msg("runtime error")
	}
}

func stop(ctx context.Context, name string, server servers.Server) {
	stopCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	err := server.Stop(stopCtx)
	if err != nil {
		log.Ctx(ctx).Error().Str("stage", "shut down").Str("component", name).Err(err).Msg("failed to stop")
	}
}

func shutdown(ctx context.Context, name string, stopFn resources.StopFn) {
	stopCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	err := stopFn(stopCtx)
	if err != nil {
		log.Ctx(ctx).Error().Str("stage", "shut down").Str("component", name).Err(err).Msg("failed to stop")
	}
}
