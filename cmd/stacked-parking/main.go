package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stacked-parking/internal/config"
	"stacked-parking/internal/logging"
	"stacked-parking/internal/parking"
	"stacked-parking/internal/server"
)

func main() {
	cfg := config.Load()
	cfg.BindFlags(flag.CommandLine)
	flag.Parse()

	logging.Init(cfg.LogLevel, cfg.IsDevelopment())
	log := logging.Logger()

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	telemetryProvider, err := parking.NewTelemetryProvider(ctx, parking.TelemetryConfig{
		ServiceName:  cfg.OTelServiceName,
		OTLPEndpoint: cfg.OTelEndpoint,
		Enabled:      cfg.TelemetryEnabled,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}

	session := parking.NewSession(telemetryProvider)
	if _, err := session.Init(ctx, cfg.Lanes, cfg.LaneCapacity); err != nil {
		log.Fatal().Err(err).Msg("failed to create parking lot")
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	switch cfg.Mode {
	case "cli":
		runCLI(ctx, cancel, cfg, session, telemetryProvider, sigChan)
	case "server":
		runServer(ctx, cancel, cfg, session, sigChan)
	case "both":
		runBoth(ctx, cancel, cfg, session, telemetryProvider, sigChan)
	}

	shutdownTelemetry(telemetryProvider)
}

func runCLI(ctx context.Context, cancel context.CancelFunc, cfg *config.Config, session *parking.Session, telemetryProvider *parking.TelemetryProvider, sigChan chan os.Signal) {
	go func() {
		<-sigChan
		logging.Logger().Info().Msg("shutting down")
		cancel()
	}()

	shell, err := parking.NewShell(session, telemetryProvider, cfg.HistoryFile)
	if err != nil {
		logging.Logger().Error().Err(err).Msg("failed to start shell")
		return
	}
	shell.Run(ctx)
}

func runServer(ctx context.Context, cancel context.CancelFunc, cfg *config.Config, session *parking.Session, sigChan chan os.Signal) {
	srv := server.NewServer(cfg.Port, session, cfg.OTelServiceName)

	go func() {
		<-sigChan
		logging.Logger().Info().Msg("received shutdown signal")
		shutdownServer(srv)
		cancel()
	}()

	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logging.Logger().Error().Err(err).Msg("server error")
	}
}

func runBoth(ctx context.Context, cancel context.CancelFunc, cfg *config.Config, session *parking.Session, telemetryProvider *parking.TelemetryProvider, sigChan chan os.Signal) {
	srv := server.NewServer(cfg.Port, session, cfg.OTelServiceName)

	serverDone := make(chan error, 1)
	go func() {
		serverDone <- srv.Start()
	}()

	cliDone := make(chan bool, 1)
	go func() {
		defer func() { cliDone <- true }()
		shell, err := parking.NewShell(session, telemetryProvider, cfg.HistoryFile)
		if err != nil {
			logging.Logger().Error().Err(err).Msg("failed to start shell")
			return
		}
		shell.Run(ctx)
	}()

	go func() {
		<-sigChan
		logging.Logger().Info().Msg("received shutdown signal")
		cancel()
	}()

	select {
	case err := <-serverDone:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Logger().Error().Err(err).Msg("server error")
		}
	case <-cliDone:
		logging.Logger().Info().Msg("CLI exited")
	case <-ctx.Done():
		logging.Logger().Info().Msg("context cancelled")
	}

	shutdownServer(srv)
}

func shutdownServer(srv *server.Server) {
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Logger().Error().Err(err).Msg("server shutdown error")
	}
}

func shutdownTelemetry(telemetryProvider *parking.TelemetryProvider) {
	logging.Logger().Info().Msg("shutting down telemetry")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := telemetryProvider.Shutdown(shutdownCtx); err != nil {
		logging.Logger().Error().Err(err).Msg("error shutting down telemetry")
	}
}
