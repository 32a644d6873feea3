package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/reckoning/go/internal/dbconfig"
	"github.com/mcdev12/reckoning/go/internal/remotestore"
)

func main() {
	// load .env
	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg("could not load .env file")
	}

	cfg := loadServerConfig()

	// configure zerolog console output and level
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})
	zerolog.SetGlobalLevel(cfg.LogLevel)

	if cfg.JWTSecret == "" {
		log.Fatal().Msg("JWT_SECRET environment variable is required")
	}

	// signal‐aware context
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbCfg := dbconfig.NewConfigFromEnv()
	pool, err := setupDatabase(ctx, dbCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to setup database")
	}
	defer pool.Close()

	watcherCfg := remotestore.DefaultWatcherConfig()
	watcherCfg.DatabaseURL = dbCfg.DSN()
	watcherCfg.PingInterval = getEnvAsDuration("LISTENER_PING_INTERVAL", watcherCfg.PingInterval)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	services, err := setupServices(ctx, pool, remotestore.NewWatcher(watcherCfg), cfg, reg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to setup services")
	}

	// optional cross-device change relay
	var nc *nats.Conn
	if cfg.NATSURL != "" {
		conn, relay, err := setupRelay(ctx, cfg.NATSURL, services.Store)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to setup change relay")
		}
		nc = conn
		defer nc.Close()

		go func() {
			if err := relay.Run(ctx); err != nil {
				log.Error().Err(err).Msg("change relay exited")
			}
		}()
	}

	server := setupServer(services, pool, nc, cfg, reg)

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", server.Addr).Msg("starting progress server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// wait for shutdown or error
	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	case err := <-errCh:
		log.Error().Err(err).Msg("server exited unexpectedly")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	log.Info().Msg("graceful shutdown complete")
}
