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
	"github.com/jonboulle/clockwork"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/reckoning/go/internal/authgate"
	"github.com/mcdev12/reckoning/go/internal/autosync"
	"github.com/mcdev12/reckoning/go/internal/localstore"
	"github.com/mcdev12/reckoning/go/internal/notify"
	"github.com/mcdev12/reckoning/go/internal/progressapi"
)

func main() {
	// load .env
	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg("could not load .env file")
	}

	cfg, err := loadConfig(getEnv("AUTOSYNC_CONFIG", "autosync.yaml"))
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	// configure zerolog console output and level
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	local, err := localstore.Open(cfg.LocalPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.LocalPath).Msg("open local store")
	}
	defer local.Close()

	clock := clockwork.NewRealClock()
	gate := authgate.NewTokenGate(clock)
	if cfg.Token != "" {
		if err := gate.SetToken(cfg.Token); err != nil {
			log.Fatal().Err(err).Msg("invalid token")
		}
	} else {
		log.Warn().Msg("no token configured, syncing stays idle until sign-in")
	}

	reg := prometheus.NewRegistry()
	orchestrator := autosync.New(cfg.Sync, autosync.Deps{
		Local:   local,
		Remote:  progressapi.NewClient(http.DefaultClient, cfg.APIURL, gate),
		Auth:    gate,
		Clock:   clock,
		Metrics: autosync.NewPrometheusMetrics(reg),
	})

	if err := orchestrator.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("start sync")
	}
	defer orchestrator.Stop()

	if cfg.NATSURL != "" {
		startConsumer(ctx, cfg.NATSURL, gate, orchestrator)
	}

	mux := http.NewServeMux()
	mux.Handle("/health", autosync.NewHealthChecker(orchestrator, clock, 5*cfg.Sync.Interval))
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	server := &http.Server{Addr: cfg.HealthAddr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		log.Info().Str("addr", cfg.HealthAddr).Msg("serving health and metrics")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("health server exited")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutdown signal received")

	// one last push of anything gameplay wrote locally
	finalCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if res, err := orchestrator.Sync(finalCtx); err == nil {
		log.Info().Str("outcome", string(res.Outcome)).Msg("final sync")
	}
	if err := server.Shutdown(finalCtx); err != nil {
		log.Error().Err(err).Msg("health server shutdown")
	}
}

// startConsumer triggers a sync whenever another device changes this identity's record
func startConsumer(ctx context.Context, url string, gate *authgate.TokenGate, orchestrator *autosync.Orchestrator) {
	identity, ok := gate.CurrentIdentity()
	if !ok {
		log.Warn().Msg("no identity, skipping change notifications")
		return
	}

	jsCfg := notify.DefaultJetStreamConfig()
	jsCfg.URL = url
	jsCfg.ConnectionName = "reckoning-device-" + identity.String()
	nc, err := notify.Connect(jsCfg)
	if err != nil {
		log.Error().Err(err).Msg("change notifications disabled")
		return
	}
	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		log.Error().Err(err).Msg("change notifications disabled")
		return
	}

	consumer := notify.NewConsumer(js, jsCfg, notify.DefaultConsumerConfig(), identity, orchestrator)
	go func() {
		defer nc.Close()
		if err := consumer.Start(ctx); err != nil {
			log.Error().Err(err).Msg("change consumer exited")
		}
	}()
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
