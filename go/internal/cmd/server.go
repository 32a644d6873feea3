package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"connectrpc.com/connect"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mcdev12/reckoning/go/internal/progressapi"
)

func setupServer(services *Services, pool *pgxpool.Pool, nc *nats.Conn, cfg ServerConfig, gatherer prometheus.Gatherer) *http.Server {
	mux := http.NewServeMux()

	// Setup CORS middleware
	c := cors.New(cors.Options{
		AllowedMethods: []string{
			http.MethodHead,
			http.MethodGet,
			http.MethodPost,
		},
		AllowedOrigins: cfg.CORSOrigins,
		AllowedHeaders: []string{"*"},
	})

	registerServices(mux, services)
	setupHealthCheck(mux, pool, nc)
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	handler := c.Handler(mux)

	// Setup HTTP/2 server
	return &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           h2c.NewHandler(handler, &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func registerServices(mux *http.ServeMux, services *Services) {
	path, handler := progressapi.NewHandler(
		services.Progress,
		connect.WithInterceptors(
			progressapi.NewLoggingInterceptor(services.Metrics),
			progressapi.NewAuthInterceptor(services.Verifier),
		),
	)
	mux.Handle(path, handler)
}

func setupHealthCheck(mux *http.ServeMux, pool *pgxpool.Pool, nc *nats.Conn) {
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		healthy := true
		errs := []string{}

		dbConnected := pool.Ping(ctx) == nil
		if !dbConnected {
			healthy = false
			errs = append(errs, "database ping failed")
		}

		natsConnected := false
		if nc != nil {
			natsConnected = nc.IsConnected()
			if !natsConnected {
				healthy = false
				errs = append(errs, "NATS disconnected")
			}
		}

		w.Header().Set("Content-Type", "application/json")
		if !healthy {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		if err := json.NewEncoder(w).Encode(map[string]interface{}{
			"healthy":            healthy,
			"database_connected": dbConnected,
			"nats_connected":     natsConnected,
			"errors":             errs,
		}); err != nil {
			log.Error().Err(err).Msg("failed to write health check response")
		}
	})
}
