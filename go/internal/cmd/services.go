package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/mcdev12/reckoning/go/internal/authgate"
	"github.com/mcdev12/reckoning/go/internal/progressapi"
	"github.com/mcdev12/reckoning/go/internal/remotestore"
)

type Services struct {
	Store    *remotestore.Store
	Progress *progressapi.Service
	Verifier *authgate.Verifier
	Metrics  *progressapi.Metrics
}

func setupServices(ctx context.Context, pool *pgxpool.Pool, watcher *remotestore.Watcher, cfg ServerConfig, reg prometheus.Registerer) (*Services, error) {
	// Wire up dependency injection chain
	// Database layer → Store → App layer → Service layer
	store := remotestore.NewStore(pool, watcher)
	if err := store.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure schema: %w", err)
	}

	progressApp := progressapi.NewApp(store)
	progressService := progressapi.NewService(progressApp)

	return &Services{
		Store:    store,
		Progress: progressService,
		Verifier: authgate.NewVerifier([]byte(cfg.JWTSecret), cfg.JWTIssuer, clockwork.NewRealClock()),
		Metrics:  progressapi.NewMetrics(reg),
	}, nil
}
