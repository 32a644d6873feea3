package main

import (
	"context"
	"fmt"

	"github.com/jonboulle/clockwork"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/mcdev12/reckoning/go/internal/notify"
	"github.com/mcdev12/reckoning/go/internal/remotestore"
)

// setupRelay connects to NATS and builds the store → JetStream change relay
func setupRelay(ctx context.Context, url string, store *remotestore.Store) (*nats.Conn, *notify.Relay, error) {
	jsCfg := notify.DefaultJetStreamConfig()
	jsCfg.URL = url
	jsCfg.ConnectionName = "reckoning-relay"

	nc, err := notify.Connect(jsCfg)
	if err != nil {
		return nil, nil, err
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, nil, fmt.Errorf("create JetStream context: %w", err)
	}
	if err := notify.EnsureStream(ctx, js, jsCfg); err != nil {
		nc.Close()
		return nil, nil, err
	}

	relayCfg := notify.DefaultRelayConfig()
	relayCfg.MaxRetries = getEnvAsInt("RELAY_MAX_RETRIES", relayCfg.MaxRetries)
	relayCfg.RetryDelay = getEnvAsDuration("RELAY_RETRY_DELAY", relayCfg.RetryDelay)

	publisher := notify.NewPublisher(js, jsCfg, clockwork.NewRealClock())
	return nc, notify.NewRelay(store, publisher, relayCfg), nil
}
