package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/mcdev12/reckoning/go/internal/remotestore"
)

// ChangeSource streams committed document changes
type ChangeSource interface {
	Watch(ctx context.Context, match func(remotestore.Change) bool, handle func(remotestore.Change)) error
}

// EventPublisher publishes one change event
type EventPublisher interface {
	Publish(ctx context.Context, change remotestore.Change) error
}

type RelayConfig struct {
	MaxRetries int
	RetryDelay time.Duration
}

func DefaultRelayConfig() RelayConfig {
	return RelayConfig{
		MaxRetries: 5,
		RetryDelay: 200 * time.Millisecond,
	}
}

// Relay forwards store change notifications to devices
type Relay struct {
	source    ChangeSource
	publisher EventPublisher
	cfg       RelayConfig
}

func NewRelay(source ChangeSource, publisher EventPublisher, cfg RelayConfig) *Relay {
	return &Relay{source: source, publisher: publisher, cfg: cfg}
}

// Run relays changes until ctx is done
func (r *Relay) Run(ctx context.Context) error {
	log.Info().Msg("progress change relay started")
	return r.source.Watch(ctx, nil, func(change remotestore.Change) {
		if err := r.publishWithRetry(ctx, change); err != nil {
			log.Error().
				Err(err).
				Str("identity", change.Identity.String()).
				Msg("dropping progress change")
		}
	})
}

// publishWithRetry attempts to publish a change with a linear backoff
func (r *Relay) publishWithRetry(ctx context.Context, change remotestore.Change) error {
	var lastErr error

	for attempt := 0; attempt <= r.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := r.cfg.RetryDelay * time.Duration(attempt)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		if err := r.publisher.Publish(ctx, change); err != nil {
			lastErr = err
			log.Warn().
				Err(err).
				Int("attempt", attempt+1).
				Str("identity", change.Identity.String()).
				Msg("failed to publish, retrying")
			continue
		}

		if attempt > 0 {
			log.Info().
				Int("attempt", attempt+1).
				Str("identity", change.Identity.String()).
				Msg("publish succeeded after retry")
		}
		return nil
	}

	return fmt.Errorf("publish failed after %d attempts: %w", r.cfg.MaxRetries+1, lastErr)
}
