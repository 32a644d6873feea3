package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/reckoning/go/internal/autosync"
	"github.com/mcdev12/reckoning/go/internal/models"
)

// SyncRequester schedules a sync cycle without waiting for it
type SyncRequester interface {
	RequestSync(trigger autosync.Trigger)
}

type ConsumerConfig struct {
	ConsumerName      string // Generated per device when empty
	AckWait           time.Duration
	MaxDeliver        int
	InactiveThreshold time.Duration // Server removes the consumer after this long without a client
}

func DefaultConsumerConfig() ConsumerConfig {
	return ConsumerConfig{
		AckWait:           30 * time.Second,
		MaxDeliver:        3,
		InactiveThreshold: 24 * time.Hour,
	}
}

// Consumer requests a sync whenever another device changes this identity's record
type Consumer struct {
	js       jetstream.JetStream
	stream   JetStreamConfig
	cfg      ConsumerConfig
	identity models.Identity
	syncer   SyncRequester
}

func NewConsumer(js jetstream.JetStream, stream JetStreamConfig, cfg ConsumerConfig, identity models.Identity, syncer SyncRequester) *Consumer {
	if cfg.ConsumerName == "" {
		cfg.ConsumerName = "progress-device-" + uuid.NewString()
	}
	return &Consumer{js: js, stream: stream, cfg: cfg, identity: identity, syncer: syncer}
}

// Start consumes change events until ctx is done
func (c *Consumer) Start(ctx context.Context) error {
	consumer, err := c.js.CreateOrUpdateConsumer(ctx, c.stream.StreamName, jetstream.ConsumerConfig{
		Name:              c.cfg.ConsumerName,
		Durable:           c.cfg.ConsumerName,
		Description:       "Progress device sync trigger",
		FilterSubject:     Subject(c.stream.SubjectPrefix, c.identity),
		DeliverPolicy:     jetstream.DeliverNewPolicy,
		AckPolicy:         jetstream.AckExplicitPolicy,
		AckWait:           c.cfg.AckWait,
		MaxDeliver:        c.cfg.MaxDeliver,
		InactiveThreshold: c.cfg.InactiveThreshold,
	})
	if err != nil {
		return fmt.Errorf("create consumer: %w", err)
	}

	log.Info().
		Str("consumer", c.cfg.ConsumerName).
		Str("identity", c.identity.String()).
		Msg("listening for progress changes")

	consumeCtx, err := consumer.Consume(func(msg jetstream.Msg) {
		if err := c.handle(msg.Data()); err != nil {
			log.Error().Err(err).Str("subject", msg.Subject()).Msg("failed to process message")
			if termErr := msg.Term(); termErr != nil {
				log.Error().Err(termErr).Msg("failed to terminate message")
			}
			return
		}
		if ackErr := msg.Ack(); ackErr != nil {
			log.Error().Err(ackErr).Msg("failed to ACK message")
		}
	})
	if err != nil {
		return fmt.Errorf("start consumer: %w", err)
	}
	defer consumeCtx.Stop()

	<-ctx.Done()
	log.Info().Msg("progress change consumer shutting down")
	return nil
}

// handle requests a sync for a change event addressed to this identity
func (c *Consumer) handle(data []byte) error {
	ev, err := DecodeProgressChanged(data)
	if err != nil {
		return err
	}
	if ev.Identity != c.identity {
		log.Debug().Str("identity", ev.Identity.String()).Msg("ignoring change for another identity")
		return nil
	}

	log.Debug().
		Str("event_id", ev.EventID).
		Str("op", ev.Op).
		Msg("remote progress changed")
	c.syncer.RequestSync(autosync.TriggerRemoteChange)
	return nil
}
