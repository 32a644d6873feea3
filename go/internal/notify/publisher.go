package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/reckoning/go/internal/remotestore"
)

// msgPublisher is the subset of jetstream.JetStream used to publish
type msgPublisher interface {
	PublishMsg(ctx context.Context, msg *nats.Msg, opts ...jetstream.PublishOpt) (*jetstream.PubAck, error)
}

// Publisher writes ProgressChanged events to JetStream
type Publisher struct {
	js     msgPublisher
	config JetStreamConfig
	clock  clockwork.Clock
}

func NewPublisher(js msgPublisher, cfg JetStreamConfig, clock clockwork.Clock) *Publisher {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Publisher{js: js, config: cfg, clock: clock}
}

// EnsureStream creates the progress event stream or updates it to cfg
func EnsureStream(ctx context.Context, js jetstream.JetStream, cfg JetStreamConfig) error {
	sc := jetstream.StreamConfig{
		Name:              cfg.StreamName,
		Description:       "Progress record change notifications",
		Subjects:          []string{fmt.Sprintf("%s.>", cfg.SubjectPrefix)},
		Retention:         jetstream.LimitsPolicy,
		MaxAge:            cfg.MaxAge,
		MaxMsgsPerSubject: cfg.MaxMsgsPerID,
		Storage:           jetstream.FileStorage,
		Replicas:          cfg.Replicas,
		Duplicates:        cfg.DuplicateWindow,
	}

	if _, err := js.CreateOrUpdateStream(ctx, sc); err != nil {
		return fmt.Errorf("ensure stream: %w", err)
	}
	log.Info().Str("stream", cfg.StreamName).Msg("JetStream stream ready")
	return nil
}

// Publish announces a committed change; the event ID doubles as the dedupe key
func (p *Publisher) Publish(ctx context.Context, change remotestore.Change) error {
	ev := ProgressChanged{
		EventID:   uuid.NewString(),
		Identity:  change.Identity,
		Op:        change.Op,
		Timestamp: p.clock.Now().UTC(),
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	subject := Subject(p.config.SubjectPrefix, change.Identity)
	ack, err := p.js.PublishMsg(ctx, &nats.Msg{
		Subject: subject,
		Data:    data,
		Header: nats.Header{
			"Event-ID": []string{ev.EventID},
			"Op":       []string{ev.Op},
		},
	},
		jetstream.WithMsgID(ev.EventID),
		jetstream.WithExpectStream(p.config.StreamName),
	)
	if err != nil {
		return fmt.Errorf("publish to JetStream: %w", err)
	}

	log.Debug().
		Str("subject", subject).
		Str("event_id", ev.EventID).
		Uint64("sequence", ack.Sequence).
		Msg("published progress change")
	return nil
}
