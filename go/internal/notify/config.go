package notify

import (
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"
)

// JetStreamConfig describes the progress change stream and how to reach it.
// Change events only prompt a sync, so the stream keeps them for a short time.
type JetStreamConfig struct {
	URL             string
	ConnectionName  string // Shown in NATS monitoring
	StreamName      string
	SubjectPrefix   string // Events land on <prefix>.<identity>
	MaxReconnects   int
	ReconnectWait   time.Duration
	MaxAge          time.Duration
	MaxMsgsPerID    int64 // Older events for one identity are discarded
	Replicas        int
	DuplicateWindow time.Duration // Publisher MsgID dedupe
}

func DefaultJetStreamConfig() JetStreamConfig {
	return JetStreamConfig{
		URL:             nats.DefaultURL,
		ConnectionName:  "reckoning",
		StreamName:      "PROGRESS_EVENTS",
		SubjectPrefix:   "progress.events",
		MaxReconnects:   -1,
		ReconnectWait:   2 * time.Second,
		MaxAge:          time.Hour,
		MaxMsgsPerID:    16,
		Replicas:        1,
		DuplicateWindow: 2 * time.Minute,
	}
}

// Connect opens a NATS connection that logs disconnects and reconnects
func Connect(cfg JetStreamConfig) (*nats.Conn, error) {
	opts := []nats.Option{
		nats.Name(cfg.ConnectionName),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Warn().Err(err).Str("connection", cfg.ConnectionName).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
		nats.ErrorHandler(func(nc *nats.Conn, sub *nats.Subscription, err error) {
			log.Error().Err(err).Str("connection", cfg.ConnectionName).Msg("NATS error")
		}),
	}

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	return nc, nil
}
