package remotestore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

type WatcherConfig struct {
	DatabaseURL          string        // Postgres DSN for LISTEN/NOTIFY
	NotifyChannel        string        // Channel name to LISTEN on
	PingInterval         time.Duration // Keepalive for idle connections
	MinReconnectInterval time.Duration
	MaxReconnectInterval time.Duration
}

func DefaultWatcherConfig() WatcherConfig {
	return WatcherConfig{
		NotifyChannel:        "progress_records_changed",
		PingInterval:         90 * time.Second,
		MinReconnectInterval: 10 * time.Second,
		MaxReconnectInterval: time.Minute,
	}
}

// Watcher streams progress_records change notifications
type Watcher struct {
	cfg WatcherConfig
}

func NewWatcher(cfg WatcherConfig) *Watcher {
	return &Watcher{cfg: cfg}
}

// Watch listens until ctx is done, calling handle for every change accepted by match.
// A nil match accepts everything.
func (w *Watcher) Watch(ctx context.Context, match func(Change) bool, handle func(Change)) error {
	l := pq.NewListener(
		w.cfg.DatabaseURL,
		w.cfg.MinReconnectInterval,
		w.cfg.MaxReconnectInterval,
		func(ev pq.ListenerEventType, err error) {
			if err != nil {
				log.Error().Err(err).Msg("listener event")
			}
		},
	)
	defer l.Close()

	if err := l.Listen(w.cfg.NotifyChannel); err != nil {
		return fmt.Errorf("failed to listen to channel: %w", err)
	}

	log.Info().
		Str("channel", w.cfg.NotifyChannel).
		Dur("ping_interval", w.cfg.PingInterval).
		Msg("watching progress records")

	pingTicker := time.NewTicker(w.cfg.PingInterval)
	defer pingTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("progress watcher shutting down")
			return nil
		case note := <-l.Notify:
			if note == nil {
				// connection was lost and re-established
				continue
			}
			change, err := ParseChange(note.Extra)
			if err != nil {
				log.Error().Err(err).Str("payload", note.Extra).Msg("invalid change notification")
				continue
			}
			if match == nil || match(change) {
				handle(change)
			}
		case <-pingTicker.C:
			if err := l.Ping(); err != nil {
				log.Error().Err(err).Msg("failed to ping listener")
			}
		}
	}
}

// ParseChange decodes a NOTIFY payload written by the progress_records trigger
func ParseChange(payload string) (Change, error) {
	var c Change
	if err := json.Unmarshal([]byte(payload), &c); err != nil {
		return Change{}, fmt.Errorf("failed to decode change: %w", err)
	}
	if c.Identity == "" {
		return Change{}, fmt.Errorf("change has no identity")
	}
	return c, nil
}
