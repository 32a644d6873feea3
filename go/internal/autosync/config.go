package autosync

import (
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/mcdev12/reckoning/go/internal/authgate"
)

type Config struct {
	Interval     time.Duration `yaml:"interval"`      // Period between timer-driven cycles
	CycleTimeout time.Duration `yaml:"cycle_timeout"` // Upper bound on one cycle's network phase
}

func DefaultConfig() Config {
	return Config{
		Interval:     30 * time.Second,
		CycleTimeout: 15 * time.Second,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Interval <= 0 {
		c.Interval = d.Interval
	}
	if c.CycleTimeout <= 0 {
		c.CycleTimeout = d.CycleTimeout
	}
	return c
}

// Deps are the collaborators an orchestrator is built from.
// Clock and Metrics are optional.
type Deps struct {
	Local   LocalReplica
	Remote  RemoteReplica
	Auth    authgate.Gate
	Clock   clockwork.Clock
	Metrics MetricsCollector
}
