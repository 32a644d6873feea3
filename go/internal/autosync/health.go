package autosync

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/jonboulle/clockwork"
)

type HealthStatus struct {
	Healthy     bool
	State       State
	Cycles      uint64
	LastOutcome Outcome
	LastSuccess time.Time
	Errors      []string
}

// HealthChecker reports whether the orchestrator has synced recently
type HealthChecker struct {
	orchestrator *Orchestrator
	clock        clockwork.Clock
	threshold    time.Duration // How long without a successful cycle before unhealthy
}

func NewHealthChecker(o *Orchestrator, clock clockwork.Clock, threshold time.Duration) *HealthChecker {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &HealthChecker{orchestrator: o, clock: clock, threshold: threshold}
}

func (h *HealthChecker) Check() HealthStatus {
	stats := h.orchestrator.Stats()
	status := HealthStatus{
		Healthy:     true,
		State:       stats.State,
		Cycles:      stats.Cycles,
		LastOutcome: stats.Last.Outcome,
		LastSuccess: stats.LastSuccess,
		Errors:      []string{},
	}

	// signed out is a normal state, not a failure
	if stats.Last.Outcome == OutcomeNotAuthenticated {
		return status
	}

	if stats.Last.Err != nil {
		status.Errors = append(status.Errors, stats.Last.Err.Error())
	}
	if stats.Cycles > 0 && h.clock.Since(stats.LastSuccess) > h.threshold {
		status.Healthy = false
		status.Errors = append(status.Errors, fmt.Sprintf("no successful sync for %s", h.threshold))
	}
	return status
}

// HTTP handler helper
func (h *HealthChecker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	status := h.Check()

	response := map[string]interface{}{
		"healthy":      status.Healthy,
		"state":        status.State.String(),
		"cycles":       status.Cycles,
		"last_outcome": status.LastOutcome,
		"last_success": status.LastSuccess,
		"errors":       status.Errors,
	}

	w.Header().Set("Content-Type", "application/json")
	if !status.Healthy {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	json.NewEncoder(w).Encode(response)
}
