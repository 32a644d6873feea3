package autosync

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/reckoning/go/internal/authgate"
	"github.com/mcdev12/reckoning/go/internal/models"
	"github.com/mcdev12/reckoning/go/internal/progress"
)

// Orchestrator keeps a local and a remote progress replica converged.
//
// At most one sync cycle runs at a time. Triggers arriving while a cycle is
// in flight coalesce into a single follow-up cycle, and callers awaiting a
// sync always receive the result of a cycle that started after their request.
type Orchestrator struct {
	local   LocalReplica
	remote  RemoteReplica
	auth    authgate.Gate
	clock   clockwork.Clock
	metrics MetricsCollector
	cfg     Config

	ctx    context.Context
	cancel context.CancelFunc

	// localMu serializes every read-modify-write of the local replica
	localMu sync.Mutex

	mu          sync.Mutex
	state       State
	pending     bool
	nextTrigger Trigger
	waiters     []chan Result
	started     bool
	stopped     bool
	stopCh      chan struct{}
	cycles      uint64
	last        Result
	lastSuccess time.Time
	wg          sync.WaitGroup
}

// New creates an idle orchestrator. Call Start to begin periodic syncing.
func New(cfg Config, deps Deps) *Orchestrator {
	if deps.Clock == nil {
		deps.Clock = clockwork.NewRealClock()
	}
	if deps.Metrics == nil {
		deps.Metrics = &NoOpMetricsCollector{}
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Orchestrator{
		local:   deps.Local,
		remote:  deps.Remote,
		auth:    deps.Auth,
		clock:   deps.Clock,
		metrics: deps.Metrics,
		cfg:     cfg.withDefaults(),
		ctx:     ctx,
		cancel:  cancel,
		stopCh:  make(chan struct{}),
	}
}

// Start runs an immediate cycle and then one every Interval until ctx is done or Stop is called
func (o *Orchestrator) Start(ctx context.Context) error {
	o.mu.Lock()
	if o.stopped {
		o.mu.Unlock()
		return ErrStopped
	}
	if o.started {
		o.mu.Unlock()
		return ErrAlreadyStarted
	}
	o.started = true
	ticker := o.clock.NewTicker(o.cfg.Interval)
	o.wg.Add(1)
	o.mu.Unlock()

	go o.run(ctx, ticker)
	o.RequestSync(TriggerStartup)

	log.Info().
		Dur("interval", o.cfg.Interval).
		Dur("cycle_timeout", o.cfg.CycleTimeout).
		Msg("progress sync started")
	return nil
}

// Stop halts the timer, cancels any in-flight cycle and waits for it to finish.
// Calling Stop more than once is a no-op.
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	if o.stopped {
		o.mu.Unlock()
		return
	}
	o.stopped = true
	close(o.stopCh)
	o.mu.Unlock()

	o.cancel()
	o.wg.Wait()

	log.Info().Msg("progress sync stopped")
}

func (o *Orchestrator) run(ctx context.Context, ticker clockwork.Ticker) {
	defer o.wg.Done()
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-o.stopCh:
			return
		case <-ticker.Chan():
			o.RequestSync(TriggerTimer)
		}
	}
}

// RequestSync schedules a cycle without waiting for it
func (o *Orchestrator) RequestSync(trigger Trigger) {
	o.request(trigger, nil)
}

// Sync runs a full cycle and returns its result.
// The result always comes from a cycle that started after the call.
func (o *Orchestrator) Sync(ctx context.Context) (Result, error) {
	waiter := make(chan Result, 1)
	if !o.request(TriggerManual, waiter) {
		return Result{}, ErrStopped
	}

	select {
	case res := <-waiter:
		return res, nil
	case <-ctx.Done():
		return Result{}, ctx.Err()
	case <-o.stopCh:
		return Result{}, ErrStopped
	}
}

// Stats returns the current scheduling state and the last cycle result
func (o *Orchestrator) Stats() Stats {
	o.mu.Lock()
	defer o.mu.Unlock()
	return Stats{
		State:       o.state,
		Cycles:      o.cycles,
		Last:        o.last,
		LastSuccess: o.lastSuccess,
	}
}

// Progress returns the local progress state
func (o *Orchestrator) Progress() models.ProgressState {
	return o.local.Read()
}

func (o *Orchestrator) request(trigger Trigger, waiter chan Result) bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.stopped {
		return false
	}
	if waiter != nil {
		o.waiters = append(o.waiters, waiter)
	}
	if o.state == StateSyncing {
		o.pending = true
		o.nextTrigger = trigger
		o.metrics.RecordCoalesced(trigger)
		return true
	}

	o.state = StateSyncing
	o.wg.Add(1)
	go o.drain(trigger)
	return true
}

// drain runs cycles until no trigger is pending, then returns to idle
func (o *Orchestrator) drain(trigger Trigger) {
	defer o.wg.Done()

	for {
		o.mu.Lock()
		waiters := o.waiters
		o.waiters = nil
		o.pending = false
		o.mu.Unlock()

		res := o.runCycle(trigger)
		for _, w := range waiters {
			w <- res
		}

		o.mu.Lock()
		o.cycles++
		o.last = res
		if res.Outcome == OutcomeSynced || res.Outcome == OutcomeAlreadyInSync {
			o.lastSuccess = res.StartedAt.Add(res.Duration)
		}
		if !o.pending || o.stopped {
			o.state = StateIdle
			o.mu.Unlock()
			return
		}
		trigger = o.nextTrigger
		o.mu.Unlock()
	}
}

func (o *Orchestrator) runCycle(trigger Trigger) Result {
	ctx, cancel := context.WithTimeout(o.ctx, o.cfg.CycleTimeout)
	defer cancel()

	start := o.clock.Now()
	res := o.cycle(ctx)
	res.Trigger = trigger
	res.StartedAt = start
	res.Duration = o.clock.Since(start)

	o.report(res)
	return res
}

// cycle performs one pull, merge, persist, push pass
func (o *Orchestrator) cycle(ctx context.Context) Result {
	id, ok := o.auth.CurrentIdentity()
	if !ok {
		return Result{Outcome: OutcomeNotAuthenticated}
	}

	remote, err := o.remote.Fetch(ctx, id)
	if errors.Is(err, progress.ErrUnauthenticated) {
		return Result{Outcome: OutcomeNotAuthenticated, Identity: id, Err: err}
	}
	if err != nil {
		return Result{Outcome: OutcomeFetchFailed, Identity: id, Err: err}
	}

	local := o.local.Read()

	if remote == nil {
		// push-only bootstrap
		res := Result{Identity: id, State: local}
		if err := o.remote.Create(ctx, id, local); err != nil {
			res.Outcome = OutcomePushFailed
			res.Err = err
			return res
		}
		res.Outcome = OutcomeSynced
		res.Created = true
		return res
	}

	merged := progress.Merge(local, *remote)
	if progress.Equal(merged, local) && progress.Equal(merged, *remote) {
		res := Result{Outcome: OutcomeAlreadyInSync, Identity: id, State: local}
		if merged.UserName != local.UserName {
			res.State = o.persist(merged)
		}
		return res
	}

	written := o.persist(merged)
	res := Result{Outcome: OutcomeSynced, Identity: id, State: written}

	err = o.remote.Update(ctx, id, models.PatchFrom(written))
	if errors.Is(err, progress.ErrRecordMissing) {
		// deleted between fetch and push
		err = o.remote.Create(ctx, id, written)
		res.Created = err == nil
	}
	if err != nil {
		res.Outcome = OutcomePushFailed
		res.Err = err
	}
	return res
}

// persist joins state with the current local value and writes the result.
// A mutation that landed during the network phase is kept.
func (o *Orchestrator) persist(state models.ProgressState) models.ProgressState {
	o.localMu.Lock()
	defer o.localMu.Unlock()

	joined := progress.Merge(o.local.Read(), state)
	if err := o.local.Write(joined); err != nil {
		log.Warn().Err(err).Msg("failed to persist merged progress locally")
	}
	return joined
}

func (o *Orchestrator) report(res Result) {
	o.metrics.RecordCycle(res.Trigger, res.Outcome, res.Duration)

	var event = log.Debug()
	switch res.Outcome {
	case OutcomeFetchFailed, OutcomePushFailed:
		event = log.Warn().Err(res.Err)
	case OutcomeSynced:
		event = log.Info()
	}

	event.
		Str("identity", res.Identity.String()).
		Str("trigger", string(res.Trigger)).
		Str("outcome", string(res.Outcome)).
		Bool("created", res.Created).
		Int64("score", res.State.Score).
		Int64("streak", res.State.StreakLength).
		Int("completed", len(res.State.CompletedItems)).
		Dur("duration", res.Duration).
		Msg("sync cycle finished")
}
