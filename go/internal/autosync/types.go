package autosync

import (
	"context"
	"errors"
	"time"

	"github.com/mcdev12/reckoning/go/internal/models"
)

// LocalReplica is the on-device copy of the progress record.
// Read never fails; missing or corrupt data reads as the default state.
type LocalReplica interface {
	Read() models.ProgressState
	Write(state models.ProgressState) error
}

// RemoteReplica is the authoritative copy shared by every device of an identity.
// Fetch returns nil without error when the identity has no record yet.
type RemoteReplica interface {
	Fetch(ctx context.Context, id models.Identity) (*models.ProgressState, error)
	Update(ctx context.Context, id models.Identity, patch models.ProgressPatch) error
	Create(ctx context.Context, id models.Identity, state models.ProgressState) error
}

// ActivityTracker is implemented by local replicas that record days with gameplay
type ActivityTracker interface {
	MarkDailyActivity(day time.Time) (bool, error)
}

var (
	ErrStopped        = errors.New("orchestrator stopped")
	ErrAlreadyStarted = errors.New("orchestrator already started")
	ErrInvalidAmount  = errors.New("amount must not be negative")
	ErrInvalidItem    = errors.New("item id must not be empty")
)

// State is the orchestrator's scheduling state
type State int

const (
	StateIdle State = iota
	StateSyncing
)

func (s State) String() string {
	if s == StateSyncing {
		return "syncing"
	}
	return "idle"
}

// Outcome is the structured result of one sync cycle
type Outcome string

const (
	OutcomeNotAuthenticated Outcome = "not_authenticated"
	OutcomeFetchFailed      Outcome = "fetch_failed"
	OutcomePushFailed       Outcome = "push_failed"
	OutcomeAlreadyInSync    Outcome = "already_in_sync"
	OutcomeSynced           Outcome = "synced"
)

// Trigger names what started a cycle
type Trigger string

const (
	TriggerStartup      Trigger = "startup"
	TriggerTimer        Trigger = "timer"
	TriggerMutation     Trigger = "mutation"
	TriggerManual       Trigger = "manual"
	TriggerRemoteChange Trigger = "remote_change"
)

// Result reports one completed sync cycle
type Result struct {
	Outcome  Outcome
	Trigger  Trigger
	Identity models.Identity
	// State is the local state after the cycle
	State models.ProgressState
	// Created is set when the cycle bootstrapped the remote record
	Created   bool
	Err       error
	StartedAt time.Time
	Duration  time.Duration
}

// Stats is a point-in-time view of the orchestrator
type Stats struct {
	State       State
	Cycles      uint64
	Last        Result
	LastSuccess time.Time
}
