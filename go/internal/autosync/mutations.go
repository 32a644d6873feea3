package autosync

import (
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/reckoning/go/internal/models"
)

// AddScore increments the local score and schedules a background sync.
// Only a negative amount is an error; sync failures are never returned.
func (o *Orchestrator) AddScore(amount int64) error {
	if amount < 0 {
		return ErrInvalidAmount
	}
	o.mutate("add_score", func(s *models.ProgressState) {
		s.Score += amount
	})
	return nil
}

// CompleteItem adds id to the completed set if absent and schedules a background sync
func (o *Orchestrator) CompleteItem(id string) error {
	if id == "" {
		return ErrInvalidItem
	}
	o.mutate("complete_item", func(s *models.ProgressState) {
		if !s.HasCompleted(id) {
			s.CompletedItems = append(s.CompletedItems, id)
		}
	})
	return nil
}

// UpdateStreak overwrites the local streak and schedules a background sync
func (o *Orchestrator) UpdateStreak(value int64) error {
	if value < 0 {
		return ErrInvalidAmount
	}
	o.mutate("update_streak", func(s *models.ProgressState) {
		s.StreakLength = value
	})
	return nil
}

func (o *Orchestrator) mutate(kind string, apply func(*models.ProgressState)) {
	o.localMu.Lock()
	state := o.local.Read()
	apply(&state)
	if err := o.local.Write(state); err != nil {
		log.Warn().Err(err).Str("mutation", kind).Msg("failed to persist local progress")
	}
	o.localMu.Unlock()

	o.metrics.RecordMutation(kind)
	o.markActivity()
	o.RequestSync(TriggerMutation)
}

func (o *Orchestrator) markActivity() {
	tracker, ok := o.local.(ActivityTracker)
	if !ok {
		return
	}
	first, err := tracker.MarkDailyActivity(o.clock.Now())
	if err != nil {
		log.Warn().Err(err).Msg("failed to record daily activity")
		return
	}
	if first {
		log.Debug().Time("day", o.clock.Now()).Msg("first activity today")
	}
}
