package progress

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"

	"github.com/mcdev12/reckoning/go/internal/models"
)

// LocalRecordKey is the storage key the game pages persist progress under
const LocalRecordKey = "reckonProgress"

// LocalRecord is the persisted shape of the local progress record
type LocalRecord struct {
	UserName  string   `json:"userName,omitempty"`
	XP        int64    `json:"xp"`
	Streak    int64    `json:"streak"`
	Completed []string `json:"completed"`
}

// rawLocalRecord accepts every producer's spelling of the record.
// Some pages write the streak as bestQuestionStreak.
type rawLocalRecord struct {
	UserName           string      `json:"userName"`
	XP                 json.Number `json:"xp"`
	Streak             json.Number `json:"streak"`
	BestQuestionStreak json.Number `json:"bestQuestionStreak"`
	Completed          []string    `json:"completed"`
}

// DecodeLocalRecord parses a persisted local record into a normalized state.
// Any decode failure wraps ErrMalformedLocalData.
func DecodeLocalRecord(data []byte) (models.ProgressState, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return models.ProgressState{}, fmt.Errorf("%w: empty record", ErrMalformedLocalData)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw rawLocalRecord
	if err := dec.Decode(&raw); err != nil {
		return models.ProgressState{}, fmt.Errorf("%w: %v", ErrMalformedLocalData, err)
	}

	xp, err := parseCount(raw.XP)
	if err != nil {
		return models.ProgressState{}, fmt.Errorf("%w: xp: %v", ErrMalformedLocalData, err)
	}
	streak, err := parseCount(raw.Streak)
	if err != nil {
		return models.ProgressState{}, fmt.Errorf("%w: streak: %v", ErrMalformedLocalData, err)
	}
	best, err := parseCount(raw.BestQuestionStreak)
	if err != nil {
		return models.ProgressState{}, fmt.Errorf("%w: bestQuestionStreak: %v", ErrMalformedLocalData, err)
	}

	return Normalize(models.ProgressState{
		UserName:       raw.UserName,
		Score:          xp,
		StreakLength:   max(streak, best),
		CompletedItems: raw.Completed,
	}), nil
}

// EncodeLocalRecord serializes a state with the canonical field names
func EncodeLocalRecord(state models.ProgressState) ([]byte, error) {
	state = Normalize(state)
	data, err := json.Marshal(LocalRecord{
		UserName:  state.UserName,
		XP:        state.Score,
		Streak:    state.StreakLength,
		Completed: state.CompletedItems,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode local record: %w", err)
	}
	return data, nil
}

// parseCount reads a non-negative counter; absent means zero, fractions truncate
func parseCount(n json.Number) (int64, error) {
	if n == "" {
		return 0, nil
	}
	if i, err := n.Int64(); err == nil {
		return max(i, 0), nil
	}
	f, err := n.Float64()
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("not a number: %q", n.String())
	}
	if f <= 0 {
		return 0, nil
	}
	if f >= math.MaxInt64 {
		return math.MaxInt64, nil
	}
	return int64(f), nil
}
