package autosync

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcdev12/reckoning/go/internal/progress"
)

func TestAddScore_UpdatesLocalThenSyncs(t *testing.T) {
	remote := state(10, 0)
	h := newHarness(t, state(10, 0), &remote)

	require.NoError(t, h.o.AddScore(15))
	assert.Equal(t, int64(25), h.local.Read().Score, "local update is synchronous")

	h.waitIdle(t, 1)
	assert.Equal(t, int64(25), h.remote.snapshot().Score)
}

func TestAddScore_RejectsNegative(t *testing.T) {
	h := newHarness(t, state(10, 0), nil)

	assert.ErrorIs(t, h.o.AddScore(-1), ErrInvalidAmount)
	assert.Equal(t, int64(10), h.local.Read().Score)
	assert.Equal(t, uint64(0), h.o.Stats().Cycles)
}

func TestCompleteItem_AddsOnce(t *testing.T) {
	h := newHarness(t, state(0, 0, "a"), nil)

	require.NoError(t, h.o.CompleteItem("b"))
	require.NoError(t, h.o.CompleteItem("a"))
	require.NoError(t, h.o.CompleteItem("b"))

	assert.Equal(t, []string{"a", "b"}, h.local.Read().CompletedItems)
	assert.ErrorIs(t, h.o.CompleteItem(""), ErrInvalidItem)

	h.waitIdle(t, 1)
}

func TestUpdateStreak_OverwritesLocally(t *testing.T) {
	remote := state(0, 9)
	h := newHarness(t, state(0, 4), &remote)
	h.remote.fetchErr = fmt.Errorf("%w: offline", progress.ErrTransientNetwork)

	require.NoError(t, h.o.UpdateStreak(2))
	assert.Equal(t, int64(2), h.local.Read().StreakLength)
	assert.ErrorIs(t, h.o.UpdateStreak(-3), ErrInvalidAmount)

	h.waitIdle(t, 1)
}

func TestMutation_NeverSurfacesSyncErrors(t *testing.T) {
	h := newHarness(t, state(0, 0), nil)
	h.remote.fetchErr = fmt.Errorf("%w: offline", progress.ErrTransientNetwork)

	assert.NoError(t, h.o.AddScore(1))
	assert.NoError(t, h.o.CompleteItem("q1"))
	assert.NoError(t, h.o.UpdateStreak(1))

	h.waitIdle(t, 1)
	assert.Equal(t, state(1, 1, "q1"), h.local.Read())
}

func TestMutation_StreakMergesUpFromRemote(t *testing.T) {
	remote := state(0, 9)
	h := newHarness(t, state(0, 4), &remote)

	require.NoError(t, h.o.UpdateStreak(2))
	h.waitIdle(t, 1)

	res := h.sync(t)
	assert.Equal(t, OutcomeAlreadyInSync, res.Outcome)
	assert.Equal(t, int64(9), h.local.Read().StreakLength)
}

func TestMutation_MarksDailyActivity(t *testing.T) {
	h := newHarness(t, state(0, 0), nil)

	require.NoError(t, h.o.AddScore(1))
	require.NoError(t, h.o.AddScore(1))

	days, err := h.local.ActiveDays()
	require.NoError(t, err)
	assert.Equal(t, []string{"2025-06-01"}, days)

	h.waitIdle(t, 1)
}
