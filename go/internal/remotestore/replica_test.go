package remotestore

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcdev12/reckoning/go/internal/models"
	"github.com/mcdev12/reckoning/go/internal/progress"
)

type failingStore struct {
	*MemoryStore
	err error
}

func (f failingStore) Get(context.Context, models.Identity) (models.ProgressState, error) {
	return models.ProgressState{}, f.err
}

func (f failingStore) Update(context.Context, models.Identity, models.ProgressPatch) error {
	return f.err
}

func (f failingStore) Set(context.Context, models.Identity, models.ProgressState) error {
	return f.err
}

func TestReplica_FetchAbsent(t *testing.T) {
	r := NewReplica(NewMemoryStore())

	state, err := r.Fetch(context.Background(), "uid-1")
	require.NoError(t, err)
	assert.Nil(t, state)
}

func TestReplica_UpdateMissingIsRecordMissing(t *testing.T) {
	r := NewReplica(NewMemoryStore())

	err := r.Update(context.Background(), "uid-1", models.PatchFrom(models.ProgressState{Score: 1}))
	assert.ErrorIs(t, err, progress.ErrRecordMissing)
}

func TestReplica_CreateDropsUserName(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	r := NewReplica(store)

	require.NoError(t, r.Create(ctx, "uid-1", models.ProgressState{UserName: "local-name", Score: 4, CompletedItems: []string{"a", "a"}}))

	state, err := r.Fetch(ctx, "uid-1")
	require.NoError(t, err)
	require.NotNil(t, state)
	assert.Equal(t, "", state.UserName)
	assert.Equal(t, int64(4), state.Score)
	assert.Equal(t, []string{"a"}, state.CompletedItems)
}

func TestReplica_StoreFailuresAreTransient(t *testing.T) {
	ctx := context.Background()
	r := NewReplica(failingStore{MemoryStore: NewMemoryStore(), err: errors.New("dial tcp: timeout")})

	_, err := r.Fetch(ctx, "uid-1")
	assert.ErrorIs(t, err, progress.ErrTransientNetwork)

	err = r.Update(ctx, "uid-1", models.ProgressPatch{})
	assert.ErrorIs(t, err, progress.ErrTransientNetwork)

	err = r.Create(ctx, "uid-1", models.ProgressState{})
	assert.ErrorIs(t, err, progress.ErrTransientNetwork)
}
