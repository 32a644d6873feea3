package remotestore

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcdev12/reckoning/go/internal/models"
)

type fakeRow struct {
	scan func(dest ...any) error
}

func (r fakeRow) Scan(dest ...any) error { return r.scan(dest...) }

type fakeQuerier struct {
	execSQL  string
	execArgs []any
	tag      string
	execErr  error
	row      fakeRow
}

func (q *fakeQuerier) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	q.execSQL = sql
	q.execArgs = args
	return pgconn.NewCommandTag(q.tag), q.execErr
}

func (q *fakeQuerier) QueryRow(_ context.Context, _ string, _ ...any) pgx.Row {
	return q.row
}

func TestStore_GetNotFound(t *testing.T) {
	q := &fakeQuerier{row: fakeRow{scan: func(...any) error { return pgx.ErrNoRows }}}
	s := NewStore(q, nil)

	_, err := s.Get(context.Background(), "uid-1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_GetScansRow(t *testing.T) {
	q := &fakeQuerier{row: fakeRow{scan: func(dest ...any) error {
		*dest[0].(*string) = "ada"
		*dest[1].(*int64) = 40
		*dest[2].(*int64) = 3
		*dest[3].(*[]string) = nil
		return nil
	}}}
	s := NewStore(q, nil)

	state, err := s.Get(context.Background(), "uid-1")
	require.NoError(t, err)
	assert.Equal(t, models.ProgressState{
		Identity:       "uid-1",
		UserName:       "ada",
		Score:          40,
		StreakLength:   3,
		CompletedItems: []string{},
	}, state)
}

func TestStore_UpdateMissingRow(t *testing.T) {
	q := &fakeQuerier{tag: "UPDATE 0"}
	s := NewStore(q, nil)

	score := int64(5)
	err := s.Update(context.Background(), "uid-1", models.ProgressPatch{Score: &score})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_UpdatePassesUnsetFieldsAsNull(t *testing.T) {
	q := &fakeQuerier{tag: "UPDATE 1"}
	s := NewStore(q, nil)

	score := int64(5)
	require.NoError(t, s.Update(context.Background(), "uid-1", models.ProgressPatch{Score: &score}))

	require.Len(t, q.execArgs, 5)
	assert.Equal(t, "uid-1", q.execArgs[0])
	assert.Nil(t, q.execArgs[1])
	assert.Equal(t, &score, q.execArgs[2])
	assert.Nil(t, q.execArgs[3])
	assert.Nil(t, q.execArgs[4])
}

func TestStore_SetSendsEmptyArrayForNoItems(t *testing.T) {
	q := &fakeQuerier{tag: "INSERT 0 1"}
	s := NewStore(q, nil)

	require.NoError(t, s.Set(context.Background(), "uid-1", models.ProgressState{Score: 1}))
	assert.Equal(t, []string{}, q.execArgs[4])
}

func TestStore_ExecErrorIsWrapped(t *testing.T) {
	boom := errors.New("connection reset")
	s := NewStore(&fakeQuerier{execErr: boom}, nil)

	err := s.Delete(context.Background(), "uid-1")
	assert.ErrorIs(t, err, boom)
}

func TestStore_WatchWithoutWatcher(t *testing.T) {
	s := NewStore(&fakeQuerier{}, nil)
	assert.Error(t, s.Watch(context.Background(), nil, func(Change) {}))
}

func TestParseChange(t *testing.T) {
	c, err := ParseChange(`{"identity":"uid-9","op":"UPDATE"}`)
	require.NoError(t, err)
	assert.Equal(t, Change{Identity: "uid-9", Op: "UPDATE"}, c)

	_, err = ParseChange(`{"op":"UPDATE"}`)
	assert.Error(t, err)

	_, err = ParseChange(`nope`)
	assert.Error(t, err)
}
