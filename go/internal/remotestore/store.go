package remotestore

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/mcdev12/reckoning/go/internal/models"
)

//go:embed schema.sql
var schemaSQL string

// ErrNotFound is returned when no document exists for an identity
var ErrNotFound = errors.New("progress record not found")

// DocumentStore is the authoritative progress document store.
// Update is a partial update: unset patch fields keep their stored value.
type DocumentStore interface {
	Get(ctx context.Context, id models.Identity) (models.ProgressState, error)
	Update(ctx context.Context, id models.Identity, patch models.ProgressPatch) error
	Set(ctx context.Context, id models.Identity, state models.ProgressState) error
	Delete(ctx context.Context, id models.Identity) error
	Watch(ctx context.Context, match func(Change) bool, handle func(Change)) error
}

// Change describes a committed write to one document
type Change struct {
	Identity models.Identity `json:"identity"`
	Op       string          `json:"op"`
}

// querier is the subset of pgxpool.Pool the store uses
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store is a DocumentStore backed by Postgres
type Store struct {
	db      querier
	watcher *Watcher
}

// NewStore creates a Postgres document store.
// watcher may be nil, in which case Watch fails.
func NewStore(db querier, watcher *Watcher) *Store {
	return &Store{db: db, watcher: watcher}
}

// EnsureSchema creates the progress table and its change trigger
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, id models.Identity) (models.ProgressState, error) {
	state := models.ProgressState{Identity: id}
	err := s.db.QueryRow(ctx, `
		SELECT user_name, xp, streak, completed
		FROM progress_records
		WHERE identity = $1`, id.String(),
	).Scan(&state.UserName, &state.Score, &state.StreakLength, &state.CompletedItems)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.ProgressState{}, ErrNotFound
	}
	if err != nil {
		return models.ProgressState{}, fmt.Errorf("failed to get progress record: %w", err)
	}
	if state.CompletedItems == nil {
		state.CompletedItems = []string{}
	}
	return state, nil
}

func (s *Store) Update(ctx context.Context, id models.Identity, patch models.ProgressPatch) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE progress_records SET
			user_name  = COALESCE($2, user_name),
			xp         = COALESCE($3, xp),
			streak     = COALESCE($4, streak),
			completed  = COALESCE($5, completed),
			updated_at = now()
		WHERE identity = $1`,
		id.String(), patch.UserName, patch.Score, patch.StreakLength, patch.CompletedItems,
	)
	if err != nil {
		return fmt.Errorf("failed to update progress record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Set writes the whole document. An empty user name keeps the stored one.
func (s *Store) Set(ctx context.Context, id models.Identity, state models.ProgressState) error {
	completed := state.CompletedItems
	if completed == nil {
		completed = []string{}
	}
	_, err := s.db.Exec(ctx, `
		INSERT INTO progress_records (identity, user_name, xp, streak, completed, updated_at)
		VALUES ($1, $2, $3, $4, $5, now())
		ON CONFLICT (identity) DO UPDATE SET
			user_name  = COALESCE(NULLIF(excluded.user_name, ''), progress_records.user_name),
			xp         = excluded.xp,
			streak     = excluded.streak,
			completed  = excluded.completed,
			updated_at = excluded.updated_at`,
		id.String(), state.UserName, state.Score, state.StreakLength, completed,
	)
	if err != nil {
		return fmt.Errorf("failed to set progress record: %w", err)
	}
	return nil
}

// Delete removes the document; deleting a missing document is not an error
func (s *Store) Delete(ctx context.Context, id models.Identity) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM progress_records WHERE identity = $1`, id.String()); err != nil {
		return fmt.Errorf("failed to delete progress record: %w", err)
	}
	return nil
}

// Watch delivers committed changes accepted by match until ctx is done
func (s *Store) Watch(ctx context.Context, match func(Change) bool, handle func(Change)) error {
	if s.watcher == nil {
		return errors.New("store has no change watcher")
	}
	return s.watcher.Watch(ctx, match, handle)
}
