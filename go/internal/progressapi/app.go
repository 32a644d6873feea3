package progressapi

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/mcdev12/reckoning/go/internal/models"
	"github.com/mcdev12/reckoning/go/internal/progress"
	"github.com/mcdev12/reckoning/go/internal/remotestore"
)

// ErrInvalidPatch is returned for patches carrying negative counters
var ErrInvalidPatch = errors.New("invalid progress patch")

// App holds the progress business logic over a document store.
// It stores what it is given; merging happens on the devices.
type App struct {
	store remotestore.DocumentStore
}

func NewApp(store remotestore.DocumentStore) *App {
	return &App{store: store}
}

func (a *App) GetProgress(ctx context.Context, id models.Identity) (models.ProgressState, error) {
	return a.store.Get(ctx, id)
}

func (a *App) UpdateProgress(ctx context.Context, id models.Identity, patch models.ProgressPatch) error {
	if patch.Score != nil && *patch.Score < 0 {
		return fmt.Errorf("%w: negative score", ErrInvalidPatch)
	}
	if patch.StreakLength != nil && *patch.StreakLength < 0 {
		return fmt.Errorf("%w: negative streak", ErrInvalidPatch)
	}
	if patch.CompletedItems != nil {
		patch.CompletedItems = progress.Normalize(models.ProgressState{CompletedItems: patch.CompletedItems}).CompletedItems
	}

	if err := a.store.Update(ctx, id, patch); err != nil {
		return err
	}

	log.Debug().Str("identity", id.String()).Msg("progress updated")
	return nil
}

func (a *App) CreateProgress(ctx context.Context, id models.Identity, state models.ProgressState) error {
	if err := a.store.Set(ctx, id, progress.Normalize(state)); err != nil {
		return err
	}

	log.Info().Str("identity", id.String()).Msg("progress record created")
	return nil
}

func (a *App) DeleteProgress(ctx context.Context, id models.Identity) error {
	return a.store.Delete(ctx, id)
}
