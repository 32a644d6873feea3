package remotestore

import (
	"context"
	"errors"
	"fmt"

	"github.com/mcdev12/reckoning/go/internal/models"
	"github.com/mcdev12/reckoning/go/internal/progress"
)

// Replica exposes a DocumentStore as the remote side of a sync cycle,
// translating store failures into the progress error taxonomy.
type Replica struct {
	store DocumentStore
}

func NewReplica(store DocumentStore) *Replica {
	return &Replica{store: store}
}

// Fetch returns nil without error when the identity has no record
func (r *Replica) Fetch(ctx context.Context, id models.Identity) (*models.ProgressState, error) {
	state, err := r.store.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", progress.ErrTransientNetwork, err)
	}
	return &state, nil
}

func (r *Replica) Update(ctx context.Context, id models.Identity, patch models.ProgressPatch) error {
	err := r.store.Update(ctx, id, patch)
	if errors.Is(err, ErrNotFound) {
		return fmt.Errorf("%w: %s", progress.ErrRecordMissing, id)
	}
	if err != nil {
		return fmt.Errorf("%w: %v", progress.ErrTransientNetwork, err)
	}
	return nil
}

// Create writes the replicated fields of state; the user name is left to the account
func (r *Replica) Create(ctx context.Context, id models.Identity, state models.ProgressState) error {
	doc := progress.Normalize(state)
	doc.UserName = ""
	if err := r.store.Set(ctx, id, doc); err != nil {
		return fmt.Errorf("%w: %v", progress.ErrTransientNetwork, err)
	}
	return nil
}
