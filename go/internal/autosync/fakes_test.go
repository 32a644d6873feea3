package autosync

import (
	"context"
	"sync"
	"testing"

	"go.uber.org/goleak"

	"github.com/mcdev12/reckoning/go/internal/models"
	"github.com/mcdev12/reckoning/go/internal/progress"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeRemote is a single-document remote replica with injectable failures
type fakeRemote struct {
	mu        sync.Mutex
	doc       *models.ProgressState
	fetchErr  error
	updateErr error
	createErr error
	fetches   int
	updates   int
	creates   int

	// when set, Fetch announces itself on started and waits for release to close
	started chan struct{}
	release chan struct{}
}

func newFakeRemote(doc *models.ProgressState) *fakeRemote {
	if doc != nil {
		d := doc.Clone()
		doc = &d
	}
	return &fakeRemote{doc: doc}
}

func (f *fakeRemote) Fetch(ctx context.Context, id models.Identity) (*models.ProgressState, error) {
	f.mu.Lock()
	f.fetches++
	started, release := f.started, f.release
	f.mu.Unlock()

	if started != nil {
		started <- struct{}{}
	}
	if release != nil {
		select {
		case <-release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	if f.doc == nil {
		return nil, nil
	}
	d := f.doc.Clone()
	d.Identity = id
	return &d, nil
}

func (f *fakeRemote) Update(_ context.Context, _ models.Identity, patch models.ProgressPatch) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates++
	if f.updateErr != nil {
		return f.updateErr
	}
	if f.doc == nil {
		return progress.ErrRecordMissing
	}
	d := patch.Apply(*f.doc)
	f.doc = &d
	return nil
}

func (f *fakeRemote) Create(_ context.Context, _ models.Identity, state models.ProgressState) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates++
	if f.createErr != nil {
		return f.createErr
	}
	d := state.Clone()
	d.Identity = ""
	f.doc = &d
	return nil
}

func (f *fakeRemote) snapshot() *models.ProgressState {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.doc == nil {
		return nil
	}
	d := f.doc.Clone()
	return &d
}

func (f *fakeRemote) counts() (fetches, updates, creates int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetches, f.updates, f.creates
}
