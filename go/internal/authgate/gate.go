package authgate

import (
	"context"
	"sync"

	"github.com/mcdev12/reckoning/go/internal/models"
)

// Gate reports whether an authenticated identity is currently available.
// The sync engine only gates on presence; it never authenticates itself.
type Gate interface {
	CurrentIdentity() (models.Identity, bool)
}

// Static is a Gate holding an identity set by the caller
type Static struct {
	mu       sync.RWMutex
	identity models.Identity
}

// NewStatic creates a gate signed in as identity; an empty identity means signed out
func NewStatic(identity models.Identity) *Static {
	return &Static{identity: identity}
}

// SignIn sets the current identity
func (s *Static) SignIn(identity models.Identity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.identity = identity
}

// SignOut clears the current identity
func (s *Static) SignOut() {
	s.SignIn("")
}

func (s *Static) CurrentIdentity() (models.Identity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.identity, s.identity != ""
}

type identityKey struct{}

// WithIdentity returns a context carrying an authenticated identity
func WithIdentity(ctx context.Context, identity models.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, identity)
}

// IdentityFromContext returns the identity stored by WithIdentity
func IdentityFromContext(ctx context.Context) (models.Identity, bool) {
	identity, ok := ctx.Value(identityKey{}).(models.Identity)
	return identity, ok && identity != ""
}
