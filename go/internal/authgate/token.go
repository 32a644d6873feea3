package authgate

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/reckoning/go/internal/models"
	"github.com/mcdev12/reckoning/go/internal/progress"
)

// TokenGate is a client-side Gate backed by a bearer JWT.
// The token is not verified here; the server does that on every call.
type TokenGate struct {
	clock clockwork.Clock

	mu       sync.RWMutex
	token    string
	identity models.Identity
	expires  time.Time
}

// NewTokenGate creates a signed-out token gate
func NewTokenGate(clock clockwork.Clock) *TokenGate {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &TokenGate{clock: clock}
}

// SetToken signs in with a bearer token whose subject is the player identity
func (g *TokenGate) SetToken(token string) error {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return fmt.Errorf("failed to parse token: %w", err)
	}
	if claims.Subject == "" {
		return errors.New("token has no subject")
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.token = token
	g.identity = models.Identity(claims.Subject)
	g.expires = time.Time{}
	if claims.ExpiresAt != nil {
		g.expires = claims.ExpiresAt.Time
	}

	log.Debug().
		Str("identity", claims.Subject).
		Time("expires", g.expires).
		Msg("token gate signed in")
	return nil
}

// Clear signs out
func (g *TokenGate) Clear() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.token = ""
	g.identity = ""
	g.expires = time.Time{}
}

// Token returns the bearer token while it is present and unexpired
func (g *TokenGate) Token() (string, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if !g.validLocked() {
		return "", false
	}
	return g.token, true
}

func (g *TokenGate) CurrentIdentity() (models.Identity, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if !g.validLocked() {
		return "", false
	}
	return g.identity, true
}

func (g *TokenGate) validLocked() bool {
	if g.token == "" {
		return false
	}
	return g.expires.IsZero() || g.clock.Now().Before(g.expires)
}

// Verifier issues and validates HS256 tokens on the server
type Verifier struct {
	key    []byte
	issuer string
	clock  clockwork.Clock
}

// NewVerifier creates a verifier for tokens signed with key
func NewVerifier(key []byte, issuer string, clock clockwork.Clock) *Verifier {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Verifier{key: key, issuer: issuer, clock: clock}
}

// Issue signs a token for identity valid for ttl
func (v *Verifier) Issue(identity models.Identity, ttl time.Duration) (string, error) {
	now := v.clock.Now()
	claims := jwt.RegisteredClaims{
		Subject:   identity.String(),
		Issuer:    v.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.key)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify validates a token and returns its identity.
// Every failure wraps progress.ErrUnauthenticated.
func (v *Verifier) Verify(token string) (models.Identity, error) {
	if token == "" {
		return "", fmt.Errorf("%w: missing token", progress.ErrUnauthenticated)
	}

	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		return v.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(v.issuer),
		jwt.WithTimeFunc(v.clock.Now),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", progress.ErrUnauthenticated, err)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("%w: token has no subject", progress.ErrUnauthenticated)
	}
	return models.Identity(claims.Subject), nil
}
