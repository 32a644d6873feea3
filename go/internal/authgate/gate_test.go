package authgate

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcdev12/reckoning/go/internal/models"
	"github.com/mcdev12/reckoning/go/internal/progress"
)

func TestStatic(t *testing.T) {
	gate := NewStatic("")

	_, ok := gate.CurrentIdentity()
	assert.False(t, ok)

	gate.SignIn("uid-1")
	id, ok := gate.CurrentIdentity()
	require.True(t, ok)
	assert.Equal(t, models.Identity("uid-1"), id)

	gate.SignOut()
	_, ok = gate.CurrentIdentity()
	assert.False(t, ok)
}

func TestIdentityContext(t *testing.T) {
	_, ok := IdentityFromContext(context.Background())
	assert.False(t, ok)

	ctx := WithIdentity(context.Background(), "uid-1")
	id, ok := IdentityFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, models.Identity("uid-1"), id)
}

func TestVerifier_IssueAndVerify(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
	v := NewVerifier([]byte("0123456789abcdef0123456789abcdef"), "reckoning", clock)

	token, err := v.Issue("uid-1", time.Hour)
	require.NoError(t, err)

	id, err := v.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, models.Identity("uid-1"), id)

	clock.Advance(2 * time.Hour)
	_, err = v.Verify(token)
	assert.ErrorIs(t, err, progress.ErrUnauthenticated)
}

func TestVerifier_Rejects(t *testing.T) {
	clock := clockwork.NewFakeClock()
	v := NewVerifier([]byte("0123456789abcdef0123456789abcdef"), "reckoning", clock)
	other := NewVerifier([]byte("ffffffffffffffffffffffffffffffff"), "reckoning", clock)
	wrongIssuer := NewVerifier([]byte("0123456789abcdef0123456789abcdef"), "someone-else", clock)

	foreign, err := other.Issue("uid-1", time.Hour)
	require.NoError(t, err)
	misissued, err := wrongIssuer.Issue("uid-1", time.Hour)
	require.NoError(t, err)

	for name, token := range map[string]string{
		"empty":        "",
		"garbage":      "not-a-token",
		"wrong key":    foreign,
		"wrong issuer": misissued,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := v.Verify(token)
			assert.ErrorIs(t, err, progress.ErrUnauthenticated)
		})
	}
}

func TestTokenGate(t *testing.T) {
	clock := clockwork.NewFakeClock()
	v := NewVerifier([]byte("0123456789abcdef0123456789abcdef"), "reckoning", clock)
	gate := NewTokenGate(clock)

	_, ok := gate.CurrentIdentity()
	assert.False(t, ok, "new gate is signed out")

	token, err := v.Issue("uid-7", 30*time.Minute)
	require.NoError(t, err)
	require.NoError(t, gate.SetToken(token))

	id, ok := gate.CurrentIdentity()
	require.True(t, ok)
	assert.Equal(t, models.Identity("uid-7"), id)

	got, ok := gate.Token()
	require.True(t, ok)
	assert.Equal(t, token, got)

	clock.Advance(31 * time.Minute)
	_, ok = gate.CurrentIdentity()
	assert.False(t, ok, "expired token signs the gate out")

	gate.Clear()
	_, ok = gate.Token()
	assert.False(t, ok)
}

func TestTokenGate_RejectsGarbage(t *testing.T) {
	gate := NewTokenGate(clockwork.NewFakeClock())
	assert.Error(t, gate.SetToken("nope"))

	_, ok := gate.CurrentIdentity()
	assert.False(t, ok)
}
