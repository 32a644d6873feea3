package autosync

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcdev12/reckoning/go/internal/progress"
)

func TestHealthChecker(t *testing.T) {
	remote := state(1, 0)
	h := newHarness(t, state(1, 0), &remote)
	checker := NewHealthChecker(h.o, h.clock, time.Minute)

	status := checker.Check()
	assert.True(t, status.Healthy, "no cycles yet")

	h.sync(t)
	status = checker.Check()
	assert.True(t, status.Healthy)
	assert.Equal(t, OutcomeAlreadyInSync, status.LastOutcome)

	h.remote.fetchErr = fmt.Errorf("%w: offline", progress.ErrTransientNetwork)
	h.clock.Advance(2 * time.Minute)
	h.sync(t)

	status = checker.Check()
	assert.False(t, status.Healthy)
	assert.Len(t, status.Errors, 2)

	rec := httptest.NewRecorder()
	checker.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, false, body["healthy"])
	assert.Equal(t, "fetch_failed", body["last_outcome"])
}

func TestHealthChecker_SignedOutIsHealthy(t *testing.T) {
	h := newHarness(t, state(0, 0), nil)
	h.auth.SignOut()
	checker := NewHealthChecker(h.o, h.clock, time.Minute)

	h.sync(t)
	h.clock.Advance(time.Hour)

	assert.True(t, checker.Check().Healthy)
}
