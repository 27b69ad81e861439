package server

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCorrelationsResolve(t *testing.T) {
	correlations := NewCorrelations(5 * time.Second)
	defer correlations.Close()

	id, outcome := correlations.Issue("st-1")
	require.NotEmpty(t, id)

	ok := correlations.Resolve(id, CallOutcome{Payload: map[string]interface{}{"status": "Accepted"}})
	require.True(t, ok)

	result := <-outcome
	require.NoError(t, result.Err)
	payload, ok := result.Payload.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Accepted", payload["status"])
	assert.Equal(t, 0, correlations.PendingCount())
}

func TestCorrelationsResolveUnknownId(t *testing.T) {
	correlations := NewCorrelations(5 * time.Second)
	defer correlations.Close()

	assert.False(t, correlations.Resolve("no-such-id", CallOutcome{}))
}

func TestCorrelationsResolveTwice(t *testing.T) {
	correlations := NewCorrelations(5 * time.Second)
	defer correlations.Close()

	id, outcome := correlations.Issue("st-1")
	require.True(t, correlations.Resolve(id, CallOutcome{}))
	assert.False(t, correlations.Resolve(id, CallOutcome{}))
	<-outcome
}

func TestCorrelationsTimeoutSweep(t *testing.T) {
	correlations := NewCorrelations(10 * time.Millisecond)
	defer correlations.Close()

	_, outcome := correlations.Issue("st-1")
	select {
	case result := <-outcome:
		assert.Equal(t, ErrCommandTimeout, result.Err)
	case <-time.After(3 * time.Second):
		t.Fatal("expected the sweep to time the call out")
	}
	assert.Equal(t, 0, correlations.PendingCount())
}

func TestCorrelationsFailStation(t *testing.T) {
	correlations := NewCorrelations(5 * time.Second)
	defer correlations.Close()

	_, first := correlations.Issue("st-1")
	_, second := correlations.Issue("st-1")
	otherId, other := correlations.Issue("st-2")

	correlations.FailStation("st-1", ErrStationOffline)

	result := <-first
	assert.Equal(t, ErrStationOffline, result.Err)
	result = <-second
	assert.Equal(t, ErrStationOffline, result.Err)

	// the other station's call is untouched
	assert.Equal(t, 1, correlations.PendingCount())
	require.True(t, correlations.Resolve(otherId, CallOutcome{}))
	<-other
}
