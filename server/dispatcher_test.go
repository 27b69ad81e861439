package server

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"evgate/internal"
	"evgate/internal/config"
	"evgate/ocpp"
)

func newTestDispatcher(t *testing.T) (*Dispatcher, *SystemHandler) {
	t.Helper()
	logger := internal.NewLogger(time.UTC)
	server := NewServer(&config.Config{}, logger)
	correlations := NewCorrelations(time.Second)
	t.Cleanup(correlations.Close)
	handler := newTestHandler()
	return NewDispatcher(server, correlations, handler, logger), handler
}

func TestRemoteStopUnknownTransaction(t *testing.T) {
	dispatcher, _ := newTestDispatcher(t)

	err := dispatcher.RemoteStop("st-1", "no-such-tx")
	assert.Equal(t, ErrUnknownTransaction, err)
}

func TestRemoteStopKnownTransactionOfflineStation(t *testing.T) {
	dispatcher, handler := newTestDispatcher(t)
	_, err := handler.HandleEvent("st-1", &ocpp.StartEvent{
		ConnectorId: 1,
		IdTag:       "EV-ABC234",
		StationTxId: "tx-1",
	})
	require.NoError(t, err)

	// the id resolves, so the failure is the station's, not the lookup's
	err = dispatcher.RemoteStop("st-1", "tx-1")
	assert.Equal(t, ErrStationOffline, err)
}
