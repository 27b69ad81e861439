package v201

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"evgate/models"
	"evgate/ocpp"
	"evgate/types"
)

func TestConnectorStatusTable(t *testing.T) {
	adapter := NewAdapter()
	cases := map[string]models.ConnectorStatus{
		"Available":   models.ConnectorStatusAvailable,
		"Occupied":    models.ConnectorStatusCharging,
		"Reserved":    models.ConnectorStatusReserved,
		"Unavailable": models.ConnectorStatusUnavailable,
		"Faulted":     models.ConnectorStatusFaulted,
	}
	for raw, expected := range cases {
		assert.Equal(t, expected, adapter.ConnectorStatus(raw), raw)
	}
	assert.Equal(t, models.ConnectorStatusUnavailable, adapter.ConnectorStatus("Whatever"))
}

func TestResetTypeTable(t *testing.T) {
	adapter := NewAdapter()
	assert.Equal(t, "OnIdle", adapter.ResetType("Soft"))
	assert.Equal(t, "OnIdle", adapter.ResetType("OnIdle"))
	assert.Equal(t, "Immediate", adapter.ResetType("Hard"))
	assert.Equal(t, "Immediate", adapter.ResetType("Immediate"))
	assert.Equal(t, "Immediate", adapter.ResetType(""))
}

func TestDecodeBootNotification(t *testing.T) {
	adapter := NewAdapter()
	payload := map[string]interface{}{
		"reason": "PowerUp",
		"chargingStation": map[string]interface{}{
			"vendorName":      "VendorX",
			"model":           "ModelY",
			"serialNumber":    "SN-1",
			"firmwareVersion": "2.0.0",
		},
	}
	event, err := adapter.DecodeRequest(BootNotificationFeatureName, payload)
	require.NoError(t, err)
	boot, ok := event.(*ocpp.BootEvent)
	require.True(t, ok)
	assert.Equal(t, "VendorX", boot.Vendor)
	assert.Equal(t, "ModelY", boot.Model)
	assert.Equal(t, "SN-1", boot.SerialNumber)
}

func TestDecodeStatusNotificationUsesEvseId(t *testing.T) {
	adapter := NewAdapter()
	payload := map[string]interface{}{
		"timestamp":       "2026-03-01T10:00:00.000Z",
		"connectorStatus": "Occupied",
		"evseId":          float64(2),
		"connectorId":     float64(1),
	}
	event, err := adapter.DecodeRequest(StatusNotificationFeatureName, payload)
	require.NoError(t, err)
	status, ok := event.(*ocpp.StatusEvent)
	require.True(t, ok)
	assert.Equal(t, 2, status.ConnectorId)
	assert.Equal(t, models.ConnectorStatusCharging, status.Status)
	assert.Equal(t, "Occupied", status.RawStatus)
}

func TestDecodeTransactionEventStarted(t *testing.T) {
	adapter := NewAdapter()
	payload := map[string]interface{}{
		"eventType":     "Started",
		"timestamp":     "2026-03-01T10:00:00.000Z",
		"triggerReason": "Authorized",
		"seqNo":         float64(0),
		"transactionInfo": map[string]interface{}{
			"transactionId": "tx-100",
		},
		"evse":    map[string]interface{}{"id": float64(1)},
		"idToken": map[string]interface{}{"idToken": "EV-ABC234", "type": "ISO14443"},
		"meterValue": []interface{}{
			map[string]interface{}{
				"timestamp": "2026-03-01T10:00:00.000Z",
				"sampledValue": []interface{}{
					map[string]interface{}{"value": float64(1500)},
				},
			},
		},
	}
	event, err := adapter.DecodeRequest(TransactionEventFeatureName, payload)
	require.NoError(t, err)
	start, ok := event.(*ocpp.StartEvent)
	require.True(t, ok)
	assert.Equal(t, "tx-100", start.StationTxId)
	assert.Equal(t, 1, start.ConnectorId)
	assert.Equal(t, "EV-ABC234", start.IdTag)
	assert.Equal(t, int64(1500), start.MeterStart)
}

func TestDecodeTransactionEventUpdated(t *testing.T) {
	adapter := NewAdapter()
	payload := map[string]interface{}{
		"eventType":     "Updated",
		"timestamp":     "2026-03-01T10:30:00.000Z",
		"triggerReason": "MeterValuePeriodic",
		"seqNo":         float64(1),
		"transactionInfo": map[string]interface{}{
			"transactionId": "tx-100",
		},
		"evse": map[string]interface{}{"id": float64(1)},
		"meterValue": []interface{}{
			map[string]interface{}{
				"timestamp": "2026-03-01T10:30:00.000Z",
				"sampledValue": []interface{}{
					map[string]interface{}{"value": float64(5000)},
					map[string]interface{}{"value": float64(229.8), "measurand": "Voltage"},
				},
			},
		},
	}
	event, err := adapter.DecodeRequest(TransactionEventFeatureName, payload)
	require.NoError(t, err)
	sample, ok := event.(*ocpp.SampleEvent)
	require.True(t, ok)
	assert.Equal(t, "tx-100", sample.StationTxId)
	require.Len(t, sample.Readings, 1)
	assert.Equal(t, int64(5000), sample.Readings[0].ValueWh)
}

func TestDecodeTransactionEventEnded(t *testing.T) {
	adapter := NewAdapter()
	payload := map[string]interface{}{
		"eventType":     "Ended",
		"timestamp":     "2026-03-01T11:00:00.000Z",
		"triggerReason": "EVDeparted",
		"seqNo":         float64(2),
		"transactionInfo": map[string]interface{}{
			"transactionId": "tx-100",
			"stoppedReason": "EVDisconnected",
		},
		"meterValue": []interface{}{
			map[string]interface{}{
				"timestamp": "2026-03-01T11:00:00.000Z",
				"sampledValue": []interface{}{
					map[string]interface{}{"value": float64(16500)},
				},
			},
		},
	}
	event, err := adapter.DecodeRequest(TransactionEventFeatureName, payload)
	require.NoError(t, err)
	stop, ok := event.(*ocpp.StopEvent)
	require.True(t, ok)
	assert.Equal(t, "tx-100", stop.StationTxId)
	assert.Equal(t, int64(16500), stop.MeterStop)
	assert.Equal(t, "EVDisconnected", stop.Reason)
}

func TestDecodeTransactionEventWithoutIdFails(t *testing.T) {
	adapter := NewAdapter()
	payload := map[string]interface{}{
		"eventType":       "Started",
		"transactionInfo": map[string]interface{}{},
	}
	_, err := adapter.DecodeRequest(TransactionEventFeatureName, payload)
	require.Error(t, err)
}

func TestDecodeHousekeepingActionsAcknowledged(t *testing.T) {
	adapter := NewAdapter()
	for _, action := range []string{NotifyReportFeatureName, NotifyEventFeatureName, LogStatusNotificationFeatureName, FirmwareStatusNotificationFeatureName, SecurityEventNotificationFeatureName} {
		event, err := adapter.DecodeRequest(action, map[string]interface{}{})
		require.NoError(t, err)
		ack, ok := event.(*ocpp.AckEvent)
		require.True(t, ok, action)
		assert.Equal(t, action, ack.Action)
	}
}

func TestEncodeReplyKeepsNoCredit(t *testing.T) {
	adapter := NewAdapter()
	reply := &ocpp.Reply{Status: types.AuthorizationStatusNoCredit}
	payload := adapter.EncodeReply(&ocpp.AuthorizeEvent{}, reply)
	response, ok := payload.(*AuthorizeResponse)
	require.True(t, ok)
	assert.Equal(t, types.AuthorizationStatusNoCredit, response.IdTokenInfo.Status)
}

func TestEncodeCommands(t *testing.T) {
	adapter := NewAdapter()

	action, payload, err := adapter.EncodeCommand(&ocpp.RemoteStartCommand{ConnectorId: 1, IdTag: "EV-ABC234"})
	require.NoError(t, err)
	assert.Equal(t, RequestStartTransactionFeatureName, action)
	start, ok := payload.(*RequestStartTransactionRequest)
	require.True(t, ok)
	assert.Equal(t, "EV-ABC234", start.IdToken.IdToken)
	require.NotNil(t, start.EvseId)
	assert.Equal(t, 1, *start.EvseId)

	action, payload, err = adapter.EncodeCommand(&ocpp.RemoteStopCommand{TransactionId: "tx-100"})
	require.NoError(t, err)
	assert.Equal(t, RequestStopTransactionFeatureName, action)
	stop, ok := payload.(*RequestStopTransactionRequest)
	require.True(t, ok)
	assert.Equal(t, "tx-100", stop.TransactionId)

	action, payload, err = adapter.EncodeCommand(&ocpp.ResetCommand{Type: "Soft"})
	require.NoError(t, err)
	assert.Equal(t, ResetFeatureName, action)
	reset, ok := payload.(*ResetRequest)
	require.True(t, ok)
	assert.Equal(t, ResetTypeOnIdle, reset.Type)
}
