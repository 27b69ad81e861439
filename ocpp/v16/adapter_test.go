package v16

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
		"Available":     models.ConnectorStatusAvailable,
		"Preparing":     models.ConnectorStatusAvailable,
		"Charging":      models.ConnectorStatusCharging,
		"SuspendedEV":   models.ConnectorStatusCharging,
		"SuspendedEVSE": models.ConnectorStatusCharging,
		"Finishing":     models.ConnectorStatusCharging,
		"Reserved":      models.ConnectorStatusReserved,
		"Unavailable":   models.ConnectorStatusUnavailable,
		"Faulted":       models.ConnectorStatusFaulted,
	}
	for raw, expected := range cases {
		assert.Equal(t, expected, adapter.ConnectorStatus(raw), raw)
	}
	// mapping stays total for vendor-specific values
	assert.Equal(t, models.ConnectorStatusUnavailable, adapter.ConnectorStatus("SomethingOdd"))
}

func TestResetTypeTable(t *testing.T) {
	adapter := NewAdapter()
	assert.Equal(t, "Hard", adapter.ResetType("Hard"))
	assert.Equal(t, "Hard", adapter.ResetType("Immediate"))
	assert.Equal(t, "Soft", adapter.ResetType("Soft"))
	assert.Equal(t, "Soft", adapter.ResetType("OnIdle"))
	assert.Equal(t, "Soft", adapter.ResetType(""))
}

func TestDecodeBootNotification(t *testing.T) {
	adapter := NewAdapter()
	payload := map[string]interface{}{
		"chargePointVendor":       "VendorX",
		"chargePointModel":        "ModelY",
		"chargePointSerialNumber": "SN-1",
		"firmwareVersion":         "1.2.3",
	}
	event, err := adapter.DecodeRequest(BootNotificationFeatureName, payload)
	require.NoError(t, err)
	boot, ok := event.(*ocpp.BootEvent)
	require.True(t, ok)
	assert.Equal(t, "VendorX", boot.Vendor)
	assert.Equal(t, "ModelY", boot.Model)
	assert.Equal(t, "SN-1", boot.SerialNumber)
	assert.Equal(t, "1.2.3", boot.FirmwareVersion)
}

func TestDecodeStartTransaction(t *testing.T) {
	adapter := NewAdapter()
	payload := map[string]interface{}{
		"connectorId": float64(1),
		"idTag":       "EV-ABC234",
		"meterStart":  float64(1500),
		"timestamp":   "2026-03-01T10:00:00.000Z",
	}
	event, err := adapter.DecodeRequest(StartTransactionFeatureName, payload)
	require.NoError(t, err)
	start, ok := event.(*ocpp.StartEvent)
	require.True(t, ok)
	assert.Equal(t, 1, start.ConnectorId)
	assert.Equal(t, "EV-ABC234", start.IdTag)
	assert.Equal(t, int64(1500), start.MeterStart)
	assert.Equal(t, "", start.StationTxId)
	assert.False(t, start.Timestamp.IsZero())
}

func TestDecodeStopTransactionWithTransactionData(t *testing.T) {
	adapter := NewAdapter()
	payload := map[string]interface{}{
		"transactionId": float64(7),
		"meterStop":     float64(16000),
		"timestamp":     "2026-03-01T11:00:00.000Z",
		"reason":        "Local",
		"transactionData": []interface{}{
			map[string]interface{}{
				"timestamp": "2026-03-01T10:00:00.000Z",
				"sampledValue": []interface{}{
					map[string]interface{}{"value": "1000", "context": "Transaction.Begin"},
				},
			},
			map[string]interface{}{
				"timestamp": "2026-03-01T11:00:00.000Z",
				"sampledValue": []interface{}{
					map[string]interface{}{"value": "15500", "context": "Transaction.End"},
				},
			},
		},
	}
	event, err := adapter.DecodeRequest(StopTransactionFeatureName, payload)
	require.NoError(t, err)
	stop, ok := event.(*ocpp.StopEvent)
	require.True(t, ok)
	assert.Equal(t, 7, stop.OcppId)
	assert.Equal(t, int64(16000), stop.MeterStop)
	assert.Equal(t, "Local", stop.Reason)
	require.NotNil(t, stop.BeginWh)
	assert.Equal(t, int64(1000), *stop.BeginWh)
	require.NotNil(t, stop.EndWh)
	assert.Equal(t, int64(15500), *stop.EndWh)
}

func TestDecodeMeterValuesFiltersMeasurand(t *testing.T) {
	adapter := NewAdapter()
	payload := map[string]interface{}{
		"connectorId":   float64(1),
		"transactionId": float64(7),
		"meterValue": []interface{}{
			map[string]interface{}{
				"timestamp": "2026-03-01T10:30:00.000Z",
				"sampledValue": []interface{}{
					map[string]interface{}{"value": "5000"},
					map[string]interface{}{"value": "230.1", "measurand": "Voltage"},
					map[string]interface{}{"value": "10000", "measurand": "Energy.Active.Import.Register"},
				},
			},
		},
	}
	event, err := adapter.DecodeRequest(MeterValuesFeatureName, payload)
	require.NoError(t, err)
	sample, ok := event.(*ocpp.SampleEvent)
	require.True(t, ok)
	assert.Equal(t, 7, sample.OcppId)
	require.Len(t, sample.Readings, 2)
	assert.Equal(t, int64(5000), sample.Readings[0].ValueWh)
	assert.Equal(t, int64(10000), sample.Readings[1].ValueWh)
}

func TestDecodeUnknownAction(t *testing.T) {
	adapter := NewAdapter()
	_, err := adapter.DecodeRequest("SignCertificate", map[string]interface{}{})
	require.Error(t, err)
	_, ok := err.(*ocpp.UnknownActionError)
	assert.True(t, ok)
}

func TestEncodeReplyNoCreditBecomesBlocked(t *testing.T) {
	adapter := NewAdapter()
	reply := &ocpp.Reply{Status: types.AuthorizationStatusNoCredit}
	payload := adapter.EncodeReply(&ocpp.AuthorizeEvent{IdTag: "EV-ABC234"}, reply)
	response, ok := payload.(*AuthorizeResponse)
	require.True(t, ok)
	assert.Equal(t, types.AuthorizationStatusBlocked, response.IdTagInfo.Status)
}

func TestEncodeReplyStartTransaction(t *testing.T) {
	adapter := NewAdapter()
	reply := &ocpp.Reply{Status: types.AuthorizationStatusAccepted, OcppId: 42}
	payload := adapter.EncodeReply(&ocpp.StartEvent{}, reply)
	response, ok := payload.(*StartTransactionResponse)
	require.True(t, ok)
	assert.Equal(t, 42, response.TransactionId)
	assert.Equal(t, types.AuthorizationStatusAccepted, response.IdTagInfo.Status)
}

func TestEncodeCommands(t *testing.T) {
	adapter := NewAdapter()

	action, payload, err := adapter.EncodeCommand(&ocpp.RemoteStartCommand{ConnectorId: 2, IdTag: "EV-ABC234"})
	require.NoError(t, err)
	assert.Equal(t, RemoteStartTransactionFeatureName, action)
	start, ok := payload.(*RemoteStartTransactionRequest)
	require.True(t, ok)
	require.NotNil(t, start.ConnectorId)
	assert.Equal(t, 2, *start.ConnectorId)

	action, payload, err = adapter.EncodeCommand(&ocpp.RemoteStopCommand{OcppId: 42})
	require.NoError(t, err)
	assert.Equal(t, RemoteStopTransactionFeatureName, action)
	stop, ok := payload.(*RemoteStopTransactionRequest)
	require.True(t, ok)
	assert.Equal(t, 42, stop.TransactionId)

	action, payload, err = adapter.EncodeCommand(&ocpp.ResetCommand{Type: "Immediate"})
	require.NoError(t, err)
	assert.Equal(t, ResetFeatureName, action)
	reset, ok := payload.(*ResetRequest)
	require.True(t, ok)
	assert.Equal(t, ResetTypeHard, reset.Type)
}
