package v201

import (
	"encoding/json"
	"reflect"
	"sync/atomic"
	"time"

	"evgate/models"
	"evgate/ocpp"
	"evgate/types"
	"evgate/utility"
)

// Adapter implements the modern OCPP 2.0.1 dialect. Connections negotiated
// as ocpp2.0 run on the same adapter.
type Adapter struct {
	remoteStartSeq int32
}

func NewAdapter() *Adapter {
	return &Adapter{}
}

func (a *Adapter) Proto() string {
	return types.SubProtocol201
}

var statusTable = map[ConnectorStatusEnum]models.ConnectorStatus{
	ConnectorStatusAvailable:   models.ConnectorStatusAvailable,
	ConnectorStatusOccupied:    models.ConnectorStatusCharging,
	ConnectorStatusReserved:    models.ConnectorStatusReserved,
	ConnectorStatusUnavailable: models.ConnectorStatusUnavailable,
	ConnectorStatusFaulted:     models.ConnectorStatusFaulted,
}

func (a *Adapter) ConnectorStatus(status string) models.ConnectorStatus {
	if mapped, ok := statusTable[ConnectorStatusEnum(status)]; ok {
		return mapped
	}
	return models.ConnectorStatusUnavailable
}

// resetTable keeps the mapping total: Soft and OnIdle defer the reboot to
// transaction end, every other value reboots immediately.
var resetTable = map[string]ResetType{
	"Soft":   ResetTypeOnIdle,
	"OnIdle": ResetTypeOnIdle,
}

func (a *Adapter) ResetType(requested string) string {
	if mapped, ok := resetTable[requested]; ok {
		return string(mapped)
	}
	return string(ResetTypeImmediate)
}

func (a *Adapter) DecodeRequest(action string, payload interface{}) (ocpp.Event, error) {
	requestType, err := getRequestType(action)
	if err != nil {
		return nil, err
	}
	request, err := parseRawJsonRequest(payload, requestType)
	if err != nil {
		return nil, err
	}
	switch req := request.(type) {
	case *BootNotificationRequest:
		return &ocpp.BootEvent{
			Vendor:          req.ChargingStation.VendorName,
			Model:           req.ChargingStation.Model,
			SerialNumber:    req.ChargingStation.SerialNumber,
			FirmwareVersion: req.ChargingStation.FirmwareVersion,
		}, nil
	case *HeartbeatRequest:
		return &ocpp.HeartbeatEvent{}, nil
	case *AuthorizeRequest:
		return &ocpp.AuthorizeEvent{IdTag: req.IdToken.IdToken}, nil
	case *StatusNotificationRequest:
		return &ocpp.StatusEvent{
			ConnectorId: req.EvseId,
			Status:      a.ConnectorStatus(string(req.ConnectorStatus)),
			RawStatus:   string(req.ConnectorStatus),
		}, nil
	case *TransactionEventRequest:
		return a.decodeTransactionEvent(req)
	case *MeterValuesRequest:
		return &ocpp.SampleEvent{
			ConnectorId: req.EvseId,
			Readings:    energyReadings(req.MeterValue),
		}, nil
	}
	return &ocpp.AckEvent{Action: action}, nil
}

func (a *Adapter) decodeTransactionEvent(req *TransactionEventRequest) (ocpp.Event, error) {
	txId := req.TransactionInfo.TransactionId
	if txId == "" {
		return nil, utility.Err("transaction event without transaction id")
	}
	evseId := 0
	if req.Evse != nil {
		evseId = req.Evse.Id
	}
	var ts time.Time
	if req.Timestamp != nil {
		ts = req.Timestamp.Time
	}
	idTag := ""
	if req.IdToken != nil {
		idTag = req.IdToken.IdToken
	}
	readings := energyReadings(req.MeterValue)

	switch req.EventType {
	case TransactionEventStarted:
		event := &ocpp.StartEvent{
			ConnectorId: evseId,
			IdTag:       idTag,
			Timestamp:   ts,
			StationTxId: txId,
		}
		if len(readings) > 0 {
			event.MeterStart = readings[0].ValueWh
		}
		return event, nil
	case TransactionEventUpdated:
		return &ocpp.SampleEvent{
			ConnectorId: evseId,
			StationTxId: txId,
			Readings:    readings,
		}, nil
	case TransactionEventEnded:
		event := &ocpp.StopEvent{
			StationTxId: txId,
			IdTag:       idTag,
			Timestamp:   ts,
			Reason:      req.TransactionInfo.StoppedReason,
		}
		if len(readings) > 0 {
			event.MeterStop = readings[len(readings)-1].ValueWh
		}
		return event, nil
	}
	return nil, utility.Err("unknown transaction event type: " + string(req.EventType))
}

func (a *Adapter) EncodeReply(event ocpp.Event, reply *ocpp.Reply) interface{} {
	switch evt := event.(type) {
	case *ocpp.BootEvent:
		return &BootNotificationResponse{
			CurrentTime: reply.CurrentTime,
			Interval:    reply.Interval,
			Status:      reply.Registration,
		}
	case *ocpp.HeartbeatEvent:
		return &HeartbeatResponse{CurrentTime: reply.CurrentTime}
	case *ocpp.AuthorizeEvent:
		return &AuthorizeResponse{IdTokenInfo: IdTokenInfo{Status: authStatus(reply.Status)}}
	case *ocpp.StartEvent:
		return &TransactionEventResponse{IdTokenInfo: &IdTokenInfo{Status: authStatus(reply.Status)}}
	case *ocpp.StopEvent:
		return &TransactionEventResponse{IdTokenInfo: &IdTokenInfo{Status: authStatus(reply.Status)}}
	case *ocpp.SampleEvent:
		if evt.StationTxId != "" {
			return &TransactionEventResponse{}
		}
		return &MeterValuesResponse{}
	case *ocpp.StatusEvent:
		return &StatusNotificationResponse{}
	case *ocpp.AckEvent:
		if evt.Action == DataTransferFeatureName {
			return &DataTransferResponse{Status: DataTransferStatusAccepted}
		}
		return struct{}{}
	}
	return struct{}{}
}

func (a *Adapter) EncodeCommand(command ocpp.Command) (string, interface{}, error) {
	switch cmd := command.(type) {
	case *ocpp.RemoteStartCommand:
		request := &RequestStartTransactionRequest{
			RemoteStartId: int(atomic.AddInt32(&a.remoteStartSeq, 1)),
			IdToken:       IdToken{IdToken: cmd.IdTag, Type: IdTokenTypeCentral},
		}
		if cmd.ConnectorId > 0 {
			evseId := cmd.ConnectorId
			request.EvseId = &evseId
		}
		return RequestStartTransactionFeatureName, request, nil
	case *ocpp.RemoteStopCommand:
		return RequestStopTransactionFeatureName, &RequestStopTransactionRequest{TransactionId: cmd.TransactionId}, nil
	case *ocpp.ReserveNowCommand:
		request := &ReserveNowRequest{
			Id:             cmd.ReservationId,
			ExpiryDateTime: types.NewDateTime(cmd.Expiry),
			IdToken:        IdToken{IdToken: cmd.IdTag, Type: IdTokenTypeCentral},
		}
		if cmd.ConnectorId > 0 {
			evseId := cmd.ConnectorId
			request.EvseId = &evseId
		}
		return ReserveNowFeatureName, request, nil
	case *ocpp.CancelReservationCommand:
		return CancelReservationFeatureName, &CancelReservationRequest{ReservationId: cmd.ReservationId}, nil
	case *ocpp.ResetCommand:
		return ResetFeatureName, &ResetRequest{Type: ResetType(a.ResetType(cmd.Type))}, nil
	case *ocpp.UnlockConnectorCommand:
		return UnlockConnectorFeatureName, &UnlockConnectorRequest{EvseId: cmd.ConnectorId, ConnectorId: 1}, nil
	}
	return "", nil, utility.Err("command not supported by ocpp2.0.1: " + command.CommandType())
}

// authStatus passes the neutral status through; 2.0.1 carries the full
// vocabulary including NoCredit.
func authStatus(status types.AuthorizationStatus) types.AuthorizationStatus {
	if status == "" {
		return types.AuthorizationStatusAccepted
	}
	return status
}

func energyReadings(meterValues []MeterValue) []ocpp.MeterReading {
	var readings []ocpp.MeterReading
	for _, meterValue := range meterValues {
		var ts time.Time
		if meterValue.Timestamp != nil {
			ts = meterValue.Timestamp.Time
		}
		for _, sampled := range meterValue.SampledValue {
			if sampled.Measurand != "" && sampled.Measurand != types.MeasurandEnergyActiveImportRegister {
				continue
			}
			readings = append(readings, ocpp.MeterReading{
				Time:      ts,
				ValueWh:   int64(sampled.Value),
				Measurand: types.MeasurandEnergyActiveImportRegister,
				Context:   sampled.Context,
			})
		}
	}
	return readings
}

func getRequestType(action string) (reflect.Type, error) {
	switch action {
	case BootNotificationFeatureName:
		return reflect.TypeOf(BootNotificationRequest{}), nil
	case AuthorizeFeatureName:
		return reflect.TypeOf(AuthorizeRequest{}), nil
	case HeartbeatFeatureName:
		return reflect.TypeOf(HeartbeatRequest{}), nil
	case TransactionEventFeatureName:
		return reflect.TypeOf(TransactionEventRequest{}), nil
	case MeterValuesFeatureName:
		return reflect.TypeOf(MeterValuesRequest{}), nil
	case StatusNotificationFeatureName:
		return reflect.TypeOf(StatusNotificationRequest{}), nil
	case DataTransferFeatureName:
		return reflect.TypeOf(DataTransferRequest{}), nil
	case NotifyReportFeatureName, NotifyEventFeatureName, LogStatusNotificationFeatureName,
		FirmwareStatusNotificationFeatureName, SecurityEventNotificationFeatureName:
		return reflect.TypeOf(struct{}{}), nil
	}
	return nil, &ocpp.UnknownActionError{Action: action}
}

func parseRawJsonRequest(raw interface{}, requestType reflect.Type) (interface{}, error) {
	if raw == nil {
		raw = &struct{}{}
	}
	bytes, err := json.Marshal(raw)
	if err != nil {
		return nil, err
	}
	request := reflect.New(requestType).Interface()
	err = json.Unmarshal(bytes, &request)
	if err != nil {
		return nil, err
	}
	return request, nil
}
