package v16

import (
	"encoding/json"
	"reflect"
	"time"

	"evgate/models"
	"evgate/ocpp"
	"evgate/types"
	"evgate/utility"
)

// Adapter implements the legacy OCPP 1.6J dialect.
type Adapter struct {
}

func NewAdapter() *Adapter {
	return &Adapter{}
}

func (a *Adapter) Proto() string {
	return types.SubProtocol16
}

// statusTable maps the 1.6 connector status vocabulary to the internal
// enum. Unmapped values resolve to Unavailable.
var statusTable = map[string]models.ConnectorStatus{
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

func (a *Adapter) ConnectorStatus(status string) models.ConnectorStatus {
	if mapped, ok := statusTable[status]; ok {
		return mapped
	}
	return models.ConnectorStatusUnavailable
}

// resetTable keeps the reset mapping total: Hard and Immediate request a
// hard reboot, every other value falls back to a soft one.
var resetTable = map[string]ResetType{
	"Hard":      ResetTypeHard,
	"Immediate": ResetTypeHard,
}

func (a *Adapter) ResetType(requested string) string {
	if mapped, ok := resetTable[requested]; ok {
		return string(mapped)
	}
	return string(ResetTypeSoft)
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
		serialNumber := req.ChargePointSerialNumber
		if serialNumber == "" {
			serialNumber = req.ChargeBoxSerialNumber
		}
		return &ocpp.BootEvent{
			Vendor:          req.ChargePointVendor,
			Model:           req.ChargePointModel,
			SerialNumber:    serialNumber,
			FirmwareVersion: req.FirmwareVersion,
		}, nil
	case *HeartbeatRequest:
		return &ocpp.HeartbeatEvent{}, nil
	case *AuthorizeRequest:
		return &ocpp.AuthorizeEvent{IdTag: req.IdTag}, nil
	case *StatusNotificationRequest:
		return &ocpp.StatusEvent{
			ConnectorId: req.ConnectorId,
			Status:      a.ConnectorStatus(string(req.Status)),
			RawStatus:   string(req.Status),
			ErrorCode:   req.ErrorCode,
			Info:        req.Info,
		}, nil
	case *StartTransactionRequest:
		event := &ocpp.StartEvent{
			ConnectorId: req.ConnectorId,
			IdTag:       req.IdTag,
			MeterStart:  req.MeterStart,
		}
		if req.Timestamp != nil {
			event.Timestamp = req.Timestamp.Time
		}
		return event, nil
	case *StopTransactionRequest:
		event := &ocpp.StopEvent{
			OcppId:    req.TransactionId,
			IdTag:     req.IdTag,
			MeterStop: req.MeterStop,
			Reason:    string(req.Reason),
		}
		if req.Timestamp != nil {
			event.Timestamp = req.Timestamp.Time
		}
		applyTransactionData(event, req.TransactionData)
		return event, nil
	case *MeterValuesRequest:
		event := &ocpp.SampleEvent{ConnectorId: req.ConnectorId}
		if req.TransactionId != nil {
			event.OcppId = *req.TransactionId
		}
		event.Readings = energyReadings(req.MeterValue)
		return event, nil
	case *DataTransferRequest:
		return &ocpp.AckEvent{Action: action}, nil
	}
	return nil, &ocpp.UnknownActionError{Action: action}
}

func (a *Adapter) EncodeReply(event ocpp.Event, reply *ocpp.Reply) interface{} {
	switch event.(type) {
	case *ocpp.BootEvent:
		return &BootNotificationResponse{
			CurrentTime: reply.CurrentTime,
			Interval:    reply.Interval,
			Status:      reply.Registration,
		}
	case *ocpp.HeartbeatEvent:
		return &HeartbeatResponse{CurrentTime: reply.CurrentTime}
	case *ocpp.AuthorizeEvent:
		return &AuthorizeResponse{IdTagInfo: types.NewIdTagInfo(authStatus(reply.Status))}
	case *ocpp.StartEvent:
		return &StartTransactionResponse{
			IdTagInfo:     types.NewIdTagInfo(authStatus(reply.Status)),
			TransactionId: reply.OcppId,
		}
	case *ocpp.StopEvent:
		return &StopTransactionResponse{IdTagInfo: types.NewIdTagInfo(authStatus(reply.Status))}
	case *ocpp.SampleEvent:
		return &MeterValuesResponse{}
	case *ocpp.StatusEvent:
		return &StatusNotificationResponse{}
	case *ocpp.AckEvent:
		return &DataTransferResponse{Status: DataTransferStatusAccepted}
	}
	return struct{}{}
}

func (a *Adapter) EncodeCommand(command ocpp.Command) (string, interface{}, error) {
	switch cmd := command.(type) {
	case *ocpp.RemoteStartCommand:
		request := &RemoteStartTransactionRequest{IdTag: cmd.IdTag}
		if cmd.ConnectorId > 0 {
			connectorId := cmd.ConnectorId
			request.ConnectorId = &connectorId
		}
		return RemoteStartTransactionFeatureName, request, nil
	case *ocpp.RemoteStopCommand:
		return RemoteStopTransactionFeatureName, &RemoteStopTransactionRequest{TransactionId: cmd.OcppId}, nil
	case *ocpp.ReserveNowCommand:
		return ReserveNowFeatureName, &ReserveNowRequest{
			ConnectorId:   cmd.ConnectorId,
			ExpiryDate:    types.NewDateTime(cmd.Expiry),
			IdTag:         cmd.IdTag,
			ReservationId: cmd.ReservationId,
		}, nil
	case *ocpp.CancelReservationCommand:
		return CancelReservationFeatureName, &CancelReservationRequest{ReservationId: cmd.ReservationId}, nil
	case *ocpp.ResetCommand:
		return ResetFeatureName, &ResetRequest{Type: ResetType(a.ResetType(cmd.Type))}, nil
	case *ocpp.UnlockConnectorCommand:
		return UnlockConnectorFeatureName, &UnlockConnectorRequest{ConnectorId: cmd.ConnectorId}, nil
	}
	return "", nil, utility.Err("command not supported by ocpp1.6: " + command.CommandType())
}

// authStatus narrows the neutral status to the 1.6 vocabulary; NoCredit has
// no 1.6 counterpart and is reported as Blocked.
func authStatus(status types.AuthorizationStatus) types.AuthorizationStatus {
	if status == types.AuthorizationStatusNoCredit {
		return types.AuthorizationStatusBlocked
	}
	if status == "" {
		return types.AuthorizationStatusAccepted
	}
	return status
}

func applyTransactionData(event *ocpp.StopEvent, data []types.MeterValue) {
	for _, meterValue := range data {
		for _, sampled := range meterValue.SampledValue {
			if sampled.Measurand != "" && sampled.Measurand != types.MeasurandEnergyActiveImportRegister {
				continue
			}
			value := utility.ToWh(sampled.Value)
			switch types.ReadingContext(sampled.Context) {
			case types.ReadingContextTransactionBegin:
				event.BeginWh = &value
				if meterValue.Timestamp != nil {
					begin := meterValue.Timestamp.Time
					event.BeginTime = &begin
				}
			case types.ReadingContextTransactionEnd:
				event.EndWh = &value
				if meterValue.Timestamp != nil {
					end := meterValue.Timestamp.Time
					event.EndTime = &end
				}
			}
		}
	}
}

func energyReadings(meterValues []types.MeterValue) []ocpp.MeterReading {
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
				ValueWh:   utility.ToWh(sampled.Value),
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
	case StartTransactionFeatureName:
		return reflect.TypeOf(StartTransactionRequest{}), nil
	case StopTransactionFeatureName:
		return reflect.TypeOf(StopTransactionRequest{}), nil
	case MeterValuesFeatureName:
		return reflect.TypeOf(MeterValuesRequest{}), nil
	case StatusNotificationFeatureName:
		return reflect.TypeOf(StatusNotificationRequest{}), nil
	case DataTransferFeatureName:
		return reflect.TypeOf(DataTransferRequest{}), nil
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
