package v201

import "evgate/types"

const TransactionEventFeatureName = "TransactionEvent"

type TransactionEventType string

const (
	TransactionEventStarted TransactionEventType = "Started"
	TransactionEventUpdated TransactionEventType = "Updated"
	TransactionEventEnded   TransactionEventType = "Ended"
)

type TriggerReason string

const (
	TriggerReasonAuthorized         TriggerReason = "Authorized"
	TriggerReasonCablePluggedIn     TriggerReason = "CablePluggedIn"
	TriggerReasonMeterValuePeriodic TriggerReason = "MeterValuePeriodic"
	TriggerReasonEVDeparted         TriggerReason = "EVDeparted"
	TriggerReasonStopAuthorized     TriggerReason = "StopAuthorized"
	TriggerReasonRemoteStop         TriggerReason = "RemoteStop"
)

// SampledValue carries a numeric reading; the legacy dialect transports the
// same reading as a string.
type SampledValue struct {
	Value     float64 `json:"value"`
	Context   string  `json:"context,omitempty"`
	Measurand string  `json:"measurand,omitempty"`
	Location  string  `json:"location,omitempty"`
}

type MeterValue struct {
	Timestamp    *types.DateTime `json:"timestamp"`
	SampledValue []SampledValue  `json:"sampledValue"`
}

type EVSE struct {
	Id          int `json:"id"`
	ConnectorId int `json:"connectorId,omitempty"`
}

type TransactionInfo struct {
	TransactionId string `json:"transactionId"`
	ChargingState string `json:"chargingState,omitempty"`
	StoppedReason string `json:"stoppedReason,omitempty"`
}

type TransactionEventRequest struct {
	EventType       TransactionEventType `json:"eventType"`
	Timestamp       *types.DateTime      `json:"timestamp"`
	TriggerReason   TriggerReason        `json:"triggerReason"`
	SeqNo           int                  `json:"seqNo"`
	TransactionInfo TransactionInfo      `json:"transactionInfo"`
	Evse            *EVSE                `json:"evse,omitempty"`
	IdToken         *IdToken             `json:"idToken,omitempty"`
	MeterValue      []MeterValue         `json:"meterValue,omitempty"`
}

type TransactionEventResponse struct {
	TotalCost   *float64     `json:"totalCost,omitempty"`
	IdTokenInfo *IdTokenInfo `json:"idTokenInfo,omitempty"`
}

func (r TransactionEventRequest) GetFeatureName() string {
	return TransactionEventFeatureName
}
