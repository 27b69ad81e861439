package v201

import "evgate/types"

const StatusNotificationFeatureName = "StatusNotification"

type ConnectorStatusEnum string

const (
	ConnectorStatusAvailable   ConnectorStatusEnum = "Available"
	ConnectorStatusOccupied    ConnectorStatusEnum = "Occupied"
	ConnectorStatusReserved    ConnectorStatusEnum = "Reserved"
	ConnectorStatusUnavailable ConnectorStatusEnum = "Unavailable"
	ConnectorStatusFaulted     ConnectorStatusEnum = "Faulted"
)

type StatusNotificationRequest struct {
	Timestamp       *types.DateTime     `json:"timestamp"`
	ConnectorStatus ConnectorStatusEnum `json:"connectorStatus"`
	EvseId          int                 `json:"evseId"`
	ConnectorId     int                 `json:"connectorId"`
}

type StatusNotificationResponse struct {
}

func (r StatusNotificationRequest) GetFeatureName() string {
	return StatusNotificationFeatureName
}
