package v16

import "evgate/types"

const StatusNotificationFeatureName = "StatusNotification"

type ChargePointStatus string

const (
	StatusAvailable     ChargePointStatus = "Available"
	StatusPreparing     ChargePointStatus = "Preparing"
	StatusCharging      ChargePointStatus = "Charging"
	StatusSuspendedEVSE ChargePointStatus = "SuspendedEVSE"
	StatusSuspendedEV   ChargePointStatus = "SuspendedEV"
	StatusFinishing     ChargePointStatus = "Finishing"
	StatusReserved      ChargePointStatus = "Reserved"
	StatusUnavailable   ChargePointStatus = "Unavailable"
	StatusFaulted       ChargePointStatus = "Faulted"
)

type StatusNotificationRequest struct {
	ConnectorId     int               `json:"connectorId"`
	ErrorCode       string            `json:"errorCode"`
	Info            string            `json:"info,omitempty"`
	Status          ChargePointStatus `json:"status"`
	Timestamp       *types.DateTime   `json:"timestamp,omitempty"`
	VendorId        string            `json:"vendorId,omitempty"`
	VendorErrorCode string            `json:"vendorErrorCode,omitempty"`
}

type StatusNotificationResponse struct {
}

func (r StatusNotificationRequest) GetFeatureName() string {
	return StatusNotificationFeatureName
}
