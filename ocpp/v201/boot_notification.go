package v201

import "evgate/types"

const BootNotificationFeatureName = "BootNotification"

type ModemType struct {
	Iccid string `json:"iccid,omitempty"`
	Imsi  string `json:"imsi,omitempty"`
}

type ChargingStationType struct {
	SerialNumber    string     `json:"serialNumber,omitempty"`
	Model           string     `json:"model"`
	VendorName      string     `json:"vendorName"`
	FirmwareVersion string     `json:"firmwareVersion,omitempty"`
	Modem           *ModemType `json:"modem,omitempty"`
}

type BootReason string

const (
	BootReasonPowerUp        BootReason = "PowerUp"
	BootReasonRemoteReset    BootReason = "RemoteReset"
	BootReasonScheduledReset BootReason = "ScheduledReset"
	BootReasonTriggered      BootReason = "Triggered"
	BootReasonUnknown        BootReason = "Unknown"
)

type BootNotificationRequest struct {
	Reason          BootReason          `json:"reason"`
	ChargingStation ChargingStationType `json:"chargingStation"`
}

type BootNotificationResponse struct {
	CurrentTime *types.DateTime          `json:"currentTime"`
	Interval    int                      `json:"interval"`
	Status      types.RegistrationStatus `json:"status"`
}

func (r BootNotificationRequest) GetFeatureName() string {
	return BootNotificationFeatureName
}
