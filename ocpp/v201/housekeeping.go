package v201

// Housekeeping notifications a 2.0.1 station sends that the gateway only
// has to confirm with an empty payload.

const (
	NotifyReportFeatureName               = "NotifyReport"
	NotifyEventFeatureName                = "NotifyEvent"
	LogStatusNotificationFeatureName      = "LogStatusNotification"
	FirmwareStatusNotificationFeatureName = "FirmwareStatusNotification"
	SecurityEventNotificationFeatureName  = "SecurityEventNotification"
	DataTransferFeatureName               = "DataTransfer"
)

type DataTransferStatus string

const (
	DataTransferStatusAccepted DataTransferStatus = "Accepted"
	DataTransferStatusRejected DataTransferStatus = "Rejected"
)

type DataTransferRequest struct {
	VendorId  string      `json:"vendorId"`
	MessageId string      `json:"messageId,omitempty"`
	Data      interface{} `json:"data,omitempty"`
}

type DataTransferResponse struct {
	Status DataTransferStatus `json:"status"`
}
