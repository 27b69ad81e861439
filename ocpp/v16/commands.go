package v16

import "evgate/types"

// Outbound operator commands, central system to charge point.

const (
	RemoteStartTransactionFeatureName = "RemoteStartTransaction"
	RemoteStopTransactionFeatureName  = "RemoteStopTransaction"
	ReserveNowFeatureName             = "ReserveNow"
	CancelReservationFeatureName      = "CancelReservation"
	ResetFeatureName                  = "Reset"
	UnlockConnectorFeatureName        = "UnlockConnector"
)

type RemoteStartTransactionRequest struct {
	ConnectorId *int   `json:"connectorId,omitempty"`
	IdTag       string `json:"idTag"`
}

type RemoteStopTransactionRequest struct {
	TransactionId int `json:"transactionId"`
}

type ReserveNowRequest struct {
	ConnectorId   int             `json:"connectorId"`
	ExpiryDate    *types.DateTime `json:"expiryDate"`
	IdTag         string          `json:"idTag"`
	ReservationId int             `json:"reservationId"`
}

type CancelReservationRequest struct {
	ReservationId int `json:"reservationId"`
}

type ResetType string

const (
	ResetTypeHard ResetType = "Hard"
	ResetTypeSoft ResetType = "Soft"
)

type ResetRequest struct {
	Type ResetType `json:"type"`
}

type UnlockConnectorRequest struct {
	ConnectorId int `json:"connectorId"`
}
