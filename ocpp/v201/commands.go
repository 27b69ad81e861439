package v201

import "evgate/types"

// Outbound operator commands, CSMS to charging station.

const (
	RequestStartTransactionFeatureName = "RequestStartTransaction"
	RequestStopTransactionFeatureName  = "RequestStopTransaction"
	ReserveNowFeatureName              = "ReserveNow"
	CancelReservationFeatureName       = "CancelReservation"
	ResetFeatureName                   = "Reset"
	UnlockConnectorFeatureName         = "UnlockConnector"
)

type RequestStartTransactionRequest struct {
	EvseId        *int    `json:"evseId,omitempty"`
	RemoteStartId int     `json:"remoteStartId"`
	IdToken       IdToken `json:"idToken"`
}

type RequestStopTransactionRequest struct {
	TransactionId string `json:"transactionId"`
}

type ReserveNowRequest struct {
	Id             int             `json:"id"`
	ExpiryDateTime *types.DateTime `json:"expiryDateTime"`
	IdToken        IdToken         `json:"idToken"`
	EvseId         *int            `json:"evseId,omitempty"`
}

type CancelReservationRequest struct {
	ReservationId int `json:"reservationId"`
}

type ResetType string

const (
	ResetTypeImmediate ResetType = "Immediate"
	ResetTypeOnIdle    ResetType = "OnIdle"
)

type ResetRequest struct {
	Type   ResetType `json:"type"`
	EvseId *int      `json:"evseId,omitempty"`
}

type UnlockConnectorRequest struct {
	EvseId      int `json:"evseId"`
	ConnectorId int `json:"connectorId"`
}
