package v16

import "evgate/types"

const StartTransactionFeatureName = "StartTransaction"

type StartTransactionRequest struct {
	ConnectorId   int             `json:"connectorId"`
	IdTag         string          `json:"idTag"`
	MeterStart    int64           `json:"meterStart"`
	ReservationId *int            `json:"reservationId,omitempty"`
	Timestamp     *types.DateTime `json:"timestamp"`
}

type StartTransactionResponse struct {
	IdTagInfo     *types.IdTagInfo `json:"idTagInfo"`
	TransactionId int              `json:"transactionId"`
}

func (r StartTransactionRequest) GetFeatureName() string {
	return StartTransactionFeatureName
}
