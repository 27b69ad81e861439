package v201

const MeterValuesFeatureName = "MeterValues"

// MeterValues carries readings outside a transaction; readings inside one
// travel on TransactionEvent.
type MeterValuesRequest struct {
	EvseId     int          `json:"evseId"`
	MeterValue []MeterValue `json:"meterValue"`
}

type MeterValuesResponse struct {
}

func (r MeterValuesRequest) GetFeatureName() string {
	return MeterValuesFeatureName
}
