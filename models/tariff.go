package models

// Tariff is read-only to the gateway; it is fetched from the pricing
// collaborator when a transaction starts and pinned for that transaction.
// PricePerKwh is in minor currency units per kWh.
type Tariff struct {
	StationId      string `json:"station_id" bson:"station_id"`
	PricePerKwh    int64  `json:"price_per_kwh" bson:"price_per_kwh"`
	Currency       string `json:"currency" bson:"currency"`
	Demand         string `json:"demand" bson:"demand"`
	PlatformFeePct int64  `json:"platform_fee_pct" bson:"platform_fee_pct"`
}

const (
	DemandLow    = "Low"
	DemandNormal = "Normal"
	DemandHigh   = "High"
	DemandSurge  = "Surge"
)
