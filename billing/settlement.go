package billing

import "evgate/models"

// Settlement is computed entirely in integer arithmetic: energy in Wh,
// money in minor currency units. No floats touch a monetary value.
type Settlement struct {
	EnergyWh    int64
	Cost        int64
	PlatformFee int64
	OwnerShare  int64
	Anomalous   bool
}

// Settle derives the final session figures from the meter boundaries.
// A meter running backwards yields a zero-energy settlement flagged as
// anomalous instead of a negative charge.
func Settle(meterStart, meterStop, pricePerKwh, platformFeePct int64) Settlement {
	energy := meterStop - meterStart
	anomalous := false
	if energy < 0 {
		energy = 0
		anomalous = true
	}
	cost := energy * pricePerKwh / 1000
	fee := cost * platformFeePct / 100
	return Settlement{
		EnergyWh:    energy,
		Cost:        cost,
		PlatformFee: fee,
		OwnerShare:  cost - fee,
		Anomalous:   anomalous,
	}
}

// Apply writes the settlement into the transaction record.
func (s Settlement) Apply(transaction *models.Transaction) {
	transaction.EnergyWh = s.EnergyWh
	transaction.Cost = s.Cost
	transaction.PlatformFee = s.PlatformFee
	transaction.OwnerShare = s.OwnerShare
	transaction.Anomalous = s.Anomalous
}

// EstimateCost prices an expected energy amount for the wallet reservation
// made before a session starts.
func EstimateCost(estimatedWh, pricePerKwh int64) int64 {
	return estimatedWh * pricePerKwh / 1000
}
