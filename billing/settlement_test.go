package billing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"evgate/models"
	"evgate/utility"
)

func TestSettleSession(t *testing.T) {
	// 15 kWh at 1800 per kWh, 20% platform fee
	settlement := Settle(1000, 16000, 1800, 20)
	assert.Equal(t, int64(15000), settlement.EnergyWh)
	assert.Equal(t, "15.000", utility.WhAsKwh(settlement.EnergyWh))
	assert.Equal(t, int64(27000), settlement.Cost)
	assert.Equal(t, int64(5400), settlement.PlatformFee)
	assert.Equal(t, int64(21600), settlement.OwnerShare)
	assert.False(t, settlement.Anomalous)
}

func TestSettleSplitIsExact(t *testing.T) {
	settlement := Settle(0, 15000, 1800, 20)
	assert.Equal(t, settlement.Cost, settlement.PlatformFee+settlement.OwnerShare)
}

func TestSettleZeroEnergy(t *testing.T) {
	settlement := Settle(5000, 5000, 1800, 20)
	assert.Equal(t, int64(0), settlement.EnergyWh)
	assert.Equal(t, int64(0), settlement.Cost)
	assert.False(t, settlement.Anomalous)
}

func TestSettleBackwardsMeterIsAnomalous(t *testing.T) {
	settlement := Settle(16000, 1000, 1800, 20)
	assert.Equal(t, int64(0), settlement.EnergyWh)
	assert.Equal(t, int64(0), settlement.Cost)
	assert.Equal(t, int64(0), settlement.PlatformFee)
	assert.Equal(t, int64(0), settlement.OwnerShare)
	assert.True(t, settlement.Anomalous)
}

func TestSettleApply(t *testing.T) {
	transaction := &models.Transaction{MeterStart: 1000, MeterStop: 16000}
	settlement := Settle(transaction.MeterStart, transaction.MeterStop, 1800, 20)
	settlement.Apply(transaction)
	assert.Equal(t, int64(15000), transaction.EnergyWh)
	assert.Equal(t, int64(27000), transaction.Cost)
	assert.Equal(t, int64(5400), transaction.PlatformFee)
	assert.Equal(t, int64(21600), transaction.OwnerShare)
}

func TestEstimateCost(t *testing.T) {
	assert.Equal(t, int64(1800), EstimateCost(1000, 1800))
	assert.Equal(t, int64(0), EstimateCost(0, 1800))
}
