package billing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"evgate/models"
)

func TestTimeMultiplier(t *testing.T) {
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC) // a Monday
	assert.Equal(t, offPeakNightMultiplier, timeMultiplier(day.Add(3*time.Hour)))
	assert.Equal(t, 1.3, timeMultiplier(day.Add(8*time.Hour)))
	assert.Equal(t, 1.15, timeMultiplier(day.Add(13*time.Hour)))
	assert.Equal(t, 1.5, timeMultiplier(day.Add(18*time.Hour)))
	assert.Equal(t, 1.0, timeMultiplier(day.Add(15*time.Hour)))
}

func TestDayMultiplier(t *testing.T) {
	saturday := time.Date(2026, 3, 7, 12, 0, 0, 0, time.UTC)
	monday := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, weekendMultiplier, dayMultiplier(saturday))
	assert.Equal(t, 1.0, dayMultiplier(monday))
}

func TestDemandLevel(t *testing.T) {
	assert.Equal(t, models.DemandLow, demandLevel(0.8))
	assert.Equal(t, models.DemandNormal, demandLevel(1.0))
	assert.Equal(t, models.DemandHigh, demandLevel(1.3))
	assert.Equal(t, models.DemandSurge, demandLevel(1.8))
}

func TestMultiplierStaysWithinBounds(t *testing.T) {
	pricing := NewDynamicPricing(time.UTC, 20)
	for hour := 0; hour < 24; hour++ {
		now := time.Date(2026, 3, 7, hour, 0, 0, 0, time.UTC)
		m := pricing.multiplier("st-1", now)
		assert.GreaterOrEqual(t, m, minMultiplier)
		assert.LessOrEqual(t, m, maxMultiplier)
	}
}

func TestGetTariffWithoutDatabaseUsesDefaults(t *testing.T) {
	pricing := NewDynamicPricing(time.UTC, 20)
	tariff, err := pricing.GetTariff("st-1")
	require.NoError(t, err)
	require.NotNil(t, tariff)
	assert.Equal(t, "st-1", tariff.StationId)
	assert.Equal(t, int64(20), tariff.PlatformFeePct)
	assert.Greater(t, tariff.PricePerKwh, int64(0))
	assert.NotEmpty(t, tariff.Demand)
}
