package billing

import (
	"fmt"
	"math"
	"time"

	"evgate/internal"
	"evgate/models"
)

// Multiplier bounds and occupancy thresholds for the dynamic tariff.
const (
	minMultiplier = 0.7
	maxMultiplier = 3.0

	lowOccupancyThreshold      = 30.0
	highOccupancyThreshold     = 70.0
	criticalOccupancyThreshold = 90.0

	lowOccupancyDiscount        = 0.8
	highOccupancyMultiplier     = 1.4
	criticalOccupancyMultiplier = 2.0

	offPeakNightMultiplier = 0.85
	weekendMultiplier      = 1.1

	defaultPricePerKwh = 800
	defaultCurrency    = "COP"
)

type peakWindow struct {
	start, end int
	multiplier float64
}

var peakWindows = []peakWindow{
	{7, 9, 1.3},
	{12, 14, 1.15},
	{17, 20, 1.5},
}

// DynamicPricing resolves a station's tariff at transaction start, scaling
// the stored base price by occupancy, time of day and day of week. The
// resulting tariff is pinned by the caller for the transaction's lifetime.
type DynamicPricing struct {
	database       internal.Database
	logger         internal.LogHandler
	location       *time.Location
	platformFeePct int64
}

func NewDynamicPricing(location *time.Location, platformFeePct int64) *DynamicPricing {
	if location == nil {
		location = time.UTC
	}
	return &DynamicPricing{
		location:       location,
		platformFeePct: platformFeePct,
	}
}

func (p *DynamicPricing) SetDatabase(database internal.Database) {
	p.database = database
}

func (p *DynamicPricing) SetLogger(logger internal.LogHandler) {
	p.logger = logger
}

func (p *DynamicPricing) GetTariff(stationId string) (*models.Tariff, error) {
	tariff := p.baseTariff(stationId)
	multiplier := p.multiplier(stationId, time.Now().In(p.location))
	tariff.PricePerKwh = int64(math.Round(float64(tariff.PricePerKwh) * multiplier))
	tariff.Demand = demandLevel(multiplier)
	if p.logger != nil {
		p.logger.Debug(fmt.Sprintf("tariff for %s: %d per kWh, demand %s", stationId, tariff.PricePerKwh, tariff.Demand))
	}
	return tariff, nil
}

func (p *DynamicPricing) baseTariff(stationId string) *models.Tariff {
	if p.database != nil {
		stored, err := p.database.GetTariff(stationId)
		if err != nil && p.logger != nil {
			p.logger.Error("read tariff", err)
		}
		if stored != nil {
			if stored.PlatformFeePct == 0 {
				stored.PlatformFeePct = p.platformFeePct
			}
			return stored
		}
	}
	return &models.Tariff{
		StationId:      stationId,
		PricePerKwh:    defaultPricePerKwh,
		Currency:       defaultCurrency,
		PlatformFeePct: p.platformFeePct,
	}
}

// multiplier is a weighted blend: occupancy carries the most weight, then
// time of day, then day of week. Clamped to the configured bounds.
func (p *DynamicPricing) multiplier(stationId string, now time.Time) float64 {
	blended := p.occupancyMultiplier(stationId)*0.4 +
		timeMultiplier(now)*0.3 +
		dayMultiplier(now)*0.15 +
		0.15
	return math.Max(minMultiplier, math.Min(maxMultiplier, blended))
}

func (p *DynamicPricing) occupancyMultiplier(stationId string) float64 {
	rate := p.occupancyRate(stationId)
	switch {
	case rate < lowOccupancyThreshold:
		return lowOccupancyDiscount
	case rate >= criticalOccupancyThreshold:
		return criticalOccupancyMultiplier
	case rate >= highOccupancyThreshold:
		progress := (rate - highOccupancyThreshold) / (criticalOccupancyThreshold - highOccupancyThreshold)
		return highOccupancyMultiplier + (criticalOccupancyMultiplier-highOccupancyMultiplier)*progress
	}
	return 1.0
}

func (p *DynamicPricing) occupancyRate(stationId string) float64 {
	if p.database == nil {
		return 0
	}
	connectors, err := p.database.GetConnectors()
	if err != nil {
		if p.logger != nil {
			p.logger.Error("read connectors", err)
		}
		return 0
	}
	total, available := 0, 0
	for _, connector := range connectors {
		if connector.StationId != stationId {
			continue
		}
		total++
		if connector.Status == string(models.ConnectorStatusAvailable) {
			available++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(total-available) / float64(total) * 100
}

func timeMultiplier(now time.Time) float64 {
	hour := now.Hour()
	for _, window := range peakWindows {
		if hour >= window.start && hour < window.end {
			return window.multiplier
		}
	}
	if hour < 6 {
		return offPeakNightMultiplier
	}
	return 1.0
}

func dayMultiplier(now time.Time) float64 {
	day := now.Weekday()
	if day == time.Saturday || day == time.Sunday {
		return weekendMultiplier
	}
	return 1.0
}

func demandLevel(multiplier float64) string {
	switch {
	case multiplier < 0.9:
		return models.DemandLow
	case multiplier < 1.2:
		return models.DemandNormal
	case multiplier < 1.6:
		return models.DemandHigh
	}
	return models.DemandSurge
}
