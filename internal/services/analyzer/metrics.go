package analyzer

import (
	"sort"

	"github.com/bobmcallan/folio/internal/models"
)

const topHoldingsLimit = 5

// calculateMetrics aggregates enriched holdings into portfolio-level totals.
// Error-flagged holdings are excluded from every figure.
func calculateMetrics(holdings []models.EnrichedHolding, currency string) models.PortfolioMetrics {
	valid := make([]models.EnrichedHolding, 0, len(holdings))
	for _, h := range holdings {
		if h.Valid() {
			valid = append(valid, h)
		}
	}

	totalValue := 0.0
	totalCost := 0.0
	for _, h := range valid {
		totalValue += h.CurrentValue
		totalCost += h.CostBasis
	}

	totalGainLoss := totalValue - totalCost
	totalGainLossPercent := 0.0
	if totalCost > 0 {
		totalGainLossPercent = totalGainLoss / totalCost * 100
	}

	return models.PortfolioMetrics{
		Currency:             currency,
		TotalValue:           totalValue,
		TotalCost:            totalCost,
		TotalGainLoss:        totalGainLoss,
		TotalGainLossPercent: totalGainLossPercent,
		HoldingsCount:        len(valid),
		SectorAllocation:     sectorAllocation(valid, totalValue),
		TopHoldings:          topHoldings(valid, totalValue),
	}
}

// sectorAllocation groups valid holdings by sector and converts each
// sector's value to a percent of total value (0 when total value is 0).
func sectorAllocation(valid []models.EnrichedHolding, totalValue float64) map[string]float64 {
	bySector := make(map[string]float64)
	for _, h := range valid {
		sector := "Unknown"
		if h.MarketData != nil && h.MarketData.Sector != "" {
			sector = h.MarketData.Sector
		}
		bySector[sector] += h.CurrentValue
	}

	allocation := make(map[string]float64, len(bySector))
	for sector, value := range bySector {
		if totalValue > 0 {
			allocation[sector] = value / totalValue * 100
		} else {
			allocation[sector] = 0
		}
	}
	return allocation
}

// topHoldings ranks valid holdings descending by current value and returns
// the first five. Ties keep input order.
func topHoldings(valid []models.EnrichedHolding, totalValue float64) []models.TopHolding {
	ranked := make([]models.EnrichedHolding, len(valid))
	copy(ranked, valid)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].CurrentValue > ranked[j].CurrentValue
	})

	limit := topHoldingsLimit
	if len(ranked) < limit {
		limit = len(ranked)
	}

	top := make([]models.TopHolding, 0, limit)
	for _, h := range ranked[:limit] {
		percent := 0.0
		if totalValue > 0 {
			percent = h.CurrentValue / totalValue * 100
		}
		top = append(top, models.TopHolding{
			Ticker:             h.Ticker,
			Value:              h.CurrentValue,
			PercentOfPortfolio: percent,
		})
	}
	return top
}
