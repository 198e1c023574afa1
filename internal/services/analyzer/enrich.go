package analyzer

import "github.com/bobmcallan/folio/internal/models"

const errNoMarketData = "market data not available"

// enrichHoldings merges raw holdings with provider data. The output has the
// same length and order as the input; a holding whose ticker is missing from
// the provider data is flagged rather than dropped. In preserve mode the
// imported valuation fields are kept verbatim and only the sector/market
// overlay is applied.
func enrichHoldings(holdings []models.Holding, data []models.SecurityData, preserve bool) []models.EnrichedHolding {
	dataMap := make(map[string]*models.SecurityData, len(data))
	for i := range data {
		if data[i].Error == "" {
			dataMap[data[i].Ticker] = &data[i]
		}
	}

	enriched := make([]models.EnrichedHolding, 0, len(holdings))
	for _, h := range holdings {
		d := dataMap[h.Ticker]

		if preserve {
			enriched = append(enriched, enrichPreserved(h, d))
			continue
		}

		if d == nil {
			enriched = append(enriched, models.EnrichedHolding{
				Ticker:        h.Ticker,
				Quantity:      h.Quantity,
				PurchasePrice: h.PurchasePrice,
				PurchaseDate:  h.PurchaseDate,
				Error:         errNoMarketData,
			})
			continue
		}

		enriched = append(enriched, enrichComputed(h, d))
	}

	return enriched
}

// enrichComputed derives valuation fields from the provider's last price.
func enrichComputed(h models.Holding, d *models.SecurityData) models.EnrichedHolding {
	currentPrice := 0.0
	if d.LastPrice != nil {
		currentPrice = *d.LastPrice
	}

	currentValue := currentPrice * h.Quantity
	costBasis := h.PurchasePrice * h.Quantity
	gainLoss := currentValue - costBasis
	gainLossPercent := 0.0
	if costBasis > 0 {
		gainLossPercent = gainLoss / costBasis * 100
	}

	return models.EnrichedHolding{
		Ticker:          h.Ticker,
		Quantity:        h.Quantity,
		PurchasePrice:   h.PurchasePrice,
		PurchaseDate:    h.PurchaseDate,
		CurrentPrice:    currentPrice,
		CurrentValue:    currentValue,
		CostBasis:       costBasis,
		GainLoss:        gainLoss,
		GainLossPercent: gainLossPercent,
		Sector:          sectorOrUnknown(d),
		MarketData:      marketInfo(d),
	}
}

// enrichPreserved keeps the importer-computed valuation and overlays sector
// and market data when the provider has them.
func enrichPreserved(h models.Holding, d *models.SecurityData) models.EnrichedHolding {
	return models.EnrichedHolding{
		Ticker:          h.Ticker,
		Quantity:        h.Quantity,
		PurchasePrice:   h.PurchasePrice,
		PurchaseDate:    h.PurchaseDate,
		CurrentPrice:    h.CurrentPrice,
		CurrentValue:    h.CurrentValue,
		CostBasis:       h.CostBasis,
		GainLoss:        h.GainLoss,
		GainLossPercent: h.GainLossPercent,
		Sector:          sectorOrUnknown(d),
		MarketData:      marketInfo(d),
	}
}

func sectorOrUnknown(d *models.SecurityData) string {
	if d == nil || d.Sector == "" {
		return "Unknown"
	}
	return d.Sector
}

func marketInfo(d *models.SecurityData) *models.MarketInfo {
	if d == nil {
		return &models.MarketInfo{Sector: "Unknown"}
	}
	return &models.MarketInfo{
		MarketCap:     d.MarketCap,
		PERatio:       d.PERatio,
		EPS:           d.EPS,
		DividendYield: d.DividendYield,
		Week52High:    d.Week52High,
		Week52Low:     d.Week52Low,
		AnalystRating: d.AnalystRating,
		Sector:        sectorOrUnknown(d),
	}
}
