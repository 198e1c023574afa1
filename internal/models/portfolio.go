// Package models defines data structures for Folio
package models

import "time"

// Portfolio import sources. BrokerImport marks portfolios whose valuation
// fields were computed by the broker export and are preserved as-is during
// enrichment rather than recomputed from provider prices.
const (
	SourceUpload       = "upload"
	SourceManual       = "manual"
	SourceBrokerImport = "broker_import"
)

// PortfolioMetadata records where a portfolio came from.
type PortfolioMetadata struct {
	Source     string    `json:"source"`
	Format     string    `json:"format,omitempty"`
	ImportedAt time.Time `json:"imported_at"`
}

// Portfolio represents an imported brokerage portfolio. Portfolios are
// created on upload/import and never mutated except delete-cascade.
type Portfolio struct {
	ID        string            `json:"id"`
	ClientID  string            `json:"client_id"`
	Name      string            `json:"name"`
	Currency  string            `json:"currency"`
	AsOfDate  string            `json:"as_of_date"`
	Holdings  []Holding         `json:"holdings"`
	Metadata  PortfolioMetadata `json:"metadata"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// IsBrokerImport reports whether the portfolio's valuation fields were
// computed upstream by a broker export (preserve-mode enrichment).
func (p *Portfolio) IsBrokerImport() bool {
	return p.Metadata.Source == SourceBrokerImport
}

// UniqueTickers returns the distinct ticker symbols in first-occurrence order.
func (p *Portfolio) UniqueTickers() []string {
	seen := make(map[string]bool, len(p.Holdings))
	tickers := make([]string, 0, len(p.Holdings))
	for _, h := range p.Holdings {
		if !seen[h.Ticker] {
			seen[h.Ticker] = true
			tickers = append(tickers, h.Ticker)
		}
	}
	return tickers
}

// ImportOptions carries caller-supplied fields for an upload/import.
type ImportOptions struct {
	ClientID string `json:"client_id"`
	Name     string `json:"name"`
	Currency string `json:"currency"`
}

// Holding represents a raw position in one ticker. Quantity and
// PurchasePrice are positive. The valuation fields are populated only for
// broker imports, where the export already carries computed values.
type Holding struct {
	Ticker        string  `json:"ticker"`
	Quantity      float64 `json:"quantity"`
	PurchasePrice float64 `json:"purchase_price"`
	PurchaseDate  string  `json:"purchase_date,omitempty"`

	// Importer-computed valuation (broker imports only)
	CurrentPrice    float64 `json:"current_price,omitempty"`
	CurrentValue    float64 `json:"current_value,omitempty"`
	CostBasis       float64 `json:"cost_basis,omitempty"`
	GainLoss        float64 `json:"gain_loss,omitempty"`
	GainLossPercent float64 `json:"gain_loss_percent,omitempty"`
}

// MarketInfo is the per-ticker market data overlay attached to an enriched
// holding. Pointer fields distinguish absent provider data from zero values.
type MarketInfo struct {
	MarketCap     *float64 `json:"market_cap"`
	PERatio       *float64 `json:"pe_ratio"`
	EPS           *float64 `json:"eps"`
	DividendYield *float64 `json:"dividend_yield"`
	Week52High    *float64 `json:"week_52_high"`
	Week52Low     *float64 `json:"week_52_low"`
	AnalystRating *string  `json:"analyst_rating"`
	Sector        string   `json:"sector"`
}

// EnrichedHolding is a holding merged with provider data and derived
// financial fields. Error is set when the provider had no data for the
// ticker; such holdings are excluded from aggregation but kept in the list.
type EnrichedHolding struct {
	Ticker        string  `json:"ticker"`
	Quantity      float64 `json:"quantity"`
	PurchasePrice float64 `json:"purchase_price"`
	PurchaseDate  string  `json:"purchase_date,omitempty"`

	CurrentPrice    float64 `json:"current_price"`
	CurrentValue    float64 `json:"current_value"`
	CostBasis       float64 `json:"cost_basis"`
	GainLoss        float64 `json:"gain_loss"`
	GainLossPercent float64 `json:"gain_loss_percent"`

	Sector     string      `json:"sector,omitempty"`
	MarketData *MarketInfo `json:"market_data,omitempty"`
	Error      string      `json:"error,omitempty"`
}

// Valid reports whether the holding carries usable provider data.
func (h *EnrichedHolding) Valid() bool {
	return h.Error == ""
}

// SecurityData is a best-effort provider record for one ticker. Any field
// may be absent; a per-ticker failure is carried in Error without failing
// the batch.
type SecurityData struct {
	Ticker        string   `json:"ticker"`
	LastPrice     *float64 `json:"last_price"`
	MarketCap     *float64 `json:"market_cap"`
	PERatio       *float64 `json:"pe_ratio"`
	EPS           *float64 `json:"eps"`
	DividendYield *float64 `json:"dividend_yield"`
	Week52High    *float64 `json:"week_52_high"`
	Week52Low     *float64 `json:"week_52_low"`
	AnalystRating *string  `json:"analyst_rating"`
	Sector        string   `json:"sector,omitempty"`
	Error         string   `json:"error,omitempty"`
}
