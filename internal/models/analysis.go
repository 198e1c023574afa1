package models

import "time"

// Insight types produced by the rule pass.
const (
	InsightBuyRated      = "buy_rated"
	InsightSellRated     = "sell_rated"
	InsightNearHigh      = "near_high"
	InsightNearLow       = "near_low"
	InsightConcentration = "concentration"
	InsightPerformance   = "performance"
)

// Insight severities.
const (
	SeveritySuccess = "success"
	SeverityInfo    = "info"
	SeverityWarning = "warning"
	SeverityError   = "error"
)

// Insight is a rule-derived advisory message.
type Insight struct {
	Type     string `json:"type"`
	Ticker   string `json:"ticker,omitempty"`
	Message  string `json:"message"`
	Severity string `json:"severity"`
}

// TopHolding is one entry of the top-5 holdings ranking.
type TopHolding struct {
	Ticker             string  `json:"ticker"`
	Value              float64 `json:"value"`
	PercentOfPortfolio float64 `json:"percent_of_portfolio"`
}

// PortfolioMetrics aggregates enriched holdings into portfolio totals.
// Error-flagged holdings are excluded from every figure.
type PortfolioMetrics struct {
	Currency             string             `json:"currency"`
	TotalValue           float64            `json:"total_value"`
	TotalCost            float64            `json:"total_cost"`
	TotalGainLoss        float64            `json:"total_gain_loss"`
	TotalGainLossPercent float64            `json:"total_gain_loss_percent"`
	HoldingsCount        int                `json:"holdings_count"`
	SectorAllocation     map[string]float64 `json:"sector_allocation"`
	TopHoldings          []TopHolding       `json:"top_holdings"`
}

// AnalyzedPortfolio is a portfolio with enriched holdings substituted for
// the raw ones.
type AnalyzedPortfolio struct {
	ID       string            `json:"id"`
	ClientID string            `json:"client_id"`
	Name     string            `json:"name"`
	Currency string            `json:"currency"`
	AsOfDate string            `json:"as_of_date"`
	Holdings []EnrichedHolding `json:"holdings"`
	Metadata PortfolioMetadata `json:"metadata"`
}

// PortfolioAnalysis is one complete analyzer result.
type PortfolioAnalysis struct {
	Portfolio AnalyzedPortfolio `json:"portfolio"`
	Metrics   PortfolioMetrics  `json:"metrics"`
	Insights  []Insight         `json:"insights"`
}

// Analysis record statuses. StatusProcessing is never persisted — it is the
// read-path placeholder returned while no record exists yet.
const (
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusError      = "error"
)

// AnalysisRecord is the persisted analysis cache entry, keyed by portfolio
// ID. Each refresh overwrites the previous record (last writer wins).
type AnalysisRecord struct {
	PortfolioID string             `json:"portfolio_id"`
	Analysis    *PortfolioAnalysis `json:"analysis,omitempty"`
	LastUpdated time.Time          `json:"last_updated"`
	Status      string             `json:"status"`
	Error       string             `json:"error,omitempty"`
}

// CachedAnalysis is the read-path response for a portfolio's analysis.
// A serving client always receives a well-formed response: completed with
// the payload, or a processing/error status with the last error message.
type CachedAnalysis struct {
	Status      string             `json:"status"`
	Analysis    *PortfolioAnalysis `json:"analysis,omitempty"`
	LastUpdated *time.Time         `json:"last_updated,omitempty"`
	Error       string             `json:"error,omitempty"`
	Message     string             `json:"message,omitempty"`
}
