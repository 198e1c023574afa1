package models

import "time"

// News sentiment labels.
const (
	SentimentBullish = "bullish"
	SentimentBearish = "bearish"
	SentimentNeutral = "neutral"
)

// TickerNews is a short AI-generated news summary for one ticker.
type TickerNews struct {
	Ticker    string `json:"ticker"`
	Summary   string `json:"summary"`
	Sentiment string `json:"sentiment"`
}

// NewsRecord is the persisted news cache entry, keyed by portfolio ID with
// the same upsert contract as AnalysisRecord.
type NewsRecord struct {
	PortfolioID string       `json:"portfolio_id"`
	Items       []TickerNews `json:"items"`
	LastUpdated time.Time    `json:"last_updated"`
}

// CachedNews is the read-path response for a portfolio's news.
type CachedNews struct {
	Status      string       `json:"status"`
	Items       []TickerNews `json:"items,omitempty"`
	LastUpdated *time.Time   `json:"last_updated,omitempty"`
	Message     string       `json:"message,omitempty"`
}
