// Package mockfeed provides a deterministic in-process market data provider
// for development and testing, used when no API key is configured.
package mockfeed

import (
	"context"
	"fmt"

	"github.com/bobmcallan/folio/internal/common"
	"github.com/bobmcallan/folio/internal/interfaces"
	"github.com/bobmcallan/folio/internal/models"
)

type security struct {
	lastPrice     float64
	marketCap     float64
	peRatio       float64
	eps           float64
	dividendYield float64
	week52High    float64
	week52Low     float64
	analystRating string
	sector        string
}

// Snapshot of real market data, October 2025.
var securities = map[string]security{
	"AAPL":  {235.50, 3.62e12, 36.8, 6.42, 0.42, 250.20, 164.30, "buy", "Technology"},
	"MSFT":  {425.30, 3.18e12, 35.2, 12.08, 0.68, 440.75, 309.45, "buy", "Technology"},
	"GOOGL": {168.90, 2.12e12, 28.5, 5.93, 0.00, 175.80, 121.45, "buy", "Technology"},
	"NVDA":  {582.40, 1.45e12, 68.2, 8.54, 0.03, 612.50, 362.80, "strong buy", "Technology"},
	"TSLA":  {268.30, 852e9, 72.4, 3.71, 0.00, 299.50, 138.80, "hold", "Automotive"},
	"JPM":   {218.75, 625e9, 12.8, 17.09, 2.15, 225.30, 153.70, "buy", "Financial Services"},
	"JNJ":   {168.50, 405e9, 18.3, 9.21, 2.95, 175.95, 143.10, "hold", "Healthcare"},
	"XOM":   {118.40, 472e9, 13.9, 8.52, 3.35, 126.30, 95.80, "hold", "Energy"},
	"SPY":   {575.20, 0, 0, 0, 1.22, 586.10, 409.20, "", "Index Fund"},
	"VTI":   {282.60, 0, 0, 0, 1.28, 288.40, 200.90, "", "Index Fund"},
}

// Client implements MarketDataClient from a fixed dataset.
type Client struct {
	logger *common.Logger
}

// NewClient creates a mock market data client.
func NewClient(logger *common.Logger) *Client {
	return &Client{logger: logger}
}

func toModel(ticker string, s security) *models.SecurityData {
	data := &models.SecurityData{
		Ticker:        ticker,
		LastPrice:     ptr(s.lastPrice),
		DividendYield: ptr(s.dividendYield),
		Week52High:    ptr(s.week52High),
		Week52Low:     ptr(s.week52Low),
		Sector:        s.sector,
	}
	if s.marketCap > 0 {
		data.MarketCap = ptr(s.marketCap)
	}
	if s.peRatio > 0 {
		data.PERatio = ptr(s.peRatio)
	}
	if s.eps > 0 {
		data.EPS = ptr(s.eps)
	}
	if s.analystRating != "" {
		rating := s.analystRating
		data.AnalystRating = &rating
	}
	return data
}

func ptr(v float64) *float64 {
	return &v
}

// GetSecurityData returns the fixed dataset entry for a ticker.
func (c *Client) GetSecurityData(_ context.Context, ticker string) (*models.SecurityData, error) {
	s, ok := securities[ticker]
	if !ok {
		return nil, fmt.Errorf("no mock data for ticker '%s'", ticker)
	}
	return toModel(ticker, s), nil
}

// GetBatchSecurityData returns one entry per ticker, flagging unknown
// tickers with an error entry the way the live provider does.
func (c *Client) GetBatchSecurityData(_ context.Context, tickers []string) ([]models.SecurityData, error) {
	results := make([]models.SecurityData, 0, len(tickers))
	for _, ticker := range tickers {
		s, ok := securities[ticker]
		if !ok {
			c.logger.Debug().Str("ticker", ticker).Msg("No mock data for ticker")
			results = append(results, models.SecurityData{
				Ticker: ticker,
				Error:  "market data not available",
			})
			continue
		}
		results = append(results, *toModel(ticker, s))
	}
	return results, nil
}

var _ interfaces.MarketDataClient = (*Client)(nil)
