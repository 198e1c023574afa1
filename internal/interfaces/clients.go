// Package interfaces defines service contracts for Folio
package interfaces

import (
	"context"

	"github.com/bobmcallan/folio/internal/models"
)

// MarketDataClient fetches best-effort pricing, fundamental, and sentiment
// data per ticker.
type MarketDataClient interface {
	// GetSecurityData fetches data for a single ticker.
	GetSecurityData(ctx context.Context, ticker string) (*models.SecurityData, error)

	// GetBatchSecurityData fetches data for multiple tickers, returning one
	// entry per input ticker in input order. A per-ticker failure is recorded
	// on that entry's Error field and does not fail the batch.
	GetBatchSecurityData(ctx context.Context, tickers []string) ([]models.SecurityData, error)
}

// NewsClient produces per-ticker news summaries with sentiment.
type NewsClient interface {
	GetPortfolioNews(ctx context.Context, tickers []string) ([]models.TickerNews, error)
}
