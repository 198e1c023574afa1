// Package analyzer runs the portfolio analysis pipeline: holdings
// enrichment, metrics aggregation, and rule-based insight generation.
package analyzer

import (
	"context"
	"fmt"
	"time"

	"github.com/bobmcallan/folio/internal/common"
	"github.com/bobmcallan/folio/internal/interfaces"
	"github.com/bobmcallan/folio/internal/models"
)

// Service implements AnalyzerService.
type Service struct {
	market interfaces.MarketDataClient
	logger *common.Logger
}

// NewService creates a new analyzer service.
func NewService(market interfaces.MarketDataClient, logger *common.Logger) *Service {
	return &Service{
		market: market,
		logger: logger,
	}
}

// Analyze runs the full pipeline for one portfolio. The provider is queried
// once for the portfolio's unique tickers; broker-import portfolios keep
// their imported valuations and only receive the sector/market-data overlay.
func (s *Service) Analyze(ctx context.Context, portfolio *models.Portfolio) (*models.PortfolioAnalysis, error) {
	start := time.Now()
	tickers := portfolio.UniqueTickers()

	data, err := s.market.GetBatchSecurityData(ctx, tickers)
	if err != nil {
		return nil, fmt.Errorf("market data batch failed: %w", err)
	}

	enriched := enrichHoldings(portfolio.Holdings, data, portfolio.IsBrokerImport())
	metrics := calculateMetrics(enriched, portfolio.Currency)
	insights := generateInsights(enriched, metrics)

	s.logger.Info().
		Str("portfolio_id", portfolio.ID).
		Int("tickers", len(tickers)).
		Int("insights", len(insights)).
		Dur("elapsed", time.Since(start)).
		Msg("Portfolio analyzed")

	return &models.PortfolioAnalysis{
		Portfolio: models.AnalyzedPortfolio{
			ID:       portfolio.ID,
			ClientID: portfolio.ClientID,
			Name:     portfolio.Name,
			Currency: portfolio.Currency,
			AsOfDate: portfolio.AsOfDate,
			Holdings: enriched,
			Metadata: portfolio.Metadata,
		},
		Metrics:  metrics,
		Insights: insights,
	}, nil
}

var _ interfaces.AnalyzerService = (*Service)(nil)
