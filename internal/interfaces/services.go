package interfaces

import (
	"context"

	"github.com/bobmcallan/folio/internal/models"
)

// AnalyzerService runs the full enrichment pipeline for one portfolio.
type AnalyzerService interface {
	// Analyze derives unique tickers, queries the market data provider once,
	// and runs enrichment, metrics, and insights in sequence. A whole-batch
	// provider failure propagates; per-ticker failures are absorbed into
	// error-flagged holdings.
	Analyze(ctx context.Context, portfolio *models.Portfolio) (*models.PortfolioAnalysis, error)
}

// SchedulerService owns the periodic refresh cycles and the analysis/news
// caches they maintain.
type SchedulerService interface {
	// Start launches the periodic analysis and news refresh jobs plus an
	// initial bootstrap run shortly after startup.
	Start()

	// Stop cancels the periodic jobs. In-flight refresh work is not aborted
	// but no new cycle is scheduled.
	Stop()

	// RefreshPortfolio synchronously re-analyzes one portfolio and writes
	// through the cache upsert path. Returns an error when the portfolio
	// does not exist or the provider batch call fails.
	RefreshPortfolio(ctx context.Context, portfolioID string) error

	// GetAnalysis serves the cached analysis for a portfolio. A cache miss
	// returns a processing placeholder and fires a background refresh.
	GetAnalysis(ctx context.Context, portfolioID string) (*models.CachedAnalysis, error)

	// GetNews serves the cached news for a portfolio, analogous to GetAnalysis.
	GetNews(ctx context.Context, portfolioID string) (*models.CachedNews, error)
}

// PortfolioService manages portfolio import and lifecycle.
type PortfolioService interface {
	// Import parses an uploaded JSON or CSV payload (format detected from
	// the filename) and stores the resulting portfolio.
	Import(ctx context.Context, filename string, data []byte, opts models.ImportOptions) (*models.Portfolio, error)

	// Create stores a manually entered portfolio after validating holdings.
	Create(ctx context.Context, portfolio *models.Portfolio) (*models.Portfolio, error)

	// Get retrieves a portfolio by ID.
	Get(ctx context.Context, id string) (*models.Portfolio, error)

	// List returns all stored portfolios.
	List(ctx context.Context) ([]*models.Portfolio, error)

	// Delete removes a portfolio and cascades to its analysis and news records.
	Delete(ctx context.Context, id string) error
}
