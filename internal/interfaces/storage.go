package interfaces

import (
	"context"

	"github.com/bobmcallan/folio/internal/models"
)

// StorageManager coordinates the persistent stores.
type StorageManager interface {
	PortfolioStore() PortfolioStore
	AnalysisStore() AnalysisStore
	NewsStore() NewsStore
	Close() error
}

// PortfolioStore persists imported portfolios.
type PortfolioStore interface {
	GetPortfolio(ctx context.Context, id string) (*models.Portfolio, error)
	SavePortfolio(ctx context.Context, portfolio *models.Portfolio) error
	ListPortfolios(ctx context.Context) ([]*models.Portfolio, error)
	DeletePortfolio(ctx context.Context, id string) error
}

// AnalysisStore persists the latest analysis result per portfolio.
// Upserts are keyed by portfolio ID; concurrent upserts on the same key are
// last-writer-wins.
type AnalysisStore interface {
	GetByPortfolio(ctx context.Context, portfolioID string) (*models.AnalysisRecord, error)
	Upsert(ctx context.Context, record *models.AnalysisRecord) error
	DeleteByPortfolio(ctx context.Context, portfolioID string) error
}

// NewsStore persists the latest news summaries per portfolio with the same
// upsert contract as AnalysisStore.
type NewsStore interface {
	GetByPortfolio(ctx context.Context, portfolioID string) (*models.NewsRecord, error)
	Upsert(ctx context.Context, record *models.NewsRecord) error
	DeleteByPortfolio(ctx context.Context, portfolioID string) error
}
