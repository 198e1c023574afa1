// Package portfolio manages portfolio import and lifecycle
package portfolio

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/bobmcallan/folio/internal/common"
	"github.com/bobmcallan/folio/internal/interfaces"
	"github.com/bobmcallan/folio/internal/models"
)

// Service implements PortfolioService.
type Service struct {
	storage interfaces.StorageManager
	logger  *common.Logger
}

// NewService creates a new portfolio service.
func NewService(storage interfaces.StorageManager, logger *common.Logger) *Service {
	return &Service{
		storage: storage,
		logger:  logger,
	}
}

func newPortfolioID() string {
	return "port_" + uuid.NewString()
}

// validateHoldings checks the raw-holding invariants: ticker present,
// quantity and purchase price positive.
func validateHoldings(holdings []models.Holding) error {
	if len(holdings) == 0 {
		return fmt.Errorf("holdings array cannot be empty")
	}
	for i, h := range holdings {
		if h.Ticker == "" {
			return fmt.Errorf("holding %d: missing ticker", i+1)
		}
		if h.Quantity <= 0 {
			return fmt.Errorf("holding %d: invalid quantity for %s", i+1, h.Ticker)
		}
		if h.PurchasePrice <= 0 {
			return fmt.Errorf("holding %d: invalid purchase price for %s", i+1, h.Ticker)
		}
	}
	return nil
}

// Create validates and stores a manually entered portfolio. Valuation
// fields are computed from the holding's current price when supplied,
// falling back to the purchase price.
func (s *Service) Create(ctx context.Context, portfolio *models.Portfolio) (*models.Portfolio, error) {
	if portfolio.ClientID == "" || portfolio.Name == "" {
		return nil, fmt.Errorf("missing required fields: client_id and name")
	}
	if err := validateHoldings(portfolio.Holdings); err != nil {
		return nil, err
	}

	for i := range portfolio.Holdings {
		h := &portfolio.Holdings[i]
		if h.CurrentPrice == 0 {
			h.CurrentPrice = h.PurchasePrice
		}
		h.CostBasis = h.Quantity * h.PurchasePrice
		h.CurrentValue = h.Quantity * h.CurrentPrice
		h.GainLoss = h.CurrentValue - h.CostBasis
		if h.CostBasis > 0 {
			h.GainLossPercent = h.GainLoss / h.CostBasis * 100
		}
	}

	portfolio.ID = newPortfolioID()
	if portfolio.Currency == "" {
		portfolio.Currency = "USD"
	}
	portfolio.AsOfDate = time.Now().Format("2006-01-02")
	portfolio.Metadata = models.PortfolioMetadata{
		Source:     models.SourceManual,
		ImportedAt: time.Now(),
	}

	if err := s.storage.PortfolioStore().SavePortfolio(ctx, portfolio); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("id", portfolio.ID).
		Int("holdings", len(portfolio.Holdings)).
		Msg("Portfolio created")

	return portfolio, nil
}

// Get retrieves a portfolio by ID.
func (s *Service) Get(ctx context.Context, id string) (*models.Portfolio, error) {
	return s.storage.PortfolioStore().GetPortfolio(ctx, id)
}

// List returns all stored portfolios.
func (s *Service) List(ctx context.Context) ([]*models.Portfolio, error) {
	return s.storage.PortfolioStore().ListPortfolios(ctx)
}

// Delete removes a portfolio and cascades to its analysis and news records.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.storage.PortfolioStore().DeletePortfolio(ctx, id); err != nil {
		return err
	}

	if err := s.storage.AnalysisStore().DeleteByPortfolio(ctx, id); err != nil {
		s.logger.Warn().Err(err).Str("id", id).Msg("Failed to delete analysis record during cascade")
	}
	if err := s.storage.NewsStore().DeleteByPortfolio(ctx, id); err != nil {
		s.logger.Warn().Err(err).Str("id", id).Msg("Failed to delete news record during cascade")
	}

	s.logger.Info().Str("id", id).Msg("Portfolio deleted")
	return nil
}

var _ interfaces.PortfolioService = (*Service)(nil)
