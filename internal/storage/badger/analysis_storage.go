package badger

import (
	"context"
	"fmt"

	"github.com/timshannon/badgerhold/v4"

	"github.com/bobmcallan/folio/internal/common"
	"github.com/bobmcallan/folio/internal/interfaces"
	"github.com/bobmcallan/folio/internal/models"
)

type analysisStorage struct {
	store  *Store
	logger *common.Logger
}

// NewAnalysisStorage creates a new AnalysisStore backed by BadgerHold.
func NewAnalysisStorage(store *Store, logger *common.Logger) *analysisStorage {
	return &analysisStorage{store: store, logger: logger}
}

func (s *analysisStorage) GetByPortfolio(_ context.Context, portfolioID string) (*models.AnalysisRecord, error) {
	var record models.AnalysisRecord
	err := s.store.db.Get(portfolioID, &record)
	if err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("analysis for portfolio '%s' not found: %w", portfolioID, err)
		}
		return nil, fmt.Errorf("failed to get analysis for portfolio '%s': %w", portfolioID, err)
	}
	return &record, nil
}

func (s *analysisStorage) Upsert(_ context.Context, record *models.AnalysisRecord) error {
	if err := s.store.db.Upsert(record.PortfolioID, record); err != nil {
		return fmt.Errorf("failed to upsert analysis for portfolio '%s': %w", record.PortfolioID, err)
	}
	s.logger.Debug().
		Str("portfolio_id", record.PortfolioID).
		Str("status", record.Status).
		Msg("Analysis record upserted")
	return nil
}

func (s *analysisStorage) DeleteByPortfolio(_ context.Context, portfolioID string) error {
	err := s.store.db.Delete(portfolioID, models.AnalysisRecord{})
	if err != nil && err != badgerhold.ErrNotFound {
		return fmt.Errorf("failed to delete analysis for portfolio '%s': %w", portfolioID, err)
	}
	return nil
}

var _ interfaces.AnalysisStore = (*analysisStorage)(nil)
