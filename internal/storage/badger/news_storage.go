package badger

import (
	"context"
	"fmt"

	"github.com/timshannon/badgerhold/v4"

	"github.com/bobmcallan/folio/internal/common"
	"github.com/bobmcallan/folio/internal/interfaces"
	"github.com/bobmcallan/folio/internal/models"
)

type newsStorage struct {
	store  *Store
	logger *common.Logger
}

// NewNewsStorage creates a new NewsStore backed by BadgerHold.
func NewNewsStorage(store *Store, logger *common.Logger) *newsStorage {
	return &newsStorage{store: store, logger: logger}
}

func (s *newsStorage) GetByPortfolio(_ context.Context, portfolioID string) (*models.NewsRecord, error) {
	var record models.NewsRecord
	err := s.store.db.Get(portfolioID, &record)
	if err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("news for portfolio '%s' not found: %w", portfolioID, err)
		}
		return nil, fmt.Errorf("failed to get news for portfolio '%s': %w", portfolioID, err)
	}
	return &record, nil
}

func (s *newsStorage) Upsert(_ context.Context, record *models.NewsRecord) error {
	if err := s.store.db.Upsert(record.PortfolioID, record); err != nil {
		return fmt.Errorf("failed to upsert news for portfolio '%s': %w", record.PortfolioID, err)
	}
	s.logger.Debug().
		Str("portfolio_id", record.PortfolioID).
		Int("items", len(record.Items)).
		Msg("News record upserted")
	return nil
}

func (s *newsStorage) DeleteByPortfolio(_ context.Context, portfolioID string) error {
	err := s.store.db.Delete(portfolioID, models.NewsRecord{})
	if err != nil && err != badgerhold.ErrNotFound {
		return fmt.Errorf("failed to delete news for portfolio '%s': %w", portfolioID, err)
	}
	return nil
}

var _ interfaces.NewsStore = (*newsStorage)(nil)
