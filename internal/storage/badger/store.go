// Package badger provides BadgerHold-based storage for portfolios and the
// analysis/news caches.
package badger

import (
	"errors"
	"fmt"
	"os"

	"github.com/timshannon/badgerhold/v4"

	"github.com/bobmcallan/folio/internal/common"
	"github.com/bobmcallan/folio/internal/interfaces"
)

// Store wraps a BadgerHold database connection.
type Store struct {
	db     *badgerhold.Store
	logger *common.Logger
}

// NewStore creates a new BadgerHold store at the given directory path.
func NewStore(logger *common.Logger, path string) (*Store, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create badger directory %s: %w", path, err)
	}

	options := badgerhold.DefaultOptions
	options.Dir = path
	options.ValueDir = path
	options.Logger = nil // Disable default badger logger

	db, err := badgerhold.Open(options)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger database: %w", err)
	}

	logger.Debug().Str("path", path).Msg("BadgerHold store opened")

	return &Store{
		db:     db,
		logger: logger,
	}, nil
}

// DB returns the underlying badgerhold store.
func (s *Store) DB() *badgerhold.Store {
	return s.db
}

// Close closes the BadgerHold database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// IsNotFound reports whether err is a missing-record error from any store.
func IsNotFound(err error) bool {
	return errors.Is(err, badgerhold.ErrNotFound)
}

// Manager implements interfaces.StorageManager over a single BadgerHold
// database shared by all three stores.
type Manager struct {
	store      *Store
	portfolios *portfolioStorage
	analysis   *analysisStorage
	news       *newsStorage
}

// NewManager opens the database at path and wires the stores.
func NewManager(logger *common.Logger, path string) (*Manager, error) {
	store, err := NewStore(logger, path)
	if err != nil {
		return nil, err
	}

	return &Manager{
		store:      store,
		portfolios: NewPortfolioStorage(store, logger),
		analysis:   NewAnalysisStorage(store, logger),
		news:       NewNewsStorage(store, logger),
	}, nil
}

func (m *Manager) PortfolioStore() interfaces.PortfolioStore { return m.portfolios }
func (m *Manager) AnalysisStore() interfaces.AnalysisStore   { return m.analysis }
func (m *Manager) NewsStore() interfaces.NewsStore           { return m.news }

// Close closes the underlying database.
func (m *Manager) Close() error {
	return m.store.Close()
}

var _ interfaces.StorageManager = (*Manager)(nil)
