// Package scheduler runs the periodic analysis and news refresh cycles and
// owns the cached records they maintain. Reads are served from the cache and
// never block on upstream providers; a cache miss triggers a fire-and-forget
// background refresh.
package scheduler

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/bobmcallan/folio/internal/common"
	"github.com/bobmcallan/folio/internal/interfaces"
	"github.com/bobmcallan/folio/internal/models"
)

const processingMessage = "Analysis is being processed. Please refresh in a moment."

// Service implements SchedulerService.
type Service struct {
	analyzer interfaces.AnalyzerService
	news     interfaces.NewsClient // may be nil - news refresh is skipped
	storage  interfaces.StorageManager
	logger   *common.Logger
	config   common.SchedulerConfig

	mu        sync.Mutex
	cron      *cron.Cron
	bootstrap *time.Timer
	running   bool

	// Per-portfolio locks serialize concurrent refreshes of the same
	// portfolio ID so cache upserts are not interleaved.
	locks sync.Map
}

// NewService creates a new refresh scheduler.
func NewService(
	analyzer interfaces.AnalyzerService,
	news interfaces.NewsClient,
	storage interfaces.StorageManager,
	logger *common.Logger,
	config common.SchedulerConfig,
) *Service {
	return &Service{
		analyzer: analyzer,
		news:     news,
		storage:  storage,
		logger:   logger,
		config:   config,
	}
}

// Start launches the two periodic refresh jobs and schedules the bootstrap
// run. Safe to call once per Stop.
func (s *Service) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}

	s.cron = cron.New()
	analysisInterval := s.config.GetAnalysisInterval()
	newsInterval := s.config.GetNewsInterval()

	s.cron.AddFunc(fmt.Sprintf("@every %s", analysisInterval), func() {
		s.RefreshAllAnalysis(context.Background())
	})
	s.cron.AddFunc(fmt.Sprintf("@every %s", newsInterval), func() {
		s.RefreshAllNews(context.Background())
	})
	s.cron.Start()

	s.bootstrap = time.AfterFunc(s.config.GetBootstrapDelay(), func() {
		s.logger.Info().Msg("Running initial data refresh")
		s.RefreshAllAnalysis(context.Background())
		s.RefreshAllNews(context.Background())
	})

	s.running = true
	s.logger.Info().
		Dur("analysis_interval", analysisInterval).
		Dur("news_interval", newsInterval).
		Msg("Scheduler started")
}

// Stop cancels the periodic jobs and the pending bootstrap run. In-flight
// refresh work is not aborted; no new cycle is scheduled after Stop.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}

	s.cron.Stop()
	s.cron = nil
	if s.bootstrap != nil {
		s.bootstrap.Stop()
		s.bootstrap = nil
	}
	s.running = false
	s.logger.Info().Msg("Scheduler stopped")
}

// portfolioLock returns the mutex guarding refreshes of one portfolio ID.
func (s *Service) portfolioLock(portfolioID string) *sync.Mutex {
	lock, _ := s.locks.LoadOrStore(portfolioID, &sync.Mutex{})
	return lock.(*sync.Mutex)
}

// safeGo launches a fire-and-forget goroutine with panic recovery.
func (s *Service) safeGo(name string, fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error().
					Str("goroutine", name).
					Str("panic", fmt.Sprintf("%v", r)).
					Str("stack", string(debug.Stack())).
					Msg("Recovered from panic in background refresh")
			}
		}()
		fn()
	}()
}

// RefreshAllAnalysis runs one full analysis refresh cycle: every stored
// portfolio is analyzed strictly sequentially, and each result is upserted
// with completed or error status. One portfolio's failure does not stop the
// cycle.
func (s *Service) RefreshAllAnalysis(ctx context.Context) {
	portfolios, err := s.storage.PortfolioStore().ListPortfolios(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("Analysis refresh: failed to list portfolios")
		return
	}

	s.logger.Info().Int("portfolios", len(portfolios)).Msg("Refreshing analysis for all portfolios")

	for _, portfolio := range portfolios {
		if err := s.refreshAnalysis(ctx, portfolio); err != nil {
			s.logger.Warn().Err(err).Str("portfolio_id", portfolio.ID).Msg("Portfolio analysis failed")
		}
	}

	s.logger.Info().Msg("Analysis refresh completed")
}

// refreshAnalysis analyzes one portfolio and writes through the cache.
// A failed analysis overwrites any previous record with an error record.
func (s *Service) refreshAnalysis(ctx context.Context, portfolio *models.Portfolio) error {
	lock := s.portfolioLock(portfolio.ID)
	lock.Lock()
	defer lock.Unlock()

	analysis, err := s.analyzer.Analyze(ctx, portfolio)
	if err != nil {
		record := &models.AnalysisRecord{
			PortfolioID: portfolio.ID,
			LastUpdated: time.Now(),
			Status:      models.StatusError,
			Error:       err.Error(),
		}
		if upsertErr := s.storage.AnalysisStore().Upsert(ctx, record); upsertErr != nil {
			s.logger.Error().Err(upsertErr).Str("portfolio_id", portfolio.ID).Msg("Failed to record analysis error")
		}
		return err
	}

	record := &models.AnalysisRecord{
		PortfolioID: portfolio.ID,
		Analysis:    analysis,
		LastUpdated: time.Now(),
		Status:      models.StatusCompleted,
	}
	return s.storage.AnalysisStore().Upsert(ctx, record)
}

// RefreshAllNews runs one full news refresh cycle. News failures are
// logged and skipped; they never write an error record.
func (s *Service) RefreshAllNews(ctx context.Context) {
	if s.news == nil {
		return
	}

	portfolios, err := s.storage.PortfolioStore().ListPortfolios(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("News refresh: failed to list portfolios")
		return
	}

	s.logger.Info().Int("portfolios", len(portfolios)).Msg("Refreshing news for all portfolios")

	for _, portfolio := range portfolios {
		if err := s.refreshNews(ctx, portfolio); err != nil {
			s.logger.Warn().Err(err).Str("portfolio_id", portfolio.ID).Msg("Portfolio news refresh failed")
		}
	}

	s.logger.Info().Msg("News refresh completed")
}

func (s *Service) refreshNews(ctx context.Context, portfolio *models.Portfolio) error {
	if s.news == nil {
		return nil
	}

	items, err := s.news.GetPortfolioNews(ctx, portfolio.UniqueTickers())
	if err != nil {
		return err
	}

	return s.storage.NewsStore().Upsert(ctx, &models.NewsRecord{
		PortfolioID: portfolio.ID,
		Items:       items,
		LastUpdated: time.Now(),
	})
}

// RefreshPortfolio synchronously re-analyzes one portfolio and refreshes
// its news, writing through the cache upsert path. Returns the portfolio
// store's not-found error or the analyzer's failure.
func (s *Service) RefreshPortfolio(ctx context.Context, portfolioID string) error {
	portfolio, err := s.storage.PortfolioStore().GetPortfolio(ctx, portfolioID)
	if err != nil {
		return err
	}

	s.logger.Info().Str("portfolio_id", portfolioID).Msg("Refreshing portfolio on demand")

	if err := s.refreshAnalysis(ctx, portfolio); err != nil {
		return err
	}

	if err := s.refreshNews(ctx, portfolio); err != nil {
		s.logger.Warn().Err(err).Str("portfolio_id", portfolioID).Msg("News refresh failed during on-demand refresh")
	}

	return nil
}

// GetAnalysis serves the cached analysis for a portfolio. On a cache miss a
// processing placeholder is returned and a background refresh is fired; the
// read path never runs enrichment synchronously.
func (s *Service) GetAnalysis(ctx context.Context, portfolioID string) (*models.CachedAnalysis, error) {
	if _, err := s.storage.PortfolioStore().GetPortfolio(ctx, portfolioID); err != nil {
		return nil, err
	}

	record, err := s.storage.AnalysisStore().GetByPortfolio(ctx, portfolioID)
	if err != nil {
		s.logger.Info().Str("portfolio_id", portfolioID).Msg("No cached analysis, scheduling refresh")
		s.safeGo("analysis-refresh", func() {
			if refreshErr := s.RefreshPortfolio(context.Background(), portfolioID); refreshErr != nil {
				s.logger.Warn().Err(refreshErr).Str("portfolio_id", portfolioID).Msg("Background analysis refresh failed")
			}
		})
		return &models.CachedAnalysis{
			Status:  models.StatusProcessing,
			Message: processingMessage,
		}, nil
	}

	if record.Status == models.StatusError {
		lastUpdated := record.LastUpdated
		return &models.CachedAnalysis{
			Status:      models.StatusError,
			LastUpdated: &lastUpdated,
			Error:       record.Error,
		}, nil
	}

	lastUpdated := record.LastUpdated
	return &models.CachedAnalysis{
		Status:      models.StatusCompleted,
		Analysis:    record.Analysis,
		LastUpdated: &lastUpdated,
	}, nil
}

// GetNews serves the cached news for a portfolio, with the same miss
// behavior as GetAnalysis.
func (s *Service) GetNews(ctx context.Context, portfolioID string) (*models.CachedNews, error) {
	portfolio, err := s.storage.PortfolioStore().GetPortfolio(ctx, portfolioID)
	if err != nil {
		return nil, err
	}

	record, err := s.storage.NewsStore().GetByPortfolio(ctx, portfolioID)
	if err != nil {
		s.logger.Info().Str("portfolio_id", portfolioID).Msg("No cached news, scheduling refresh")
		s.safeGo("news-refresh", func() {
			if refreshErr := s.refreshNews(context.Background(), portfolio); refreshErr != nil {
				s.logger.Warn().Err(refreshErr).Str("portfolio_id", portfolioID).Msg("Background news refresh failed")
			}
		})
		return &models.CachedNews{
			Status:  models.StatusProcessing,
			Message: "News is being fetched. Please refresh in a moment.",
		}, nil
	}

	lastUpdated := record.LastUpdated
	return &models.CachedNews{
		Status:      models.StatusCompleted,
		Items:       record.Items,
		LastUpdated: &lastUpdated,
	}, nil
}

var _ interfaces.SchedulerService = (*Service)(nil)
