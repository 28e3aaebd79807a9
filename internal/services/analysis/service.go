// Package analysis orchestrates research oracle requests and holds the
// dashboard view state.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/bobmcallan/fairval/internal/common"
	"github.com/bobmcallan/fairval/internal/interfaces"
	"github.com/bobmcallan/fairval/internal/models"
	"github.com/bobmcallan/fairval/internal/storage"
	"github.com/bobmcallan/fairval/internal/valuation"
)

// Generic user-facing error strings. Transport and parse failures are
// deliberately indistinguishable.
const (
	ErrMsgRefreshFailed  = "Could not fetch the latest financial data. Showing previous data if available."
	ErrMsgBacktestFailed = "Live backtest was unavailable. Showing a static estimate instead."
)

// Service implements AnalysisService. All state mutation goes through the
// mutex; concurrent invocations of the same operation race and the last
// writer wins - there is deliberately no request-generation guard.
type Service struct {
	oracle  interfaces.ResearchClient
	storage interfaces.StorageManager
	engine  *valuation.Engine
	params  models.BacktestParams
	ttl     common.FreshnessTTL
	logger  *common.Logger

	mu           sync.RWMutex
	snapshot     *models.FinancialSnapshot
	distribution *models.PbrDistribution
	backtest     *models.BacktestResult
	loading      bool
	lastError    string
}

// NewService creates a new analysis service. defaults supplies the strategy
// thresholds embedded in every backtest request.
func NewService(oracle interfaces.ResearchClient, storageManager interfaces.StorageManager, engine *valuation.Engine, defaults models.BacktestParams, ttl common.FreshnessTTL, logger *common.Logger) *Service {
	return &Service{
		oracle:  oracle,
		storage: storageManager,
		engine:  engine,
		params:  defaults,
		ttl:     ttl,
		logger:  logger,
	}
}

// LoadCached warms the view state from the analysis cache. Missing cache
// entries are not errors - the state simply stays empty until refreshed.
func (s *Service) LoadCached(ctx context.Context) {
	if s.storage == nil {
		return
	}
	store := s.storage.AnalysisStore()

	if snapshot, err := store.GetSnapshot(ctx); err == nil {
		s.mu.Lock()
		s.snapshot = snapshot
		s.mu.Unlock()
	} else if !errors.Is(err, storage.ErrNotCached) {
		s.logger.Warn().Err(err).Msg("Failed to load cached snapshot")
	}

	if dist, err := store.GetDistribution(ctx); err == nil {
		s.mu.Lock()
		s.distribution = dist
		s.mu.Unlock()
	} else if !errors.Is(err, storage.ErrNotCached) {
		s.logger.Warn().Err(err).Msg("Failed to load cached distribution")
	}

	if result, err := store.GetBacktest(ctx); err == nil {
		s.mu.Lock()
		s.backtest = result
		s.mu.Unlock()
	} else if !errors.Is(err, storage.ErrNotCached) {
		s.logger.Warn().Err(err).Msg("Failed to load cached backtest")
	}
}

// RefreshSnapshot fetches the financial snapshot and historical distribution
// concurrently and joins both. All-or-nothing: if either request fails the
// prior state is left untouched and a generic error is surfaced. The loading
// flag is always cleared, even on failure.
func (s *Service) RefreshSnapshot(ctx context.Context, force bool) error {
	if !force {
		s.mu.RLock()
		fresh := s.snapshot != nil && common.IsFresh(s.snapshot.FetchedAt, s.ttl.Snapshot)
		s.mu.RUnlock()
		if fresh {
			s.logger.Debug().Msg("Snapshot still fresh, skipping refresh")
			return nil
		}
	}

	s.setLoading(true)
	defer s.setLoading(false)

	var (
		wg       sync.WaitGroup
		snapshot *models.FinancialSnapshot
		dist     *models.PbrDistribution
		snapErr  error
		distErr  error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		snapshot, snapErr = s.oracle.GetFinancialSnapshot(ctx)
	}()
	go func() {
		defer wg.Done()
		dist, distErr = s.oracle.GetPbrDistribution(ctx)
	}()
	wg.Wait()

	if snapErr != nil || distErr != nil {
		if snapErr != nil {
			s.logger.Error().Err(snapErr).Msg("Snapshot fetch failed")
		}
		if distErr != nil {
			s.logger.Error().Err(distErr).Msg("Distribution fetch failed")
		}
		s.mu.Lock()
		s.lastError = ErrMsgRefreshFailed
		s.mu.Unlock()
		return fmt.Errorf("%s", ErrMsgRefreshFailed)
	}

	s.mu.Lock()
	s.snapshot = snapshot
	s.distribution = dist
	s.lastError = ""
	s.mu.Unlock()

	s.persistRefresh(ctx, snapshot, dist)

	s.logger.Info().
		Float64("price", snapshot.CurrentPrice).
		Str("as_of", snapshot.AsOf).
		Msg("Snapshot refreshed")

	return nil
}

// persistRefresh writes the refreshed entities to the cache. Cache failures
// are logged, never surfaced - the view state is already updated.
func (s *Service) persistRefresh(ctx context.Context, snapshot *models.FinancialSnapshot, dist *models.PbrDistribution) {
	if s.storage == nil {
		return
	}
	store := s.storage.AnalysisStore()
	if err := store.SaveSnapshot(ctx, snapshot); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to cache snapshot")
	}
	if err := store.SaveDistribution(ctx, dist); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to cache distribution")
	}
}

// RunBacktest requests a backtest for the given initial capital. A single
// failed attempt immediately substitutes the static fallback - no retry.
// The returned result is never nil when err is nil.
func (s *Service) RunBacktest(ctx context.Context, initialCapital float64) (*models.BacktestResult, error) {
	if initialCapital <= 0 {
		return nil, fmt.Errorf("initial capital must be positive, got %.2f", initialCapital)
	}

	s.setLoading(true)
	defer s.setLoading(false)

	params := s.params
	params.InitialCapital = initialCapital

	result, err := s.oracle.GetBacktest(ctx, params)
	if err != nil {
		s.logger.Error().Err(err).Float64("capital", initialCapital).Msg("Backtest failed, using fallback")
		result = models.FallbackBacktest(initialCapital)
		s.mu.Lock()
		s.backtest = result
		s.lastError = ErrMsgBacktestFailed
		s.mu.Unlock()
		s.persistBacktest(ctx, result)
		return result, nil
	}

	s.mu.Lock()
	s.backtest = result
	s.lastError = ""
	s.mu.Unlock()
	s.persistBacktest(ctx, result)

	s.logger.Info().
		Float64("capital", initialCapital).
		Int("trades", result.TradeCount).
		Msg("Backtest completed")

	return result, nil
}

func (s *Service) persistBacktest(ctx context.Context, result *models.BacktestResult) {
	if s.storage == nil {
		return
	}
	if err := s.storage.AnalysisStore().SaveBacktest(ctx, result); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to cache backtest")
	}
}

// Valuation derives the current valuation from the held snapshot.
func (s *Service) Valuation(_ context.Context) (*models.Valuation, error) {
	s.mu.RLock()
	snapshot := s.snapshot
	s.mu.RUnlock()

	if snapshot == nil {
		return nil, fmt.Errorf("no financial snapshot available")
	}
	return s.engine.Compute(snapshot)
}

// State returns a copy of the current view state.
func (s *Service) State() interfaces.AnalysisState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return interfaces.AnalysisState{
		Snapshot:     s.snapshot,
		Distribution: s.distribution,
		Backtest:     s.backtest,
		Loading:      s.loading,
		LastError:    s.lastError,
	}
}

func (s *Service) setLoading(v bool) {
	s.mu.Lock()
	s.loading = v
	s.mu.Unlock()
}

// Ensure Service implements AnalysisService
var _ interfaces.AnalysisService = (*Service)(nil)
