package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/timshannon/badgerhold/v4"

	"github.com/bobmcallan/fairval/internal/common"
	"github.com/bobmcallan/fairval/internal/interfaces"
	"github.com/bobmcallan/fairval/internal/models"
)

// Cache record keys. Exactly one record per entity - the cache holds the
// latest oracle answer only.
const (
	keySnapshot     = "snapshot"
	keyDistribution = "distribution"
	keyBacktest     = "backtest"
)

// analysisRecord is the stored envelope. The payload is JSON so schema
// changes in the models never corrupt the index.
type analysisRecord struct {
	Key   string `badgerhold:"key"`
	Value []byte
}

// AnalysisStore caches the latest oracle answers.
type AnalysisStore struct {
	db     *badgerhold.Store
	logger *common.Logger
}

// ErrNotCached is returned when no record exists for an entity.
var ErrNotCached = errors.New("not cached")

func (s *AnalysisStore) put(key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	if err := s.db.Upsert(key, &analysisRecord{Key: key, Value: data}); err != nil {
		return fmt.Errorf("failed to store %s: %w", key, err)
	}
	return nil
}

func (s *AnalysisStore) get(key string, v interface{}) error {
	var rec analysisRecord
	if err := s.db.Get(key, &rec); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return ErrNotCached
		}
		return fmt.Errorf("failed to load %s: %w", key, err)
	}
	if err := json.Unmarshal(rec.Value, v); err != nil {
		return fmt.Errorf("failed to unmarshal %s: %w", key, err)
	}
	return nil
}

// GetSnapshot returns the cached financial snapshot, or ErrNotCached.
func (s *AnalysisStore) GetSnapshot(_ context.Context) (*models.FinancialSnapshot, error) {
	var snapshot models.FinancialSnapshot
	if err := s.get(keySnapshot, &snapshot); err != nil {
		return nil, err
	}
	return &snapshot, nil
}

// SaveSnapshot stores the latest financial snapshot.
func (s *AnalysisStore) SaveSnapshot(_ context.Context, snapshot *models.FinancialSnapshot) error {
	return s.put(keySnapshot, snapshot)
}

// GetDistribution returns the cached PBR distribution, or ErrNotCached.
func (s *AnalysisStore) GetDistribution(_ context.Context) (*models.PbrDistribution, error) {
	var dist models.PbrDistribution
	if err := s.get(keyDistribution, &dist); err != nil {
		return nil, err
	}
	return &dist, nil
}

// SaveDistribution stores the latest PBR distribution.
func (s *AnalysisStore) SaveDistribution(_ context.Context, dist *models.PbrDistribution) error {
	return s.put(keyDistribution, dist)
}

// GetBacktest returns the cached backtest result, or ErrNotCached.
func (s *AnalysisStore) GetBacktest(_ context.Context) (*models.BacktestResult, error) {
	var result models.BacktestResult
	if err := s.get(keyBacktest, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// SaveBacktest stores the latest backtest result.
func (s *AnalysisStore) SaveBacktest(_ context.Context, result *models.BacktestResult) error {
	return s.put(keyBacktest, result)
}

// Ensure AnalysisStore implements the interface
var _ interfaces.AnalysisStore = (*AnalysisStore)(nil)
