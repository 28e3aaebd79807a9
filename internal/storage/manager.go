// Package storage provides the BadgerHold-backed analysis cache.
package storage

import (
	"fmt"
	"os"

	"github.com/timshannon/badgerhold/v4"

	"github.com/bobmcallan/fairval/internal/common"
	"github.com/bobmcallan/fairval/internal/interfaces"
)

// Manager owns the BadgerHold store lifecycle.
type Manager struct {
	db       *badgerhold.Store
	analysis *AnalysisStore
	logger   *common.Logger
}

// NewManager opens the store at the given directory path.
func NewManager(logger *common.Logger, path string) (*Manager, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory %s: %w", path, err)
	}

	options := badgerhold.DefaultOptions
	options.Dir = path
	options.ValueDir = path
	options.Logger = nil // Disable default badger logger

	db, err := badgerhold.Open(options)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger database: %w", err)
	}

	logger.Debug().Str("path", path).Msg("Analysis cache opened")

	m := &Manager{
		db:     db,
		logger: logger,
	}
	m.analysis = &AnalysisStore{db: db, logger: logger}

	return m, nil
}

// AnalysisStore returns the analysis cache.
func (m *Manager) AnalysisStore() interfaces.AnalysisStore {
	return m.analysis
}

// Close closes the underlying database.
func (m *Manager) Close() error {
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}

// Ensure Manager implements StorageManager
var _ interfaces.StorageManager = (*Manager)(nil)
