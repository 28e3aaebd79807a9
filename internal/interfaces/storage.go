package interfaces

import (
	"context"

	"github.com/bobmcallan/fairval/internal/models"
)

// AnalysisStore caches the latest oracle answers so a restart doesn't force
// an immediate (expensive) refresh. Losing the cache is harmless.
type AnalysisStore interface {
	GetSnapshot(ctx context.Context) (*models.FinancialSnapshot, error)
	SaveSnapshot(ctx context.Context, snapshot *models.FinancialSnapshot) error

	GetDistribution(ctx context.Context) (*models.PbrDistribution, error)
	SaveDistribution(ctx context.Context, dist *models.PbrDistribution) error

	GetBacktest(ctx context.Context) (*models.BacktestResult, error)
	SaveBacktest(ctx context.Context, result *models.BacktestResult) error
}

// StorageManager owns the store lifecycle.
type StorageManager interface {
	AnalysisStore() AnalysisStore
	Close() error
}
