package interfaces

import (
	"context"

	"github.com/bobmcallan/fairval/internal/models"
)

// AnalysisState is a copy of the orchestrator's view state. Snapshot,
// distribution and backtest may be nil when never populated.
type AnalysisState struct {
	Snapshot     *models.FinancialSnapshot
	Distribution *models.PbrDistribution
	Backtest     *models.BacktestResult
	Loading      bool
	LastError    string
}

// AnalysisService orchestrates oracle requests and holds dashboard state.
type AnalysisService interface {
	// RefreshSnapshot fetches the financial snapshot and historical
	// distribution concurrently. On any failure the prior state is left
	// untouched and a generic error is returned. force bypasses the
	// freshness check.
	RefreshSnapshot(ctx context.Context, force bool) error

	// RunBacktest requests a backtest for the given initial capital. On
	// failure the hardcoded fallback result is substituted; the returned
	// result is never nil when err is nil.
	RunBacktest(ctx context.Context, initialCapital float64) (*models.BacktestResult, error)

	// Valuation derives the current valuation from the held snapshot.
	Valuation(ctx context.Context) (*models.Valuation, error)

	// State returns a copy of the current view state.
	State() AnalysisState
}

// ReportService renders chart PNGs from analysis results.
type ReportService interface {
	RenderBacktestChart(result *models.BacktestResult) ([]byte, error)
	RenderDistributionChart(dist *models.PbrDistribution) ([]byte, error)
}
