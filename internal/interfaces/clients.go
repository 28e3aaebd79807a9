// Package interfaces defines service contracts for Fairval
package interfaces

import (
	"context"

	"github.com/bobmcallan/fairval/internal/models"
)

// ResearchClient is the external research oracle. It is opaque and
// non-deterministic: responses are grounded by live web search and parsed
// from model output. Transport failures and parse failures are
// indistinguishable to callers.
type ResearchClient interface {
	// GetFinancialSnapshot retrieves the latest reported financials and
	// market price for the analyzed equity.
	GetFinancialSnapshot(ctx context.Context) (*models.FinancialSnapshot, error)

	// GetPbrDistribution retrieves the historical PBR distribution buckets.
	GetPbrDistribution(ctx context.Context) (*models.PbrDistribution, error)

	// GetBacktest runs a threshold-switching backtest simulation.
	GetBacktest(ctx context.Context, params models.BacktestParams) (*models.BacktestResult, error)
}
