package app

import (
	"context"
	"fmt"

	"github.com/bobmcallan/fairval/internal/interfaces"
	"github.com/bobmcallan/fairval/internal/models"
)

// disabledOracle stands in when no API key is configured. Every request
// fails, which drives callers onto their static fallbacks.
type disabledOracle struct{}

var errOracleDisabled = fmt.Errorf("research oracle not configured")

func (d *disabledOracle) GetFinancialSnapshot(_ context.Context) (*models.FinancialSnapshot, error) {
	return nil, errOracleDisabled
}

func (d *disabledOracle) GetPbrDistribution(_ context.Context) (*models.PbrDistribution, error) {
	return nil, errOracleDisabled
}

func (d *disabledOracle) GetBacktest(_ context.Context, _ models.BacktestParams) (*models.BacktestResult, error) {
	return nil, errOracleDisabled
}

var _ interfaces.ResearchClient = (*disabledOracle)(nil)
