// Package models defines domain types for Fairval
package models

import "time"

// Recommendation zones produced by the valuation engine.
const (
	ZoneBuy    = "buy"
	ZoneHold   = "hold"
	ZoneRotate = "rotate" // rotate into the alternate asset
)

// FinancialSnapshot holds the latest reported financials and market price
// for the analyzed equity. Immutable once fetched; replaced wholesale on
// refresh.
type FinancialSnapshot struct {
	TotalEquityMillions         float64   `json:"total_equity_millions"`
	TotalSharesClassAEquivalent float64   `json:"total_shares_class_a_equivalent"`
	CurrentPrice                float64   `json:"current_price"`
	AsOf                        string    `json:"as_of"`
	SourceURL                   string    `json:"source_url,omitempty"`
	FetchedAt                   time.Time `json:"fetched_at"`
}

// PriceTarget is one row of the PBR target ladder.
type PriceTarget struct {
	Multiplier   float64 `json:"multiplier"`
	ImpliedPrice float64 `json:"implied_price"`
}

// Valuation is derived from a FinancialSnapshot. It is never stored
// independently - recompute from the snapshot on demand.
type Valuation struct {
	BookValuePerShareClassA float64       `json:"book_value_per_share_class_a"`
	BookValuePerShareClassB float64       `json:"book_value_per_share_class_b"`
	CurrentPBR              float64       `json:"current_pbr"`
	Targets                 []PriceTarget `json:"targets"`
	Zone                    string        `json:"zone"`
}

// PbrDistributionBucket is one bucket of the historical PBR distribution.
// Buckets are mutually exclusive and collectively exhaustive; percentages
// sum to roughly 100 across the set but that is not enforced.
type PbrDistributionBucket struct {
	RangeLabel       string  `json:"range_label"`
	PercentageOfTime float64 `json:"percentage_of_time"`
}

// PbrDistribution wraps the bucket set with its fetch timestamp.
type PbrDistribution struct {
	Buckets   []PbrDistributionBucket `json:"buckets"`
	FetchedAt time.Time               `json:"fetched_at"`
}

// StrategySeries is one strategy's cumulative value over the backtest
// timeline, aligned index-for-index with BacktestResult.TimeLabels.
type StrategySeries struct {
	Name   string    `json:"name"`
	Values []float64 `json:"values"`
	ROIPct float64   `json:"roi_pct"`
}

// BacktestParams parameterizes a backtest request to the research oracle.
type BacktestParams struct {
	InitialCapital float64 `json:"initial_capital"`
	BuyThreshold   float64 `json:"buy_threshold"`
	SellThreshold  float64 `json:"sell_threshold"`
	AlternateAsset string  `json:"alternate_asset"`
}

// BacktestResult is produced wholesale by the research oracle. The series
// are untrusted external input: shape is checked (aligned lengths, required
// fields) but internal consistency (ROI vs values, trade count vs
// transitions) is not.
type BacktestResult struct {
	TimeLabels           []string         `json:"time_labels"`
	Strategies           []StrategySeries `json:"strategies"`
	TradeCount           int              `json:"trade_count"`
	OptimalBuyThreshold  float64          `json:"optimal_buy_threshold"`
	OptimalSellThreshold float64          `json:"optimal_sell_threshold"`
	Narrative            string           `json:"narrative"`
	Fallback             bool             `json:"fallback"`
	FetchedAt            time.Time        `json:"fetched_at"`
}

// ChartRow is one label's worth of chart-ready data: the label plus one
// value per strategy.
type ChartRow struct {
	Label  string    `json:"label"`
	Values []float64 `json:"values"`
}
