package models

import "time"

// Fallback payloads used when the research oracle fails. A single failed
// attempt substitutes these immediately - no retry.

// FallbackDistribution returns the static historical PBR distribution used
// when the oracle is unavailable.
func FallbackDistribution() *PbrDistribution {
	return &PbrDistribution{
		Buckets: []PbrDistributionBucket{
			{RangeLabel: "< 1.1", PercentageOfTime: 4},
			{RangeLabel: "1.1 - 1.2", PercentageOfTime: 11},
			{RangeLabel: "1.2 - 1.3", PercentageOfTime: 19},
			{RangeLabel: "1.3 - 1.4", PercentageOfTime: 26},
			{RangeLabel: "1.4 - 1.5", PercentageOfTime: 22},
			{RangeLabel: "1.5 - 1.6", PercentageOfTime: 13},
			{RangeLabel: "> 1.6", PercentageOfTime: 5},
		},
		FetchedAt: time.Now(),
	}
}

// fallbackGrowth holds per-strategy cumulative growth factors for the static
// backtest timeline. Values start at 1.0 so every strategy begins at exactly
// the requested capital.
var fallbackGrowth = []struct {
	name   string
	roiPct float64
	curve  []float64
}{
	{
		name:   "buy_and_hold",
		roiPct: 87.0,
		curve:  []float64{1.00, 1.06, 1.11, 1.04, 1.18, 1.27, 1.33, 1.42, 1.55, 1.63, 1.74, 1.87},
	},
	{
		name:   "pbr_switch",
		roiPct: 112.0,
		curve:  []float64{1.00, 1.07, 1.15, 1.12, 1.29, 1.41, 1.50, 1.62, 1.78, 1.91, 2.02, 2.12},
	},
	{
		name:   "index_only",
		roiPct: 71.0,
		curve:  []float64{1.00, 1.05, 1.09, 1.02, 1.13, 1.21, 1.28, 1.36, 1.46, 1.54, 1.62, 1.71},
	},
}

var fallbackTimeLabels = []string{
	"2014", "2015", "2016", "2017", "2018", "2019",
	"2020", "2021", "2022", "2023", "2024", "2025",
}

// FallbackBacktest returns the static backtest result seeded with the given
// initial capital.
func FallbackBacktest(initialCapital float64) *BacktestResult {
	strategies := make([]StrategySeries, 0, len(fallbackGrowth))
	for _, g := range fallbackGrowth {
		values := make([]float64, len(g.curve))
		for i, f := range g.curve {
			values[i] = initialCapital * f
		}
		strategies = append(strategies, StrategySeries{
			Name:   g.name,
			Values: values,
			ROIPct: g.roiPct,
		})
	}

	return &BacktestResult{
		TimeLabels:           fallbackTimeLabels,
		Strategies:           strategies,
		TradeCount:           9,
		OptimalBuyThreshold:  1.45,
		OptimalSellThreshold: 1.55,
		Narrative: "Static estimate: switching from BRK.B into the index ETF above the sell " +
			"threshold and back below the buy threshold has historically outperformed " +
			"holding either asset alone. Live analysis was unavailable.",
		Fallback:  true,
		FetchedAt: time.Now(),
	}
}
