package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFallbackBacktest_SeededWithCapital(t *testing.T) {
	for _, capital := range []float64{10000, 50000, 1} {
		result := FallbackBacktest(capital)

		require.NotEmpty(t, result.Strategies)
		for _, strategy := range result.Strategies {
			require.Len(t, strategy.Values, len(result.TimeLabels),
				"strategy %s must align with time labels", strategy.Name)
			assert.Equal(t, capital, strategy.Values[0],
				"strategy %s must start at the initial capital", strategy.Name)
		}
	}
}

func TestFallbackBacktest_Shape(t *testing.T) {
	result := FallbackBacktest(10000)

	assert.True(t, result.Fallback)
	assert.GreaterOrEqual(t, result.TradeCount, 0)
	assert.NotEmpty(t, result.Narrative)
	assert.Less(t, result.OptimalBuyThreshold, result.OptimalSellThreshold)
	assert.False(t, result.FetchedAt.IsZero())
}

func TestFallbackDistribution(t *testing.T) {
	dist := FallbackDistribution()

	require.NotEmpty(t, dist.Buckets)

	var total float64
	for _, b := range dist.Buckets {
		assert.NotEmpty(t, b.RangeLabel)
		assert.GreaterOrEqual(t, b.PercentageOfTime, 0.0)
		total += b.PercentageOfTime
	}
	// Sums to roughly 100, not strictly enforced
	assert.InDelta(t, 100, total, 5)
}
