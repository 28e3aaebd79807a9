package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/fairval/internal/common"
	"github.com/bobmcallan/fairval/internal/models"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager(common.NewSilentLogger(), t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { m.Close() })
	return m
}

func TestAnalysisStore_SnapshotRoundTrip(t *testing.T) {
	m := newTestManager(t)
	store := m.AnalysisStore()
	ctx := context.Background()

	_, err := store.GetSnapshot(ctx)
	assert.ErrorIs(t, err, ErrNotCached)

	snapshot := &models.FinancialSnapshot{
		TotalEquityMillions:         649368,
		TotalSharesClassAEquivalent: 1438223,
		CurrentPrice:                470,
		AsOf:                        "2025-06-30",
		FetchedAt:                   time.Now().Truncate(time.Second),
	}
	require.NoError(t, store.SaveSnapshot(ctx, snapshot))

	got, err := store.GetSnapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, snapshot.TotalEquityMillions, got.TotalEquityMillions)
	assert.Equal(t, snapshot.AsOf, got.AsOf)
}

func TestAnalysisStore_LatestWins(t *testing.T) {
	m := newTestManager(t)
	store := m.AnalysisStore()
	ctx := context.Background()

	first := &models.FinancialSnapshot{TotalEquityMillions: 1, TotalSharesClassAEquivalent: 1, CurrentPrice: 1}
	second := &models.FinancialSnapshot{TotalEquityMillions: 2, TotalSharesClassAEquivalent: 2, CurrentPrice: 2}

	require.NoError(t, store.SaveSnapshot(ctx, first))
	require.NoError(t, store.SaveSnapshot(ctx, second))

	got, err := store.GetSnapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2.0, got.TotalEquityMillions, "the cache holds only the latest answer")
}

func TestAnalysisStore_DistributionAndBacktest(t *testing.T) {
	m := newTestManager(t)
	store := m.AnalysisStore()
	ctx := context.Background()

	_, err := store.GetDistribution(ctx)
	assert.ErrorIs(t, err, ErrNotCached)
	_, err = store.GetBacktest(ctx)
	assert.ErrorIs(t, err, ErrNotCached)

	dist := models.FallbackDistribution()
	require.NoError(t, store.SaveDistribution(ctx, dist))

	gotDist, err := store.GetDistribution(ctx)
	require.NoError(t, err)
	assert.Len(t, gotDist.Buckets, len(dist.Buckets))

	result := models.FallbackBacktest(10000)
	require.NoError(t, store.SaveBacktest(ctx, result))

	gotResult, err := store.GetBacktest(ctx)
	require.NoError(t, err)
	assert.Equal(t, result.TradeCount, gotResult.TradeCount)
	assert.True(t, gotResult.Fallback)
	require.Len(t, gotResult.Strategies, len(result.Strategies))
	assert.Equal(t, 10000.0, gotResult.Strategies[0].Values[0])
}
