package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/fairval/internal/models"
)

func TestProjectForChart_Shape(t *testing.T) {
	result := &models.BacktestResult{
		TimeLabels: []string{"2023", "2024", "2025"},
		Strategies: []models.StrategySeries{
			{Name: "buy_and_hold", Values: []float64{100, 110, 125}},
			{Name: "pbr_switch", Values: []float64{100, 115, 132}},
		},
	}

	rows := ProjectForChart(result)
	require.Len(t, rows, 3, "one row per time label")

	for i, row := range rows {
		assert.Equal(t, result.TimeLabels[i], row.Label)
		assert.Len(t, row.Values, 2, "one value per strategy")
	}
	assert.Equal(t, []float64{110, 115}, rows[1].Values)
}

func TestProjectForChart_Idempotent(t *testing.T) {
	result := &models.BacktestResult{
		TimeLabels: []string{"a", "b"},
		Strategies: []models.StrategySeries{
			{Name: "s1", Values: []float64{1, 2}},
		},
	}

	first := ProjectForChart(result)
	second := ProjectForChart(result)
	assert.Equal(t, first, second)

	// Input is not mutated
	assert.Equal(t, []float64{1, 2}, result.Strategies[0].Values)
}

func TestProjectForChart_EmptyInput(t *testing.T) {
	assert.Empty(t, ProjectForChart(nil))
	assert.Empty(t, ProjectForChart(&models.BacktestResult{}))
}

func TestProjectForChart_ShortSeriesDoesNotPanic(t *testing.T) {
	result := &models.BacktestResult{
		TimeLabels: []string{"a", "b", "c"},
		Strategies: []models.StrategySeries{
			{Name: "truncated", Values: []float64{5}},
		},
	}

	rows := ProjectForChart(result)
	require.Len(t, rows, 3)
	assert.Equal(t, 5.0, rows[0].Values[0])
	assert.Equal(t, 0.0, rows[2].Values[0])
}
