package report

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/fairval/internal/common"
	"github.com/bobmcallan/fairval/internal/models"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G'}

func TestRenderBacktestChart(t *testing.T) {
	svc := NewService(common.NewSilentLogger())

	result := models.FallbackBacktest(10000)
	png, err := svc.RenderBacktestChart(result)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, pngHeader), "output should be a PNG")
}

func TestRenderBacktestChart_InsufficientData(t *testing.T) {
	svc := NewService(common.NewSilentLogger())

	_, err := svc.RenderBacktestChart(nil)
	assert.Error(t, err)

	_, err = svc.RenderBacktestChart(&models.BacktestResult{
		TimeLabels: []string{"only one"},
		Strategies: []models.StrategySeries{{Name: "s", Values: []float64{1}}},
	})
	assert.Error(t, err)

	_, err = svc.RenderBacktestChart(&models.BacktestResult{
		TimeLabels: []string{"a", "b"},
	})
	assert.Error(t, err, "no strategy series")
}

func TestRenderDistributionChart(t *testing.T) {
	svc := NewService(common.NewSilentLogger())

	png, err := svc.RenderDistributionChart(models.FallbackDistribution())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, pngHeader))

	_, err = svc.RenderDistributionChart(nil)
	assert.Error(t, err)

	_, err = svc.RenderDistributionChart(&models.PbrDistribution{})
	assert.Error(t, err)
}
