// Package report renders chart PNGs from analysis results.
package report

import (
	"bytes"
	"fmt"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/bobmcallan/fairval/internal/common"
	"github.com/bobmcallan/fairval/internal/interfaces"
	"github.com/bobmcallan/fairval/internal/models"
)

// Strategy line colors, cycled when the oracle returns more series than
// expected.
var seriesColors = []string{
	"2563eb", // blue-600
	"16a34a", // green-600
	"9ca3af", // gray-400
	"dc2626", // red-600
}

// Service implements ReportService.
type Service struct {
	logger *common.Logger
}

// NewService creates a new report service.
func NewService(logger *common.Logger) *Service {
	return &Service{logger: logger}
}

// RenderBacktestChart renders a PNG line chart of cumulative strategy values
// over the backtest timeline. Returns raw PNG bytes.
func (s *Service) RenderBacktestChart(result *models.BacktestResult) ([]byte, error) {
	if result == nil || len(result.TimeLabels) < 2 {
		return nil, fmt.Errorf("need at least 2 data points to render")
	}
	if len(result.Strategies) == 0 {
		return nil, fmt.Errorf("no strategy series to render")
	}

	xValues := make([]float64, len(result.TimeLabels))
	ticks := make([]chart.Tick, len(result.TimeLabels))
	for i, label := range result.TimeLabels {
		xValues[i] = float64(i)
		ticks[i] = chart.Tick{Value: float64(i), Label: label}
	}

	series := make([]chart.Series, 0, len(result.Strategies))
	for i, strategy := range result.Strategies {
		yValues := strategy.Values
		if len(yValues) > len(xValues) {
			yValues = yValues[:len(xValues)]
		}
		series = append(series, chart.ContinuousSeries{
			Name: strategy.Name,
			Style: chart.Style{
				StrokeColor: drawing.ColorFromHex(seriesColors[i%len(seriesColors)]),
				StrokeWidth: 2.0,
			},
			XValues: xValues[:len(yValues)],
			YValues: yValues,
		})
	}

	graph := chart.Chart{
		Title:  "Strategy Backtest",
		Width:  900,
		Height: 400,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		XAxis: chart.XAxis{
			Ticks: ticks,
		},
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("$%.0fk", f/1000)
				}
				return ""
			},
		},
		Series: series,
	}

	graph.Elements = []chart.Renderable{
		chart.LegendLeft(&graph),
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}

	return buf.Bytes(), nil
}

// RenderDistributionChart renders a PNG bar chart of the historical PBR
// distribution. Returns raw PNG bytes.
func (s *Service) RenderDistributionChart(dist *models.PbrDistribution) ([]byte, error) {
	if dist == nil || len(dist.Buckets) == 0 {
		return nil, fmt.Errorf("no distribution buckets to render")
	}

	bars := make([]chart.Value, len(dist.Buckets))
	for i, b := range dist.Buckets {
		bars[i] = chart.Value{
			Label: b.RangeLabel,
			Value: b.PercentageOfTime,
			Style: chart.Style{
				FillColor:   drawing.ColorFromHex("2563eb"),
				StrokeColor: drawing.ColorFromHex("2563eb"),
			},
		}
	}

	graph := chart.BarChart{
		Title:    "Historical PBR Distribution",
		Width:    900,
		Height:   400,
		BarWidth: 60,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%.0f%%", f)
				}
				return ""
			},
		},
		Bars: bars,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}

	return buf.Bytes(), nil
}

// Ensure Service implements ReportService
var _ interfaces.ReportService = (*Service)(nil)
