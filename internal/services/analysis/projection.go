package analysis

import "github.com/bobmcallan/fairval/internal/models"

// ProjectForChart zips the backtest time labels with each strategy series
// into one row per label, for consumption by a charting surface. Pure and
// total: nil or empty input yields an empty slice, and a label index beyond
// a (malformed) short series yields a zero value rather than a panic.
func ProjectForChart(result *models.BacktestResult) []models.ChartRow {
	if result == nil || len(result.TimeLabels) == 0 {
		return []models.ChartRow{}
	}

	rows := make([]models.ChartRow, len(result.TimeLabels))
	for i, label := range result.TimeLabels {
		values := make([]float64, len(result.Strategies))
		for j, strategy := range result.Strategies {
			if i < len(strategy.Values) {
				values[j] = strategy.Values[i]
			}
		}
		rows[i] = models.ChartRow{Label: label, Values: values}
	}
	return rows
}
