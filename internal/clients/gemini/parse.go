package gemini

import (
	"encoding/json"
	"fmt"
	"time"

	jsonrepair "github.com/RealAlexandreAI/json-repair"

	"github.com/bobmcallan/fairval/internal/models"
)

// repairAndUnmarshal repairs common model-output JSON defects (markdown
// fences, trailing commas, single quotes) before unmarshalling.
func repairAndUnmarshal(text string, v interface{}) error {
	repaired, err := jsonrepair.RepairJSON(text)
	if err != nil {
		return fmt.Errorf("unparseable response: %w", err)
	}
	if err := json.Unmarshal([]byte(repaired), v); err != nil {
		return fmt.Errorf("unexpected response shape: %w", err)
	}
	return nil
}

// parseSnapshot parses and shape-checks a financial snapshot response.
func parseSnapshot(text string) (*models.FinancialSnapshot, error) {
	var snapshot models.FinancialSnapshot
	if err := repairAndUnmarshal(text, &snapshot); err != nil {
		return nil, err
	}

	if snapshot.TotalEquityMillions <= 0 {
		return nil, fmt.Errorf("missing or non-positive total_equity_millions")
	}
	if snapshot.TotalSharesClassAEquivalent <= 0 {
		return nil, fmt.Errorf("missing or non-positive total_shares_class_a_equivalent")
	}
	if snapshot.CurrentPrice <= 0 {
		return nil, fmt.Errorf("missing or non-positive current_price")
	}

	snapshot.FetchedAt = time.Now()
	return &snapshot, nil
}

// parseDistribution parses and shape-checks a PBR distribution response.
func parseDistribution(text string) (*models.PbrDistribution, error) {
	var dist models.PbrDistribution
	if err := repairAndUnmarshal(text, &dist); err != nil {
		return nil, err
	}

	if len(dist.Buckets) == 0 {
		return nil, fmt.Errorf("no distribution buckets returned")
	}
	for i, b := range dist.Buckets {
		if b.RangeLabel == "" {
			return nil, fmt.Errorf("bucket %d has no range label", i)
		}
	}

	dist.FetchedAt = time.Now()
	return &dist, nil
}

// parseBacktest parses and shape-checks a backtest response. Series are
// untrusted: only alignment and required fields are checked, never internal
// consistency (ROI vs values, trade count vs transitions).
func parseBacktest(text string) (*models.BacktestResult, error) {
	var result models.BacktestResult
	if err := repairAndUnmarshal(text, &result); err != nil {
		return nil, err
	}

	if len(result.TimeLabels) == 0 {
		return nil, fmt.Errorf("no time labels returned")
	}
	if len(result.Strategies) == 0 {
		return nil, fmt.Errorf("no strategy series returned")
	}
	for _, s := range result.Strategies {
		if s.Name == "" {
			return nil, fmt.Errorf("strategy with empty name")
		}
		if len(s.Values) != len(result.TimeLabels) {
			return nil, fmt.Errorf("strategy %s has %d values for %d time labels",
				s.Name, len(s.Values), len(result.TimeLabels))
		}
	}
	if result.TradeCount < 0 {
		return nil, fmt.Errorf("negative trade count")
	}

	result.Fallback = false
	result.FetchedAt = time.Now()
	return &result, nil
}
