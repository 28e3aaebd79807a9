package gemini

import (
	"fmt"

	"github.com/bobmcallan/fairval/internal/models"
)

// Prompts declare the exact output shape in text because search grounding
// and structured-output mode are mutually exclusive on the API.

const snapshotPrompt = `Search the web for Berkshire Hathaway's most recent quarterly report.
Find total shareholders' equity attributable to Berkshire shareholders (in millions of USD),
the total Class A equivalent share count, and the current BRK.B market price in USD.

Respond with ONLY a JSON object, no prose, exactly this shape:
{
  "total_equity_millions": <number>,
  "total_shares_class_a_equivalent": <number>,
  "current_price": <number>,
  "as_of": "<YYYY-MM-DD of the report period end>",
  "source_url": "<URL of the primary source>"
}`

const distributionPrompt = `Search the web for Berkshire Hathaway's (BRK.B) historical price-to-book
ratio over roughly the last ten years. Bucket the history into mutually exclusive PBR ranges and
estimate the percentage of time spent in each bucket. Percentages should sum to about 100.

Respond with ONLY a JSON object, no prose, exactly this shape:
{
  "buckets": [
    {"range_label": "<e.g. 1.2 - 1.3>", "percentage_of_time": <number 0-100>}
  ]
}`

// backtestPrompt builds the simulation request. The strategy thresholds are
// explicit parameters rather than baked into the instruction text.
func backtestPrompt(params models.BacktestParams) string {
	return fmt.Sprintf(`Search the web for historical yearly prices of BRK.B and %[4]s over roughly
the last ten years, plus Berkshire's book value per share history. Simulate three strategies, each
starting with %[1].0f USD:
1. "buy_and_hold": buy BRK.B at the start and hold.
2. "pbr_switch": hold BRK.B while its price-to-book ratio is at or below %[2].2f; when PBR rises
   to %[3].2f or above, rotate fully into %[4]s; rotate back into BRK.B when PBR falls to %[2].2f
   or below. Count each rotation as one trade.
3. "index_only": buy %[4]s at the start and hold.

Also estimate the historically optimal buy/sell PBR threshold pair for strategy 2.

Respond with ONLY a JSON object, no prose, exactly this shape:
{
  "time_labels": ["<year or period label>", ...],
  "strategies": [
    {"name": "buy_and_hold", "values": [<cumulative value per label>], "roi_pct": <number>},
    {"name": "pbr_switch", "values": [...], "roi_pct": <number>},
    {"name": "index_only", "values": [...], "roi_pct": <number>}
  ],
  "trade_count": <integer>,
  "optimal_buy_threshold": <number>,
  "optimal_sell_threshold": <number>,
  "narrative": "<two or three sentence summary of the outcome>"
}
Every "values" array must have exactly one entry per time label, and every strategy must start
at exactly %[1].0f.`,
		params.InitialCapital, params.BuyThreshold, params.SellThreshold, params.AlternateAsset)
}
