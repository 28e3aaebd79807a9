// Package valuation implements the deterministic PBR fair-value computation.
package valuation

import (
	"fmt"
	"sort"

	"github.com/bobmcallan/fairval/internal/models"
)

// classBConversionRatio is the fixed legal conversion ratio between Berkshire
// Class A and Class B shares. Not configurable.
const classBConversionRatio = 1500

// ZoneConfig partitions the PBR line into three contiguous bands:
// pbr <= BuyBelow, BuyBelow < pbr < SellAbove, pbr >= SellAbove.
type ZoneConfig struct {
	BuyBelow  float64
	SellAbove float64
}

// Validate checks that the thresholds describe contiguous, non-overlapping
// bands.
func (z ZoneConfig) Validate() error {
	if z.BuyBelow >= z.SellAbove {
		return fmt.Errorf("buy threshold %.4f must be below sell threshold %.4f", z.BuyBelow, z.SellAbove)
	}
	return nil
}

// Engine derives valuations from financial snapshots. It is pure and cannot
// fail given well-formed input; input validation happens in Compute.
type Engine struct {
	multipliers []float64
	zones       ZoneConfig
}

// NewEngine creates an engine with the given target-price multiplier ladder
// and zone thresholds. Multipliers are sorted ascending; the ladder emits
// exactly one target per multiplier.
func NewEngine(multipliers []float64, zones ZoneConfig) (*Engine, error) {
	if err := zones.Validate(); err != nil {
		return nil, err
	}
	if len(multipliers) == 0 {
		return nil, fmt.Errorf("at least one target multiplier is required")
	}

	sorted := make([]float64, len(multipliers))
	copy(sorted, multipliers)
	sort.Float64s(sorted)

	return &Engine{multipliers: sorted, zones: zones}, nil
}

// BookValuePerShareClassA computes book value per Class-A-equivalent share.
func BookValuePerShareClassA(totalEquityMillions, totalSharesClassAEquivalent float64) float64 {
	return totalEquityMillions * 1e6 / totalSharesClassAEquivalent
}

// BookValuePerShareClassB converts a Class A book value to Class B.
func BookValuePerShareClassB(bvpsClassA float64) float64 {
	return bvpsClassA / classBConversionRatio
}

// Targets computes the target ladder for a Class B book value. One output
// row per multiplier, no interpolation.
func (e *Engine) Targets(bvpsClassB float64) []models.PriceTarget {
	targets := make([]models.PriceTarget, len(e.multipliers))
	for i, m := range e.multipliers {
		targets[i] = models.PriceTarget{
			Multiplier:   m,
			ImpliedPrice: bvpsClassB * m,
		}
	}
	return targets
}

// Classify maps a PBR value to a recommendation zone. Total over the reals:
// every input maps to exactly one zone.
func (e *Engine) Classify(pbr float64) string {
	switch {
	case pbr <= e.zones.BuyBelow:
		return models.ZoneBuy
	case pbr >= e.zones.SellAbove:
		return models.ZoneRotate
	default:
		return models.ZoneHold
	}
}

// Compute derives a full Valuation from a snapshot. A zero or negative share
// count is rejected rather than letting NaN/Inf propagate into results.
func (e *Engine) Compute(snapshot *models.FinancialSnapshot) (*models.Valuation, error) {
	if snapshot == nil {
		return nil, fmt.Errorf("snapshot is nil")
	}
	if snapshot.TotalSharesClassAEquivalent <= 0 {
		return nil, fmt.Errorf("share count must be positive, got %.0f", snapshot.TotalSharesClassAEquivalent)
	}

	bvpsA := BookValuePerShareClassA(snapshot.TotalEquityMillions, snapshot.TotalSharesClassAEquivalent)
	bvpsB := BookValuePerShareClassB(bvpsA)
	pbr := snapshot.CurrentPrice / bvpsB

	return &models.Valuation{
		BookValuePerShareClassA: bvpsA,
		BookValuePerShareClassB: bvpsB,
		CurrentPBR:              pbr,
		Targets:                 e.Targets(bvpsB),
		Zone:                    e.Classify(pbr),
	}, nil
}

// TargetFor computes a single ad-hoc target price for an arbitrary
// multiplier. Backs the dashboard's multiplier slider.
func (e *Engine) TargetFor(bvpsClassB, multiplier float64) models.PriceTarget {
	return models.PriceTarget{
		Multiplier:   multiplier,
		ImpliedPrice: bvpsClassB * multiplier,
	}
}
