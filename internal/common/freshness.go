// Package common provides shared utilities for Fairval
package common

import "time"

// Freshness TTLs for cached analysis components
const (
	FreshnessSnapshot     = 24 * time.Hour
	FreshnessDistribution = 30 * 24 * time.Hour // historical distribution moves slowly
	FreshnessBacktest     = 7 * 24 * time.Hour
)

// FreshnessTTL carries the configured TTLs for the analysis cache.
type FreshnessTTL struct {
	Snapshot     time.Duration
	Distribution time.Duration
	Backtest     time.Duration
}

// DefaultFreshnessTTL returns the default TTL set.
func DefaultFreshnessTTL() FreshnessTTL {
	return FreshnessTTL{
		Snapshot:     FreshnessSnapshot,
		Distribution: FreshnessDistribution,
		Backtest:     FreshnessBacktest,
	}
}

// IsFresh returns true if the given timestamp is within the TTL
func IsFresh(updated time.Time, ttl time.Duration) bool {
	if updated.IsZero() {
		return false
	}
	return time.Since(updated) < ttl
}
