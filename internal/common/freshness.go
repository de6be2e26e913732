// Package common provides shared utilities for answerd.
package common

import "time"

// Freshness TTLs for cached data. Price history is upstream fact data that
// only gains a new bar once a day, but intraday closes shift, so the cache
// window stays short. Resolved answers are cheap to rebuild and only cached
// to absorb repeat queries.
const (
	FreshnessPriceSeries = 1 * time.Hour
	FreshnessAnswer      = 5 * time.Minute
)

// IsFresh returns true if the given timestamp is within the TTL.
func IsFresh(updated time.Time, ttl time.Duration) bool {
	if updated.IsZero() {
		return false
	}
	return time.Since(updated) < ttl
}
