package usecase

import "time"

const (
	// summaryCachePrefix namespaces cached sheet summaries.
	summaryCachePrefix = "sheet:summary:"

	// summaryCacheTTL bounds staleness for summaries served from cache.
	summaryCacheTTL = 5 * time.Minute
)

func summaryCacheKey(sheetID string) string {
	return summaryCachePrefix + sheetID
}
