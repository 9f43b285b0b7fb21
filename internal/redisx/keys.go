package redisx

import "time"

const (
	// Rendered analytics summary: analytics:summary -> JSON body
	KeyAnalyticsSummary = "analytics:summary"
)

var (
	TTLSummaryCache = 30 * time.Second
)
