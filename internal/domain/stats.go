package domain

import (
	"context"
	"time"
)

// ViewStat is one path's hit count as reported by the analytics collector.
type ViewStat struct {
	App  string `json:"app"`
	Path string `json:"uri"`
	Hits int64  `json:"hits"`
}

// AnalyticsCollector queries view hits from the external stats service.
// It is soft-failable: callers degrade to zero views when it errors.
type AnalyticsCollector interface {
	QueryHits(ctx context.Context, start, end time.Time, paths []string, unique bool) ([]ViewStat, error)
}
