package engine

import (
	"context"

	"hearth/internal/core"
)

// TrendKind tags which mode produced a trend series.
type TrendKind string

const (
	// TrendBucketed: arbitrary custom window, split into day/week/month
	// buckets chosen from the window's duration.
	TrendBucketed TrendKind = "bucketed"
	// TrendRolling: standard window, compared against two prior windows
	// of identical length.
	TrendRolling TrendKind = "rolling"
)

// Trend is a tagged trend series. The constructors below are the only
// way to build one, so a custom window cannot end up on the rolling
// path or vice versa.
type Trend struct {
	Kind        TrendKind
	Granularity Granularity // set for bucketed trends only
	Points      []PeriodBucket
}

// BucketedTrend builds the trend for a custom window: granularity from
// duration, then one bucket per slice of observed activity.
func BucketedTrend(records []core.Record, w Window) Trend {
	g := SelectGranularity(w)
	return Trend{
		Kind:        TrendBucketed,
		Granularity: g,
		Points:      Bucketize(records, g),
	}
}

// RollingTrend builds the 3-point comparison trend for a standard
// window. currentTotal is the already-aggregated total for w.
func RollingTrend(ctx context.Context, fetcher RecordFetcher, householdID string, w Window, currentTotal core.Money) (Trend, error) {
	points, err := RollingPeriods(ctx, fetcher, householdID, w, currentTotal)
	if err != nil {
		return Trend{}, err
	}
	return Trend{Kind: TrendRolling, Points: points}, nil
}
