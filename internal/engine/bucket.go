package engine

import (
	"fmt"
	"sort"

	"hearth/internal/core"
)

// PeriodBucket is one point of a trend series. Label is a human-facing
// chart-axis string, not a machine key.
type PeriodBucket struct {
	Label  string
	Amount core.Money
}

// Bucketize groups records into time buckets of the given granularity
// and sums amounts per bucket, oldest first.
//
// Week buckets anchor to the Monday of the record's ISO week. Buckets
// with no records are not synthesized: only observed activity produces
// a point, so a quiet week simply has no entry in the series.
func Bucketize(records []core.Record, g Granularity) []PeriodBucket {
	type bucket struct {
		key    string
		label  string
		amount core.Money
	}
	byKey := make(map[string]*bucket)

	for _, r := range records {
		key, label := bucketKey(r.Date, g)
		b, ok := byKey[key]
		if !ok {
			b = &bucket{key: key, label: label}
			byKey[key] = b
		}
		b.amount = b.amount.Add(r.Amount)
	}

	buckets := make([]*bucket, 0, len(byKey))
	for _, b := range byKey {
		buckets = append(buckets, b)
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].key < buckets[j].key })

	out := make([]PeriodBucket, len(buckets))
	for i, b := range buckets {
		out[i] = PeriodBucket{Label: b.label, Amount: b.amount}
	}
	return out
}

func bucketKey(d core.Date, g Granularity) (key, label string) {
	switch g {
	case ByMonth:
		return d.Format("2006-01"), d.Format("Jan 06")
	case ByWeek:
		monday := WeekMonday(d)
		return monday.Format("2006-01-02"), fmt.Sprintf("Wk %d %s", monday.Day(), monday.Format("Jan"))
	default: // ByDay
		return d.Format("2006-01-02"), d.Format("Mon 2")
	}
}

// WeekMonday returns the Monday of the ISO week containing d. Sunday
// counts as weekday 7, so it maps back to the preceding Monday.
func WeekMonday(d core.Date) core.Date {
	weekday := int(d.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	return core.Date{Time: d.AddDate(0, 0, -(weekday - 1))}
}
