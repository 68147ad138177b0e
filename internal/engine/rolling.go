package engine

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"hearth/internal/core"
)

// RecordFetcher supplies records for an arbitrary window. The rolling
// builder uses it to request the two prior comparison windows, which are
// disjoint from the window the caller already fetched.
type RecordFetcher interface {
	RecordsInWindow(ctx context.Context, householdID string, w Window) ([]core.Record, error)
}

// rollingPeriods is the fixed point count of a rolling trend: the
// current window plus two prior windows of identical length.
const rollingPeriods = 3

// RollingPeriods builds the 3-point comparison series for a standard
// window, ordered oldest to newest.
//
// The step size is re-derived from the window's duration on every call:
// over 20 days the window shifts by whole calendar months, otherwise by
// 7-day multiples. The current period reuses currentTotal instead of
// re-aggregating; the two shifted periods are aggregated fresh from the
// fetcher, independently and concurrently.
func RollingPeriods(ctx context.Context, fetcher RecordFetcher, householdID string, w Window, currentTotal core.Money) ([]PeriodBucket, error) {
	monthlyStyle := w.Days() > 20

	totals := make([]core.Money, rollingPeriods)
	totals[0] = currentTotal

	g, gctx := errgroup.WithContext(ctx)
	for offset := 1; offset < rollingPeriods; offset++ {
		g.Go(func() error {
			shifted := shiftWindow(w, offset, monthlyStyle)
			records, err := fetcher.RecordsInWindow(gctx, householdID, shifted)
			if err != nil {
				return fmt.Errorf("fetch period at offset %d: %w", offset, err)
			}
			totals[offset] = Aggregate(records, nil).TotalSpent
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Oldest first: offset 2, 1, 0.
	out := make([]PeriodBucket, 0, rollingPeriods)
	for offset := rollingPeriods - 1; offset >= 0; offset-- {
		shifted := shiftWindow(w, offset, monthlyStyle)
		out = append(out, PeriodBucket{
			Label:  periodLabel(shifted, monthlyStyle),
			Amount: totals[offset],
		})
	}
	return out, nil
}

// shiftWindow moves both bounds back by offset steps. Monthly-style
// windows shift by calendar months so that month lengths stay honest;
// weekly-style windows shift by exact 7-day multiples.
func shiftWindow(w Window, offset int, monthlyStyle bool) Window {
	if offset == 0 {
		return w
	}
	if monthlyStyle {
		return Window{
			Start: addMonthsClamped(w.Start, -offset),
			End:   addMonthsClamped(w.End, -offset),
		}
	}
	days := -7 * offset
	return Window{
		Start: core.Date{Time: w.Start.AddDate(0, 0, days)},
		End:   core.Date{Time: w.End.AddDate(0, 0, days)},
	}
}

// addMonthsClamped shifts a date by whole months, clamping the day to
// the target month's length (Mar 31 minus one month is Feb 28, not a
// normalized Mar 3). Without the clamp a shifted monthly window would
// overlap the window it is being compared against.
func addMonthsClamped(d core.Date, months int) core.Date {
	y, m, day := d.Date()
	first := time.Date(y, m, 1, 0, 0, 0, 0, time.UTC).AddDate(0, months, 0)
	lastDay := first.AddDate(0, 1, -1).Day()
	if day > lastDay {
		day = lastDay
	}
	return core.NewDate(first.Year(), int(first.Month()), day)
}

// periodLabel derives the chart label from the period's midpoint date.
// Deliberately not "current"/"previous": several periods have to remain
// distinguishable side by side on an axis.
func periodLabel(w Window, monthlyStyle bool) string {
	mid := w.Start.Add(w.End.Sub(w.Start.Time) / 2)
	if monthlyStyle {
		return mid.Format("Jan")
	}
	return fmt.Sprintf("Wk %d %s", mid.Day(), mid.Format("Jan"))
}
