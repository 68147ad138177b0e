// Package engine implements the financial aggregation and trend engine.
//
// Every function here is a pure computation over an already-fetched batch
// of records: no component keeps state between invocations, and the
// current time is always an explicit parameter. Persistence, auth and
// presentation live elsewhere; the engine only produces numbers.
package engine

import (
	"errors"
	"time"

	"hearth/internal/core"
)

// ErrInvalidWindow is returned when a window's start falls after its end.
// Bounds are never silently swapped.
var ErrInvalidWindow = errors.New("invalid window: start after end")

// Window is an inclusive range of calendar dates.
type Window struct {
	Start core.Date
	End   core.Date
}

// NewWindow builds a validated window. Start must not be after end.
func NewWindow(start, end core.Date) (Window, error) {
	if start.After(end.Time) {
		return Window{}, ErrInvalidWindow
	}
	return Window{Start: start, End: end}, nil
}

// Days returns the window duration in whole days (end minus start, so a
// one-day window has duration zero).
func (w Window) Days() int {
	return int(w.End.Sub(w.Start.Time).Hours() / 24)
}

// Contains reports whether d falls inside the window. Both bounds are
// inclusive: a record dated exactly on End belongs to the window.
func (w Window) Contains(d core.Date) bool {
	return !d.Before(w.Start.Time) && !d.After(w.End.Time)
}

// Period names a canonical trailing window ending "now".
type Period string

const (
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
)

// StandardWindow derives the trailing weekly or monthly window ending on
// the given day. The clock is passed in so callers stay testable with
// fixed dates.
func StandardWindow(p Period, now time.Time) Window {
	end := core.DateOf(now)
	var start core.Date
	switch p {
	case PeriodWeek:
		start = core.Date{Time: end.AddDate(0, 0, -6)}
	default: // month
		start = core.Date{Time: end.AddDate(0, -1, 0).AddDate(0, 0, 1)}
	}
	return Window{Start: start, End: end}
}

// Granularity is the bucket size of a bucketed trend series.
type Granularity string

const (
	ByDay   Granularity = "day"
	ByWeek  Granularity = "week"
	ByMonth Granularity = "month"
)

// SelectGranularity picks the bucket size for a custom window from its
// duration: over 90 days by month, over 14 days by week, otherwise by
// day. Standard windows never come through here; the rolling builder
// applies its own coarser heuristic.
func SelectGranularity(w Window) Granularity {
	days := w.Days()
	switch {
	case days > 90:
		return ByMonth
	case days > 14:
		return ByWeek
	default:
		return ByDay
	}
}
