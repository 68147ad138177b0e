package http

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"hearth/internal/core"
	"hearth/internal/engine"
)

// ReportQuery is the parsed form of the report endpoints' query string.
// Custom distinguishes an explicit start/end window from a standard
// period window; the two feed different trend modes.
type ReportQuery struct {
	Window    engine.Window
	Period    engine.Period
	Custom    bool
	MemberIDs []string
}

// ParseReportQuery reads window and member-filter parameters.
//
// A window is either custom (both start and end, YYYY-MM-DD, inclusive)
// or standard (period=week|month ending at now, defaulting to month).
// Mixing the two, or providing only one bound, is an error.
func ParseReportQuery(values url.Values, now time.Time) (ReportQuery, error) {
	q := ReportQuery{MemberIDs: parseMembersParam(values.Get("members"))}

	startStr := strings.TrimSpace(values.Get("start"))
	endStr := strings.TrimSpace(values.Get("end"))

	if (startStr == "") != (endStr == "") {
		return ReportQuery{}, errors.New("start and end must be provided together")
	}

	if startStr != "" {
		if values.Get("period") != "" {
			return ReportQuery{}, errors.New("period cannot be combined with start/end")
		}

		start, err := core.ParseDate(startStr)
		if err != nil {
			return ReportQuery{}, fmt.Errorf("invalid start date %q (want YYYY-MM-DD)", startStr)
		}
		end, err := core.ParseDate(endStr)
		if err != nil {
			return ReportQuery{}, fmt.Errorf("invalid end date %q (want YYYY-MM-DD)", endStr)
		}

		w, err := engine.NewWindow(start, end)
		if err != nil {
			return ReportQuery{}, err
		}
		q.Window = w
		q.Custom = true
		return q, nil
	}

	period := engine.Period(strings.TrimSpace(values.Get("period")))
	if period == "" {
		period = engine.PeriodMonth
	}
	switch period {
	case engine.PeriodWeek, engine.PeriodMonth:
	default:
		return ReportQuery{}, fmt.Errorf("invalid period %q (want week or month)", period)
	}

	q.Period = period
	q.Window = engine.StandardWindow(period, now)
	return q, nil
}

// parseMembersParam splits a comma-separated member filter, dropping
// blanks. Empty input means no filter.
func parseMembersParam(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var ids []string
	for _, part := range strings.Split(raw, ",") {
		if id := strings.TrimSpace(part); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// sanitizeInput trims whitespace and strips control characters from
// user-supplied text fields.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' {
			return -1
		}
		return r
	}, s)
}
