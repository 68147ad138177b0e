package http

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Report responses are cached per household. Cache keys start with the
// household id followed by a colon so any write to that household can
// drop all of its cached reports in one DeletePrefix call.

func snapshotCacheKey(householdID string, q ReportQuery) string {
	return fmt.Sprintf("%s:snapshot:%s:%s:%s",
		householdID, q.Window.Start, q.Window.End, strings.Join(q.MemberIDs, ","))
}

func trendCacheKey(householdID string, q ReportQuery) string {
	mode := string(q.Period)
	if q.Custom {
		mode = "custom"
	}
	return fmt.Sprintf("%s:trend:%s:%s:%s", householdID, mode, q.Window.Start, q.Window.End)
}

func (s *Server) handleSnapshotReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	q, err := ParseReportQuery(r.URL.Query(), time.Now())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	householdID := s.householdID(r)
	key := snapshotCacheKey(householdID, q)
	if cached, ok := s.snapshotCache.Get(key); ok {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	report, err := s.reports.Snapshot(ctx, householdID, q.Window, q.MemberIDs)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to build snapshot", "household_id", householdID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to build snapshot")
		return
	}

	resp := snapshotView(report)
	s.snapshotCache.Set(key, resp)
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleTrendReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	q, err := ParseReportQuery(r.URL.Query(), time.Now())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(q.MemberIDs) > 0 {
		writeError(w, http.StatusBadRequest, "trend reports cover the whole household; members is not supported")
		return
	}

	householdID := s.householdID(r)
	key := trendCacheKey(householdID, q)
	if cached, ok := s.trendCache.Get(key); ok {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	var resp trendResponse
	if q.Custom {
		trend, err := s.reports.CustomTrend(ctx, householdID, q.Window)
		if err != nil {
			s.logger.ErrorContext(ctx, "Failed to build trend", "household_id", householdID, "error", err)
			writeError(w, http.StatusInternalServerError, "failed to build trend")
			return
		}
		resp = trendView(trend, q.Window)
	} else {
		trend, window, err := s.reports.StandardTrend(ctx, householdID, q.Period, time.Now())
		if err != nil {
			s.logger.ErrorContext(ctx, "Failed to build trend", "household_id", householdID, "error", err)
			writeError(w, http.StatusInternalServerError, "failed to build trend")
			return
		}
		resp = trendView(trend, window)
	}

	s.trendCache.Set(key, resp)
	writeJSON(w, http.StatusOK, resp)
}
