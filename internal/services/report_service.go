package services

import (
	"context"
	"fmt"
	"time"

	"hearth/internal/core"
	"hearth/internal/engine"
	"hearth/internal/ledger"
)

// ReportService runs the aggregation engine over the store.
type ReportService struct {
	store ledger.Store
}

func NewReportService(store ledger.Store) *ReportService {
	return &ReportService{store: store}
}

// SnapshotReport bundles everything the snapshot endpoint returns.
type SnapshotReport struct {
	Window   engine.Window
	Summary  engine.Summary
	Snapshot engine.Snapshot
	Income   []engine.IncomeLine
}

// Snapshot aggregates a household's records over the window and
// composes the financial snapshot against normalized monthly income.
// memberIDs narrows the aggregation; nil means the whole household.
func (s *ReportService) Snapshot(ctx context.Context, householdID string, w engine.Window, memberIDs []string) (SnapshotReport, error) {
	records, err := s.store.RecordsInRange(ctx, householdID, w.Start, w.End, memberIDs)
	if err != nil {
		return SnapshotReport{}, fmt.Errorf("fetch records: %w", err)
	}

	roster, err := s.store.Members(ctx, householdID)
	if err != nil {
		return SnapshotReport{}, fmt.Errorf("fetch roster: %w", err)
	}
	if len(memberIDs) > 0 {
		roster = filterRoster(roster, memberIDs)
	}

	sources, err := s.store.IncomeSources(ctx, householdID)
	if err != nil {
		return SnapshotReport{}, fmt.Errorf("fetch income sources: %w", err)
	}

	summary := engine.Aggregate(records, roster)
	monthlyIncome, lines := engine.MonthlyIncome(sources)

	return SnapshotReport{
		Window:   w,
		Summary:  summary,
		Snapshot: engine.ComposeSnapshot(summary, monthlyIncome),
		Income:   lines,
	}, nil
}

// CustomTrend buckets a custom window's records at the granularity the
// window's length selects.
func (s *ReportService) CustomTrend(ctx context.Context, householdID string, w engine.Window) (engine.Trend, error) {
	records, err := s.store.RecordsInRange(ctx, householdID, w.Start, w.End, nil)
	if err != nil {
		return engine.Trend{}, fmt.Errorf("fetch records: %w", err)
	}
	return engine.BucketedTrend(records, w), nil
}

// StandardTrend builds the three-period rolling comparison for a
// standard week or month window ending at now.
func (s *ReportService) StandardTrend(ctx context.Context, householdID string, period engine.Period, now time.Time) (engine.Trend, engine.Window, error) {
	w := engine.StandardWindow(period, now)

	records, err := s.store.RecordsInRange(ctx, householdID, w.Start, w.End, nil)
	if err != nil {
		return engine.Trend{}, engine.Window{}, fmt.Errorf("fetch records: %w", err)
	}
	currentTotal := engine.Aggregate(records, nil).TotalSpent

	trend, err := engine.RollingTrend(ctx, storeFetcher{s.store}, householdID, w, currentTotal)
	if err != nil {
		return engine.Trend{}, engine.Window{}, err
	}
	return trend, w, nil
}

// storeFetcher adapts the ledger lister to the engine's fetcher port.
type storeFetcher struct {
	lister ledger.RecordLister
}

func (f storeFetcher) RecordsInWindow(ctx context.Context, householdID string, w engine.Window) ([]core.Record, error) {
	return f.lister.RecordsInRange(ctx, householdID, w.Start, w.End, nil)
}

func filterRoster(roster []core.Member, memberIDs []string) []core.Member {
	wanted := make(map[string]bool, len(memberIDs))
	for _, id := range memberIDs {
		wanted[id] = true
	}
	var out []core.Member
	for _, m := range roster {
		if wanted[m.ID] {
			out = append(out, m)
		}
	}
	return out
}
