// Package worker consumes record-change messages and exports a fresh
// month-to-date digest for the affected household.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"hearth/internal/amqp"
	"hearth/internal/engine"
	"hearth/internal/services"
	"hearth/internal/sheets"
)

type DigestWorker struct {
	reports *services.ReportService
	sink    sheets.DigestWriter

	// now is swappable in tests.
	now func() time.Time
}

func NewDigestWorker(reports *services.ReportService, sink sheets.DigestWriter) *DigestWorker {
	return &DigestWorker{
		reports: reports,
		sink:    sink,
		now:     time.Now,
	}
}

// HandleRecordChange recomputes the household's month-to-date snapshot
// and appends it to the digest sink. Errors propagate so the consumer
// can requeue the message.
func (w *DigestWorker) HandleRecordChange(ctx context.Context, msg *amqp.RecordChangeMessage) error {
	slog.InfoContext(ctx, "Processing record change",
		"record_id", msg.RecordID,
		"household_id", msg.HouseholdID,
		"action", msg.Action)

	now := w.now()
	window := engine.StandardWindow(engine.PeriodMonth, now)

	report, err := w.reports.Snapshot(ctx, msg.HouseholdID, window, nil)
	if err != nil {
		return fmt.Errorf("build snapshot for household %s: %w", msg.HouseholdID, err)
	}

	row := sheets.DigestRow{
		GeneratedAt:   now,
		HouseholdID:   msg.HouseholdID,
		WindowStart:   window.Start,
		WindowEnd:     window.End,
		TotalSpent:    report.Snapshot.TotalSpent,
		NeedsTotal:    report.Snapshot.NeedsTotal,
		WantsTotal:    report.Snapshot.WantsTotal,
		SavingsTotal:  report.Snapshot.SavingsTotal,
		MonthlyIncome: report.Snapshot.MonthlyIncome,
		SavingsRate:   report.Snapshot.SavingsRate,
	}

	ref, err := w.sink.AppendDigest(ctx, row)
	if err != nil {
		return fmt.Errorf("append digest: %w", err)
	}

	slog.InfoContext(ctx, "Digest exported",
		"household_id", msg.HouseholdID,
		"digest_ref", ref,
		"total_spent_cents", row.TotalSpent.Cents)

	return nil
}
