package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"hearth/internal/core"
	"hearth/internal/ledger"
)

// RecurringProcessor materializes due recurring templates into records.
type RecurringProcessor struct {
	store   ledger.Store
	records *RecordService
}

// NewRecurringProcessor creates a new recurring template processor.
func NewRecurringProcessor(store ledger.Store, records *RecordService) *RecurringProcessor {
	return &RecurringProcessor{
		store:   store,
		records: records,
	}
}

// ProcessDueTemplates materializes every template that is due at now.
// A failing template is logged and skipped; the rest still run.
func (p *RecurringProcessor) ProcessDueTemplates(ctx context.Context, now time.Time) (int, error) {
	if p.store == nil || p.records == nil {
		return 0, fmt.Errorf("processor not properly initialized")
	}

	today := core.DateOf(now)
	templates, err := p.store.ActiveTemplates(ctx, today)
	if err != nil {
		return 0, fmt.Errorf("get active templates: %w", err)
	}

	slog.InfoContext(ctx, "Processing recurring templates",
		"total_active", len(templates),
		"processing_date", today.String())

	processedCount := 0

	for _, tpl := range templates {
		lastRun, err := p.store.TemplateLastRun(ctx, tpl.ID)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to get template last run",
				"template_id", tpl.ID,
				"error", err)
			continue
		}

		checker, err := GetDuenessChecker(tpl.Every)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to resolve dueness checker",
				"template_id", tpl.ID,
				"recurrence", tpl.Every,
				"error", err)
			continue
		}

		if !checker.IsDue(lastRun.Time, now, tpl.StartsOn) {
			continue
		}

		record := core.Record{
			HouseholdID: tpl.HouseholdID,
			MemberID:    tpl.MemberID,
			Date:        today,
			Description: tpl.Description,
			Amount:      tpl.Amount,
			Type:        tpl.Type,
			Category:    tpl.Category,
		}

		if _, err := p.records.CreateRecord(ctx, record); err != nil {
			slog.ErrorContext(ctx, "Failed to create record from template",
				"template_id", tpl.ID,
				"description", tpl.Description,
				"error", err)
			continue
		}

		if err := p.store.MarkTemplateRun(ctx, tpl.ID, today); err != nil {
			// The record exists; next tick may duplicate it, which is
			// still better than dropping it.
			slog.ErrorContext(ctx, "Failed to mark template run",
				"template_id", tpl.ID,
				"error", err)
		}

		processedCount++
		slog.InfoContext(ctx, "Created record from recurring template",
			"template_id", tpl.ID,
			"description", tpl.Description,
			"amount_cents", tpl.Amount.Cents,
			"recurrence", tpl.Every)
	}

	slog.InfoContext(ctx, "Recurring template processing complete",
		"processed", processedCount,
		"total_checked", len(templates))

	return processedCount, nil
}
