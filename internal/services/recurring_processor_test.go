package services

import (
	"context"
	"testing"
	"time"

	"hearth/internal/core"
	"hearth/internal/memory"
)

func TestRecurringProcessor_ProcessDueTemplates(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	records := NewRecordService(store, nil)
	processor := NewRecurringProcessor(store, records)

	addTemplate := func(description string, every core.Recurrence, startsOn core.Date) int64 {
		id, err := store.CreateTemplate(ctx, core.RecurringTemplate{
			HouseholdID: "hh-1",
			MemberID:    "alice",
			Description: description,
			Amount:      core.Money{Cents: 120000},
			Type:        core.Need,
			Category:    "Housing",
			Every:       every,
			StartsOn:    startsOn,
			Active:      true,
		})
		if err != nil {
			t.Fatalf("CreateTemplate(%s) error = %v", description, err)
		}
		return id
	}

	rentID := addTemplate("Rent", core.Monthly, core.NewDate(2026, 1, 1))
	addTemplate("Cleaning", core.Weekly, core.NewDate(2026, 1, 1))

	// Not started yet, must not fire.
	addTemplate("Future", core.Monthly, core.NewDate(2026, 6, 1))

	now := time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC)

	processed, err := processor.ProcessDueTemplates(ctx, now)
	if err != nil {
		t.Fatalf("ProcessDueTemplates() error = %v", err)
	}
	if processed != 2 {
		t.Errorf("processed = %d, want 2 (rent and cleaning, not future)", processed)
	}

	got, err := store.RecordsInRange(ctx, "hh-1", core.NewDate(2026, 1, 15), core.NewDate(2026, 1, 15), nil)
	if err != nil {
		t.Fatalf("RecordsInRange() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("materialized %d records, want 2", len(got))
	}
	for _, r := range got {
		if r.Category != "Housing" || r.Amount.Cents != 120000 {
			t.Errorf("materialized record %+v lost template fields", r)
		}
	}

	lastRun, err := store.TemplateLastRun(ctx, rentID)
	if err != nil {
		t.Fatalf("TemplateLastRun() error = %v", err)
	}
	if lastRun != core.NewDate(2026, 1, 15) {
		t.Errorf("last run = %v, want 2026-01-15", lastRun)
	}

	// A second run the same day processes nothing new: monthly already
	// ran this month, weekly ran less than 7 days ago.
	processed, err = processor.ProcessDueTemplates(ctx, now.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("ProcessDueTemplates() second run error = %v", err)
	}
	if processed != 0 {
		t.Errorf("second run processed = %d, want 0", processed)
	}
}

func TestRecurringProcessor_Uninitialized(t *testing.T) {
	processor := &RecurringProcessor{}
	if _, err := processor.ProcessDueTemplates(context.Background(), time.Now()); err == nil {
		t.Error("ProcessDueTemplates() should fail on an uninitialized processor")
	}
}
