package memory

import (
	"context"
	"errors"
	"testing"

	"hearth/internal/core"
	"hearth/internal/ledger"
)

func addRecord(t *testing.T, s *Store, householdID, memberID string, date core.Date, cents int64) int64 {
	t.Helper()
	id, err := s.CreateRecord(context.Background(), core.Record{
		HouseholdID: householdID,
		MemberID:    memberID,
		Date:        date,
		Description: "r",
		Amount:      core.Money{Cents: cents},
		Type:        core.Need,
	})
	if err != nil {
		t.Fatalf("CreateRecord() error = %v", err)
	}
	return id
}

func TestStore_RecordsInRangeInclusive(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	addRecord(t, s, "hh", "a", core.NewDate(2026, 1, 1), 100)  // on start bound
	addRecord(t, s, "hh", "a", core.NewDate(2026, 1, 31), 200) // on end bound
	addRecord(t, s, "hh", "a", core.NewDate(2026, 2, 1), 300)  // outside
	addRecord(t, s, "other", "a", core.NewDate(2026, 1, 15), 400)

	got, err := s.RecordsInRange(ctx, "hh", core.NewDate(2026, 1, 1), core.NewDate(2026, 1, 31), nil)
	if err != nil {
		t.Fatalf("RecordsInRange() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d records, want 2", len(got))
	}
	if got[0].Amount.Cents != 100 || got[1].Amount.Cents != 200 {
		t.Errorf("records not sorted by date: %+v", got)
	}
}

func TestStore_RecordsInRangeMemberFilter(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	addRecord(t, s, "hh", "a", core.NewDate(2026, 1, 10), 100)
	addRecord(t, s, "hh", "b", core.NewDate(2026, 1, 11), 200)
	addRecord(t, s, "hh", "c", core.NewDate(2026, 1, 12), 300)

	got, err := s.RecordsInRange(ctx, "hh", core.NewDate(2026, 1, 1), core.NewDate(2026, 1, 31), []string{"a", "c"})
	if err != nil {
		t.Fatalf("RecordsInRange() error = %v", err)
	}
	if len(got) != 2 || got[0].MemberID != "a" || got[1].MemberID != "c" {
		t.Errorf("filtered records = %+v, want members a and c", got)
	}
}

func TestStore_SoftDelete(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	id := addRecord(t, s, "hh", "a", core.NewDate(2026, 1, 10), 100)

	if err := s.SoftDeleteRecord(ctx, "hh", id); err != nil {
		t.Fatalf("SoftDeleteRecord() error = %v", err)
	}

	got, err := s.RecordsInRange(ctx, "hh", core.NewDate(2026, 1, 1), core.NewDate(2026, 1, 31), nil)
	if err != nil {
		t.Fatalf("RecordsInRange() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("deleted record still listed: %+v", got)
	}

	err = s.SoftDeleteRecord(ctx, "hh", id)
	if !errors.Is(err, ledger.ErrNotFound) {
		t.Errorf("second delete error = %v, want ErrNotFound", err)
	}

	// Wrong household must not see the record.
	id2 := addRecord(t, s, "hh", "a", core.NewDate(2026, 1, 11), 100)
	if err := s.SoftDeleteRecord(ctx, "other", id2); !errors.Is(err, ledger.ErrNotFound) {
		t.Errorf("cross-household delete error = %v, want ErrNotFound", err)
	}
}

func TestStore_TemplateLifecycle(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	id, err := s.CreateTemplate(ctx, core.RecurringTemplate{
		HouseholdID: "hh",
		MemberID:    "a",
		Description: "rent",
		Amount:      core.Money{Cents: 90000},
		Type:        core.Need,
		Every:       core.Monthly,
		StartsOn:    core.NewDate(2026, 1, 1),
		Active:      true,
	})
	if err != nil {
		t.Fatalf("CreateTemplate() error = %v", err)
	}

	// Not yet started templates are excluded.
	_, err = s.CreateTemplate(ctx, core.RecurringTemplate{
		HouseholdID: "hh",
		Every:       core.Weekly,
		StartsOn:    core.NewDate(2027, 1, 1),
		Active:      true,
	})
	if err != nil {
		t.Fatalf("CreateTemplate() error = %v", err)
	}

	active, err := s.ActiveTemplates(ctx, core.NewDate(2026, 6, 1))
	if err != nil {
		t.Fatalf("ActiveTemplates() error = %v", err)
	}
	if len(active) != 1 || active[0].ID != id {
		t.Fatalf("active templates = %+v, want the started one only", active)
	}

	last, err := s.TemplateLastRun(ctx, id)
	if err != nil {
		t.Fatalf("TemplateLastRun() error = %v", err)
	}
	if !last.IsZero() {
		t.Errorf("fresh template last run = %s, want zero", last)
	}

	ranOn := core.NewDate(2026, 6, 1)
	if err := s.MarkTemplateRun(ctx, id, ranOn); err != nil {
		t.Fatalf("MarkTemplateRun() error = %v", err)
	}
	last, err = s.TemplateLastRun(ctx, id)
	if err != nil {
		t.Fatalf("TemplateLastRun() error = %v", err)
	}
	if !last.Equal(ranOn.Time) {
		t.Errorf("last run = %s, want %s", last, ranOn)
	}

	if err := s.MarkTemplateRun(ctx, 999, ranOn); !errors.Is(err, ledger.ErrNotFound) {
		t.Errorf("unknown template error = %v, want ErrNotFound", err)
	}
}

func TestStore_EnsureHouseholdIdempotent(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	members := []core.Member{
		{ID: "a", DisplayName: "Alice"},
		{ID: "b", DisplayName: "Bob"},
	}
	if err := s.EnsureHousehold(ctx, "hh", "Home", members); err != nil {
		t.Fatalf("EnsureHousehold() error = %v", err)
	}
	if err := s.EnsureHousehold(ctx, "hh", "Home", members); err != nil {
		t.Fatalf("EnsureHousehold() second call error = %v", err)
	}

	got, err := s.Members(ctx, "hh")
	if err != nil {
		t.Fatalf("Members() error = %v", err)
	}
	if len(got) != 2 {
		t.Errorf("roster size = %d, want 2 (no duplicates)", len(got))
	}
	if got[0].DisplayName != "Alice" || got[1].DisplayName != "Bob" {
		t.Errorf("roster = %+v, want sorted by display name", got)
	}
}
