package core

import (
	"errors"
	"testing"
)

func validRecord() Record {
	return Record{
		HouseholdID: "hh-1",
		MemberID:    "alice",
		Date:        NewDate(2026, 1, 10),
		Description: "Groceries",
		Amount:      Money{Cents: 4200},
		Type:        Need,
		Category:    "Food",
	}
}

func TestRecordValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Record)
		wantErr error
	}{
		{"valid", func(r *Record) {}, nil},
		{"zero date", func(r *Record) { r.Date = Date{} }, ErrInvalidDate},
		{"missing household", func(r *Record) { r.HouseholdID = " " }, ErrEmptyHousehold},
		{"missing member", func(r *Record) { r.MemberID = "" }, ErrEmptyMember},
		{"empty description", func(r *Record) { r.Description = "  " }, ErrEmptyDescription},
		{"negative amount", func(r *Record) { r.Amount = Money{Cents: -1} }, ErrInvalidAmount},
		{"bad type", func(r *Record) { r.Type = "luxury" }, ErrInvalidType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validRecord()
			tt.mutate(&r)
			err := r.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRecordCategoryOrDefault(t *testing.T) {
	r := validRecord()
	if r.CategoryOrDefault() != "Food" {
		t.Errorf("CategoryOrDefault() = %q, want Food", r.CategoryOrDefault())
	}
	r.Category = "   "
	if r.CategoryOrDefault() != DefaultCategory {
		t.Errorf("blank category should default to %q", DefaultCategory)
	}
}

func TestIncomeSourceValidate(t *testing.T) {
	src := IncomeSource{
		HouseholdID: "hh-1",
		MemberID:    "alice",
		Name:        "Salary",
		Amount:      Money{Cents: 500000},
		Recurrence:  Monthly,
		Active:      true,
		StartsOn:    NewDate(2025, 6, 1),
	}
	if err := src.Validate(); err != nil {
		t.Errorf("valid source rejected: %v", err)
	}

	t.Run("end before start", func(t *testing.T) {
		s := src
		s.EndsOn = NewDate(2025, 1, 1)
		if err := s.Validate(); err == nil {
			t.Error("expected error for end date before start date")
		}
	})

	t.Run("unknown recurrence rejected on input", func(t *testing.T) {
		s := src
		s.Recurrence = "sometimes"
		if err := s.Validate(); err == nil {
			t.Error("expected error for unknown recurrence")
		}
	})
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2026-01-31")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.String() != "2026-01-31" {
		t.Errorf("round trip = %s", d)
	}

	if _, err := ParseDate("31/01/2026"); !errors.Is(err, ErrInvalidDate) {
		t.Errorf("expected ErrInvalidDate, got %v", err)
	}
}

func TestDateOf(t *testing.T) {
	d := DateOf(NewDate(2026, 5, 4).Add(13 * 3600 * 1e9)) // 13:00 on the day
	if d.String() != "2026-05-04" {
		t.Errorf("DateOf should truncate to midnight, got %s", d)
	}
}
