package core

import (
	"errors"
	"strings"
	"time"
)

// Expense types. Every record is classified as a need, a want, or a
// contribution to savings.
const (
	Need    ExpenseType = "need"
	Want    ExpenseType = "want"
	Savings ExpenseType = "savings"
)

// Income recurrence schedules.
const (
	OneTime   Recurrence = "one_time"
	Weekly    Recurrence = "weekly"
	Biweekly  Recurrence = "biweekly"
	Monthly   Recurrence = "monthly"
	Quarterly Recurrence = "quarterly"
	Yearly    Recurrence = "yearly"
)

// DefaultCategory is applied when a record carries no category label.
const DefaultCategory = "Uncategorized"

type (
	ExpenseType string

	Recurrence string

	// Date is a calendar date. The time-of-day part is always midnight UTC.
	Date struct {
		time.Time
	}

	// Record is a single dated, typed, categorized monetary fact owned by
	// one household member. The engine only ever reads records.
	Record struct {
		ID          int64
		HouseholdID string
		MemberID    string
		Date        Date
		Description string
		Amount      Money
		Type        ExpenseType
		Category    string
		Deleted     bool
	}

	// IncomeSource is a recurring (or one-off) income stream. Only active
	// sources contribute to the household's monthly income figure.
	IncomeSource struct {
		ID          int64
		HouseholdID string
		MemberID    string
		Name        string
		Amount      Money
		Recurrence  Recurrence
		Active      bool
		StartsOn    Date
		EndsOn      Date // zero when open-ended
	}

	// Member is one person in a household roster.
	Member struct {
		ID          string
		HouseholdID string
		DisplayName string
		Role        string
	}

	// RecurringTemplate materializes into a fresh Record each time its
	// schedule comes due. OneTime templates are rejected on input.
	RecurringTemplate struct {
		ID          int64
		HouseholdID string
		MemberID    string
		Description string
		Amount      Money
		Type        ExpenseType
		Category    string
		Every       Recurrence
		StartsOn    Date
		Active      bool
	}
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidDate      = errors.New("invalid date")
	ErrEmptyDescription = errors.New("empty description")
	ErrInvalidType      = errors.New("invalid expense type")
	ErrEmptyMember      = errors.New("empty member id")
	ErrEmptyHousehold   = errors.New("empty household id")
)

// NewDate creates a Date from year, month, day at midnight UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates a timestamp to its calendar date in UTC.
func DateOf(t time.Time) Date {
	y, m, d := t.UTC().Date()
	return NewDate(y, int(m), d)
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// String renders the date as YYYY-MM-DD.
func (d Date) String() string {
	return d.Format("2006-01-02")
}

// IsEmpty reports whether the date is unset (used for optional end dates).
func (d Date) IsEmpty() bool {
	return d.IsZero()
}

// IsValid reports whether t names a known expense type.
func (t ExpenseType) IsValid() bool {
	switch t {
	case Need, Want, Savings:
		return true
	default:
		return false
	}
}

// IsValid reports whether r names a known recurrence schedule.
func (r Recurrence) IsValid() bool {
	switch r {
	case OneTime, Weekly, Biweekly, Monthly, Quarterly, Yearly:
		return true
	default:
		return false
	}
}

func (r Record) Validate() error {
	if err := r.Date.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(r.HouseholdID) == "" {
		return ErrEmptyHousehold
	}
	if strings.TrimSpace(r.MemberID) == "" {
		return ErrEmptyMember
	}
	if len(strings.TrimSpace(r.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(r.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if err := r.Amount.Validate(); err != nil {
		return err
	}
	if !r.Type.IsValid() {
		return ErrInvalidType
	}
	return nil
}

// CategoryOrDefault returns the record's category, falling back to
// DefaultCategory for blank labels.
func (r Record) CategoryOrDefault() string {
	if strings.TrimSpace(r.Category) == "" {
		return DefaultCategory
	}
	return r.Category
}

func (t RecurringTemplate) Validate() error {
	if strings.TrimSpace(t.HouseholdID) == "" {
		return ErrEmptyHousehold
	}
	if strings.TrimSpace(t.MemberID) == "" {
		return ErrEmptyMember
	}
	if len(strings.TrimSpace(t.Description)) == 0 {
		return ErrEmptyDescription
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if !t.Type.IsValid() {
		return ErrInvalidType
	}
	if !t.Every.IsValid() || t.Every == OneTime {
		return errors.New("invalid recurrence for template")
	}
	return t.StartsOn.Validate()
}

func (s IncomeSource) Validate() error {
	if strings.TrimSpace(s.HouseholdID) == "" {
		return ErrEmptyHousehold
	}
	if len(strings.TrimSpace(s.Name)) == 0 {
		return ErrEmptyDescription
	}
	if err := s.Amount.Validate(); err != nil {
		return err
	}
	if !s.Recurrence.IsValid() {
		return errors.New("invalid recurrence")
	}
	if err := s.StartsOn.Validate(); err != nil {
		return errors.New("invalid start date: " + err.Error())
	}
	if !s.EndsOn.IsZero() && s.EndsOn.Before(s.StartsOn.Time) {
		return errors.New("end date must not precede start date")
	}
	return nil
}
