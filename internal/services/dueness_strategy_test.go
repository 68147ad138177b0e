package services

import (
	"testing"
	"time"

	"hearth/internal/core"
)

func TestWeeklyChecker_IsDue(t *testing.T) {
	checker := WeeklyChecker{}
	now := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	startsOn := core.NewDate(2026, 1, 1)

	tests := []struct {
		name    string
		lastRun time.Time
		want    bool
	}{
		{
			name:    "never ran - is due",
			lastRun: time.Time{},
			want:    true,
		},
		{
			name:    "ran 3 days ago - not due",
			lastRun: time.Date(2026, 1, 12, 12, 0, 0, 0, time.UTC),
			want:    false,
		},
		{
			name:    "ran 7 days ago - is due",
			lastRun: time.Date(2026, 1, 8, 12, 0, 0, 0, time.UTC),
			want:    true,
		},
		{
			name:    "ran 10 days ago - is due",
			lastRun: time.Date(2026, 1, 5, 12, 0, 0, 0, time.UTC),
			want:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := checker.IsDue(tt.lastRun, now, startsOn)
			if got != tt.want {
				t.Errorf("WeeklyChecker.IsDue() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBiweeklyChecker_IsDue(t *testing.T) {
	checker := BiweeklyChecker{}
	now := time.Date(2026, 1, 29, 12, 0, 0, 0, time.UTC)
	startsOn := core.NewDate(2026, 1, 1)

	tests := []struct {
		name    string
		lastRun time.Time
		want    bool
	}{
		{
			name:    "never ran - is due",
			lastRun: time.Time{},
			want:    true,
		},
		{
			name:    "ran 7 days ago - not due",
			lastRun: time.Date(2026, 1, 22, 12, 0, 0, 0, time.UTC),
			want:    false,
		},
		{
			name:    "ran 13 days ago - not due",
			lastRun: time.Date(2026, 1, 16, 12, 0, 0, 0, time.UTC),
			want:    false,
		},
		{
			name:    "ran 14 days ago - is due",
			lastRun: time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC),
			want:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := checker.IsDue(tt.lastRun, now, startsOn)
			if got != tt.want {
				t.Errorf("BiweeklyChecker.IsDue() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMonthlyChecker_IsDue(t *testing.T) {
	checker := MonthlyChecker{}

	tests := []struct {
		name     string
		lastRun  time.Time
		now      time.Time
		startsOn core.Date
		want     bool
	}{
		{
			name:     "never ran - is due",
			lastRun:  time.Time{},
			now:      time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC),
			startsOn: core.NewDate(2026, 1, 10),
			want:     true,
		},
		{
			name:     "ran this month - not due",
			lastRun:  time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC),
			now:      time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC),
			startsOn: core.NewDate(2026, 1, 10),
			want:     false,
		},
		{
			name:     "new month but before target day - not due",
			lastRun:  time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC),
			now:      time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC),
			startsOn: core.NewDate(2026, 1, 15),
			want:     false,
		},
		{
			name:     "new month on target day - is due",
			lastRun:  time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC),
			now:      time.Date(2026, 2, 15, 12, 0, 0, 0, time.UTC),
			startsOn: core.NewDate(2026, 1, 15),
			want:     true,
		},
		{
			name:     "target day 31 clamps in february - is due on 28th",
			lastRun:  time.Date(2026, 1, 31, 12, 0, 0, 0, time.UTC),
			now:      time.Date(2026, 2, 28, 12, 0, 0, 0, time.UTC),
			startsOn: core.NewDate(2025, 12, 31),
			want:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := checker.IsDue(tt.lastRun, tt.now, tt.startsOn)
			if got != tt.want {
				t.Errorf("MonthlyChecker.IsDue() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestQuarterlyChecker_IsDue(t *testing.T) {
	checker := QuarterlyChecker{}

	tests := []struct {
		name     string
		lastRun  time.Time
		now      time.Time
		startsOn core.Date
		want     bool
	}{
		{
			name:     "never ran - is due",
			lastRun:  time.Time{},
			now:      time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC),
			startsOn: core.NewDate(2026, 1, 1),
			want:     true,
		},
		{
			name:     "ran 1 month ago - not due",
			lastRun:  time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
			now:      time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC),
			startsOn: core.NewDate(2026, 1, 1),
			want:     false,
		},
		{
			name:     "three months later before target day - not due",
			lastRun:  time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC),
			now:      time.Date(2026, 4, 10, 12, 0, 0, 0, time.UTC),
			startsOn: core.NewDate(2026, 1, 15),
			want:     false,
		},
		{
			name:     "three months later on target day - is due",
			lastRun:  time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC),
			now:      time.Date(2026, 4, 15, 12, 0, 0, 0, time.UTC),
			startsOn: core.NewDate(2026, 1, 15),
			want:     true,
		},
		{
			name:     "four months later - is due regardless of day",
			lastRun:  time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC),
			now:      time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC),
			startsOn: core.NewDate(2026, 1, 15),
			want:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := checker.IsDue(tt.lastRun, tt.now, tt.startsOn)
			if got != tt.want {
				t.Errorf("QuarterlyChecker.IsDue() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestYearlyChecker_IsDue(t *testing.T) {
	checker := YearlyChecker{}

	tests := []struct {
		name     string
		lastRun  time.Time
		now      time.Time
		startsOn core.Date
		want     bool
	}{
		{
			name:     "never ran - is due",
			lastRun:  time.Time{},
			now:      time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC),
			startsOn: core.NewDate(2025, 6, 1),
			want:     true,
		},
		{
			name:     "ran this year - not due",
			lastRun:  time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC),
			now:      time.Date(2026, 12, 1, 12, 0, 0, 0, time.UTC),
			startsOn: core.NewDate(2025, 6, 1),
			want:     false,
		},
		{
			name:     "new year before target month - not due",
			lastRun:  time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
			now:      time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC),
			startsOn: core.NewDate(2025, 6, 1),
			want:     false,
		},
		{
			name:     "new year in target month on target day - is due",
			lastRun:  time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
			now:      time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC),
			startsOn: core.NewDate(2025, 6, 1),
			want:     true,
		},
		{
			name:     "new year past target month - is due",
			lastRun:  time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
			now:      time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC),
			startsOn: core.NewDate(2025, 6, 1),
			want:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := checker.IsDue(tt.lastRun, tt.now, tt.startsOn)
			if got != tt.want {
				t.Errorf("YearlyChecker.IsDue() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetDuenessChecker(t *testing.T) {
	for _, every := range []core.Recurrence{
		core.Weekly, core.Biweekly, core.Monthly, core.Quarterly, core.Yearly,
	} {
		if _, err := GetDuenessChecker(every); err != nil {
			t.Errorf("GetDuenessChecker(%s) error = %v, want nil", every, err)
		}
	}

	if _, err := GetDuenessChecker(core.OneTime); err == nil {
		t.Error("GetDuenessChecker(one_time) should return an error")
	}
	if _, err := GetDuenessChecker(core.Recurrence("hourly")); err == nil {
		t.Error("GetDuenessChecker(hourly) should return an error")
	}
}
