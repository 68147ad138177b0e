// Package services provides business logic and orchestration services.
//
// This file implements the dueness check for recurring templates. Each
// recurrence schedule has its own strategy so the processor stays a
// plain loop.
package services

import (
	"fmt"
	"time"

	"hearth/internal/core"
)

// DuenessChecker decides whether a recurring template should
// materialize given when it last ran.
type DuenessChecker interface {
	// IsDue returns true if the template should be processed based on
	// the last run time and the current time.
	IsDue(lastRun, now time.Time, startsOn core.Date) bool
}

// WeeklyChecker implements DuenessChecker for weekly templates.
type WeeklyChecker struct{}

// IsDue returns true if 7 or more days have passed since the last run.
func (WeeklyChecker) IsDue(lastRun, now time.Time, _ core.Date) bool {
	if lastRun.IsZero() {
		return true
	}
	daysSince := now.Sub(lastRun).Hours() / 24
	return daysSince >= 7
}

// BiweeklyChecker implements DuenessChecker for biweekly templates.
type BiweeklyChecker struct{}

// IsDue returns true if 14 or more days have passed since the last run.
func (BiweeklyChecker) IsDue(lastRun, now time.Time, _ core.Date) bool {
	if lastRun.IsZero() {
		return true
	}
	daysSince := now.Sub(lastRun).Hours() / 24
	return daysSince >= 14
}

// MonthlyChecker implements DuenessChecker for monthly templates.
type MonthlyChecker struct{}

// IsDue returns true if we're in a new month and have reached the
// template's target day, clamped for short months.
func (MonthlyChecker) IsDue(lastRun, now time.Time, startsOn core.Date) bool {
	if lastRun.IsZero() {
		return true
	}

	if lastRun.Year() == now.Year() && lastRun.Month() == now.Month() {
		return false
	}

	return now.Day() >= clampDay(startsOn.Day(), now.Year(), now.Month())
}

// QuarterlyChecker implements DuenessChecker for quarterly templates.
type QuarterlyChecker struct{}

// IsDue returns true once 3 calendar months have passed since the last
// run and the target day is reached.
func (QuarterlyChecker) IsDue(lastRun, now time.Time, startsOn core.Date) bool {
	if lastRun.IsZero() {
		return true
	}

	monthsSince := (now.Year()-lastRun.Year())*12 + int(now.Month()) - int(lastRun.Month())
	if monthsSince < 3 {
		return false
	}
	if monthsSince > 3 {
		return true
	}

	return now.Day() >= clampDay(startsOn.Day(), now.Year(), now.Month())
}

// YearlyChecker implements DuenessChecker for yearly templates.
type YearlyChecker struct{}

// IsDue returns true if we're in a new year and have reached the target
// month and day.
func (YearlyChecker) IsDue(lastRun, now time.Time, startsOn core.Date) bool {
	if lastRun.IsZero() {
		return true
	}

	if lastRun.Year() == now.Year() {
		return false
	}

	targetMonth := startsOn.Month()
	if now.Month() < targetMonth {
		return false
	}
	if now.Month() == targetMonth {
		return now.Day() >= clampDay(startsOn.Day(), now.Year(), now.Month())
	}

	return true
}

// clampDay pulls a target day back to the last day of short months, so
// a template anchored on the 31st still fires in February.
func clampDay(targetDay, year int, month time.Month) int {
	lastDayOfMonth := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if targetDay > lastDayOfMonth {
		return lastDayOfMonth
	}
	return targetDay
}

// duenessStrategies maps recurrence schedules to their checkers.
var duenessStrategies = map[core.Recurrence]DuenessChecker{
	core.Weekly:    WeeklyChecker{},
	core.Biweekly:  BiweeklyChecker{},
	core.Monthly:   MonthlyChecker{},
	core.Quarterly: QuarterlyChecker{},
	core.Yearly:    YearlyChecker{},
}

// GetDuenessChecker returns the checker for a recurrence schedule.
// One-time schedules have no checker: templates never fire once.
func GetDuenessChecker(every core.Recurrence) (DuenessChecker, error) {
	checker, ok := duenessStrategies[every]
	if !ok {
		return nil, fmt.Errorf("unknown recurrence: %s", every)
	}
	return checker, nil
}

// RegisterDuenessChecker registers a custom checker for a recurrence
// schedule, replacing any existing one.
func RegisterDuenessChecker(every core.Recurrence, checker DuenessChecker) {
	duenessStrategies[every] = checker
}
