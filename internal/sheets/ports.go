// Package sheets defines the outbound port for digest export. The
// Google adapter writes to a spreadsheet; the memory adapter backs
// tests and credential-less deployments.
package sheets

import (
	"context"
	"time"

	"hearth/internal/core"
)

// DigestRow is one exported line of a household's month-to-date
// financial snapshot.
type DigestRow struct {
	GeneratedAt time.Time
	HouseholdID string

	WindowStart core.Date
	WindowEnd   core.Date

	TotalSpent    core.Money
	NeedsTotal    core.Money
	WantsTotal    core.Money
	SavingsTotal  core.Money
	MonthlyIncome core.Money
	SavingsRate   float64
}

// DigestWriter appends digest rows to an external sheet.
type DigestWriter interface {
	AppendDigest(ctx context.Context, row DigestRow) (rowRef string, err error)
}
