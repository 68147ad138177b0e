package engine

import (
	"math"

	"hearth/internal/core"
)

// Snapshot is the presentation-ready combination of spending aggregates
// and normalized monthly income. All percentages are rounded to one
// decimal place, and every ratio substitutes 0 for division by zero
// instead of propagating NaN or infinity.
type Snapshot struct {
	TotalSpent    core.Money
	MonthlyIncome core.Money

	NeedsTotal   core.Money
	WantsTotal   core.Money
	SavingsTotal core.Money

	// Shares of total spending.
	NeedsPercent   float64
	WantsPercent   float64
	SavingsPercent float64

	// SavingsRate is measured against income, not spending:
	// (income - spending) / income x 100.
	SavingsRate float64
}

// ComposeSnapshot derives the percentage figures from an aggregation
// summary and the household's monthly income total.
func ComposeSnapshot(sum Summary, monthlyIncome core.Money) Snapshot {
	snap := Snapshot{
		TotalSpent:    sum.TotalSpent,
		MonthlyIncome: monthlyIncome,
		NeedsTotal:    sum.TypeTotal(core.Need),
		WantsTotal:    sum.TypeTotal(core.Want),
		SavingsTotal:  sum.TypeTotal(core.Savings),
	}

	snap.NeedsPercent = shareOf(snap.NeedsTotal, sum.TotalSpent)
	snap.WantsPercent = shareOf(snap.WantsTotal, sum.TotalSpent)
	snap.SavingsPercent = shareOf(snap.SavingsTotal, sum.TotalSpent)

	if monthlyIncome.Cents > 0 {
		rate := float64(monthlyIncome.Cents-sum.TotalSpent.Cents) / float64(monthlyIncome.Cents) * 100
		snap.SavingsRate = round1(rate)
	}

	return snap
}

func shareOf(part, whole core.Money) float64 {
	if whole.Cents == 0 {
		return 0
	}
	return round1(float64(part.Cents) / float64(whole.Cents) * 100)
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}
