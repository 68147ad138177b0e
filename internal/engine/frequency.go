package engine

import "hearth/internal/core"

// MonthlyEquivalent converts a recurring amount into its monthly figure
// using fixed average-occurrences-per-month constants:
//
//	weekly    x4.33
//	biweekly  x2.17
//	monthly   x1
//	quarterly /3
//	yearly    /12
//	one-time  0 (a single event is not a repeating stream)
//
// Unknown recurrence values fall through as monthly rather than dropping
// the income silently. That default is a compatibility choice, not
// validation; callers that care should reject unknown values up front.
func MonthlyEquivalent(amount core.Money, r core.Recurrence) core.Money {
	switch r {
	case core.Weekly:
		return amount.MulRatio(433, 100)
	case core.Biweekly:
		return amount.MulRatio(217, 100)
	case core.Quarterly:
		return amount.MulRatio(1, 3)
	case core.Yearly:
		return amount.MulRatio(1, 12)
	case core.OneTime:
		return core.Money{}
	default:
		return amount
	}
}

// IncomeLine is one source's contribution to the monthly income figure,
// reported alongside the aggregate for auditability.
type IncomeLine struct {
	SourceID   int64
	Name       string
	Amount     core.Money
	Recurrence core.Recurrence
	Monthly    core.Money
}

// MonthlyIncome normalizes every active income source to its monthly
// equivalent and sums them. Inactive sources are skipped entirely.
func MonthlyIncome(sources []core.IncomeSource) (core.Money, []IncomeLine) {
	var total core.Money
	lines := make([]IncomeLine, 0, len(sources))
	for _, s := range sources {
		if !s.Active {
			continue
		}
		monthly := MonthlyEquivalent(s.Amount, s.Recurrence)
		total = total.Add(monthly)
		lines = append(lines, IncomeLine{
			SourceID:   s.ID,
			Name:       s.Name,
			Amount:     s.Amount,
			Recurrence: s.Recurrence,
			Monthly:    monthly,
		})
	}
	return total, lines
}
