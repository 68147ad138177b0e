package engine

import (
	"sort"

	"hearth/internal/core"
)

// CategoryAggregate is the summed amount of one observed category.
// Categories with no records in the batch never produce an aggregate.
type CategoryAggregate struct {
	Category string
	Type     core.ExpenseType
	Amount   core.Money
}

// MemberAggregate is one roster member's share of the batch. A member
// with zero activity still appears, zero-filled.
type MemberAggregate struct {
	MemberID     string
	DisplayName  string
	TotalSpent   core.Money
	NeedsTotal   core.Money
	WantsTotal   core.Money
	SavingsTotal core.Money
	TopCategory  string
	Categories   []CategoryAggregate
}

// Summary is the aggregator's full output for one batch.
//
// ByType only carries types actually present; callers treat an absent
// key as zero. ByCategory and ByUser are sorted descending by amount,
// with first-seen order preserved on ties.
type Summary struct {
	TotalSpent core.Money
	ByType     map[core.ExpenseType]core.Money
	ByCategory []CategoryAggregate
	ByUser     []MemberAggregate
}

// categoryAccum keeps insertion order so that tie-breaking on equal
// amounts is deterministic rather than map-iteration luck.
type categoryAccum struct {
	order []string
	index map[string]int
	aggs  []CategoryAggregate
}

func newCategoryAccum() *categoryAccum {
	return &categoryAccum{index: make(map[string]int)}
}

func (a *categoryAccum) add(category string, t core.ExpenseType, amount core.Money) {
	if i, ok := a.index[category]; ok {
		a.aggs[i].Amount = a.aggs[i].Amount.Add(amount)
		return
	}
	a.index[category] = len(a.aggs)
	a.order = append(a.order, category)
	a.aggs = append(a.aggs, CategoryAggregate{Category: category, Type: t, Amount: amount})
}

// sorted returns the aggregates descending by amount; the underlying
// slice is already in first-seen order, so a stable sort keeps ties
// deterministic.
func (a *categoryAccum) sorted() []CategoryAggregate {
	out := make([]CategoryAggregate, len(a.aggs))
	copy(out, a.aggs)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Amount.Cents > out[j].Amount.Cents
	})
	return out
}

// Aggregate computes totals and breakdowns for a batch of records.
//
// The batch is assumed pre-filtered: no soft-deleted records, all within
// the caller's window. Records owned by members missing from the roster
// still count toward totals and category sums, but produce no user row.
// An empty batch yields zero-valued structures, never an error.
func Aggregate(records []core.Record, roster []core.Member) Summary {
	sum := Summary{ByType: make(map[core.ExpenseType]core.Money)}

	cats := newCategoryAccum()

	type memberAccum struct {
		agg  MemberAggregate
		cats *categoryAccum
	}
	byMember := make(map[string]*memberAccum, len(roster))
	order := make([]string, 0, len(roster))
	for _, m := range roster {
		byMember[m.ID] = &memberAccum{
			agg:  MemberAggregate{MemberID: m.ID, DisplayName: m.DisplayName},
			cats: newCategoryAccum(),
		}
		order = append(order, m.ID)
	}

	for _, r := range records {
		category := r.CategoryOrDefault()

		sum.TotalSpent = sum.TotalSpent.Add(r.Amount)
		sum.ByType[r.Type] = sum.ByType[r.Type].Add(r.Amount)
		cats.add(category, r.Type, r.Amount)

		ma, ok := byMember[r.MemberID]
		if !ok {
			continue
		}
		ma.agg.TotalSpent = ma.agg.TotalSpent.Add(r.Amount)
		switch r.Type {
		case core.Need:
			ma.agg.NeedsTotal = ma.agg.NeedsTotal.Add(r.Amount)
		case core.Want:
			ma.agg.WantsTotal = ma.agg.WantsTotal.Add(r.Amount)
		case core.Savings:
			ma.agg.SavingsTotal = ma.agg.SavingsTotal.Add(r.Amount)
		}
		ma.cats.add(category, r.Type, r.Amount)
	}

	sum.ByCategory = cats.sorted()

	sum.ByUser = make([]MemberAggregate, 0, len(order))
	for _, id := range order {
		ma := byMember[id]
		ma.agg.Categories = ma.cats.sorted()
		if len(ma.agg.Categories) > 0 {
			ma.agg.TopCategory = ma.agg.Categories[0].Category
		}
		sum.ByUser = append(sum.ByUser, ma.agg)
	}
	sort.SliceStable(sum.ByUser, func(i, j int) bool {
		return sum.ByUser[i].TotalSpent.Cents > sum.ByUser[j].TotalSpent.Cents
	})

	return sum
}

// TypeTotal reads a type's total from the summary, treating an absent
// key as zero.
func (s Summary) TypeTotal(t core.ExpenseType) core.Money {
	return s.ByType[t]
}
