// Package memory is an in-process ledger implementation used for
// development and tests. It mirrors the SQLite repository's semantics,
// including soft deletes and inclusive date ranges.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"hearth/internal/core"
	"hearth/internal/ledger"
)

var ErrNotFound = ledger.ErrNotFound

type Store struct {
	mu        sync.RWMutex
	nextID    int64
	records   []core.Record
	incomes   []core.IncomeSource
	members   []core.Member
	templates []core.RecurringTemplate
	lastRuns  map[int64]core.Date
}

func NewStore() *Store {
	return &Store{nextID: 1, lastRuns: make(map[int64]core.Date)}
}

func (s *Store) Close() error { return nil }

func (s *Store) CreateRecord(_ context.Context, r core.Record) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r.ID = s.nextID
	s.nextID++
	s.records = append(s.records, r)
	return r.ID, nil
}

func (s *Store) SoftDeleteRecord(_ context.Context, householdID string, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.records {
		r := &s.records[i]
		if r.ID == id && r.HouseholdID == householdID && !r.Deleted {
			r.Deleted = true
			return nil
		}
	}
	return fmt.Errorf("record %d: %w", id, ErrNotFound)
}

func (s *Store) RecordsInRange(_ context.Context, householdID string, start, end core.Date, memberIDs []string) ([]core.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var wanted map[string]bool
	if len(memberIDs) > 0 {
		wanted = make(map[string]bool, len(memberIDs))
		for _, id := range memberIDs {
			wanted[id] = true
		}
	}

	var out []core.Record
	for _, r := range s.records {
		if r.HouseholdID != householdID || r.Deleted {
			continue
		}
		if r.Date.Before(start.Time) || r.Date.After(end.Time) {
			continue
		}
		if wanted != nil && !wanted[r.MemberID] {
			continue
		}
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date.Time) {
			return out[i].Date.Before(out[j].Date.Time)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) CreateIncomeSource(_ context.Context, src core.IncomeSource) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	src.ID = s.nextID
	s.nextID++
	s.incomes = append(s.incomes, src)
	return src.ID, nil
}

func (s *Store) IncomeSources(_ context.Context, householdID string) ([]core.IncomeSource, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []core.IncomeSource
	for _, src := range s.incomes {
		if src.HouseholdID == householdID {
			out = append(out, src)
		}
	}
	return out, nil
}

func (s *Store) Members(_ context.Context, householdID string) ([]core.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []core.Member
	for _, m := range s.members {
		if m.HouseholdID == householdID {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DisplayName < out[j].DisplayName })
	return out, nil
}

func (s *Store) CreateTemplate(_ context.Context, t core.RecurringTemplate) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t.ID = s.nextID
	s.nextID++
	s.templates = append(s.templates, t)
	return t.ID, nil
}

func (s *Store) ActiveTemplates(_ context.Context, now core.Date) ([]core.RecurringTemplate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []core.RecurringTemplate
	for _, t := range s.templates {
		if t.Active && !t.StartsOn.After(now.Time) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *Store) TemplateLastRun(_ context.Context, id int64) (core.Date, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, t := range s.templates {
		if t.ID == id {
			return s.lastRuns[id], nil
		}
	}
	return core.Date{}, fmt.Errorf("template %d: %w", id, ErrNotFound)
}

func (s *Store) MarkTemplateRun(_ context.Context, id int64, ranOn core.Date) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range s.templates {
		if t.ID == id {
			s.lastRuns[id] = ranOn
			return nil
		}
	}
	return fmt.Errorf("template %d: %w", id, ErrNotFound)
}

// EnsureHousehold registers roster members, skipping ids already present.
func (s *Store) EnsureHousehold(_ context.Context, householdID, _ string, members []core.Member) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]bool, len(s.members))
	for _, m := range s.members {
		seen[m.ID] = true
	}
	for _, m := range members {
		if seen[m.ID] {
			continue
		}
		m.HouseholdID = householdID
		s.members = append(s.members, m)
	}
	return nil
}
