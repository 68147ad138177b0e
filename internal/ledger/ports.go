// Package ledger defines the outbound ports the HTTP layer, services
// and workers depend on. The SQLite repository and the in-memory store
// are the two implementations.
package ledger

import (
	"context"
	"errors"

	"hearth/internal/core"
)

// ErrNotFound is returned by all backends when a record or template id
// does not exist (or is already deleted) in the given household.
var ErrNotFound = errors.New("not found")

type (
	// RecordWriter persists new financial records.
	RecordWriter interface {
		CreateRecord(ctx context.Context, r core.Record) (int64, error)
	}

	// RecordDeleter soft-deletes a record. Deleted records never reach
	// the engine; the lister filters them out.
	RecordDeleter interface {
		SoftDeleteRecord(ctx context.Context, householdID string, id int64) error
	}

	// RecordLister returns non-deleted records for a household within an
	// inclusive date range, optionally restricted to a set of member ids
	// (nil means all members).
	RecordLister interface {
		RecordsInRange(ctx context.Context, householdID string, start, end core.Date, memberIDs []string) ([]core.Record, error)
	}

	// IncomeWriter persists income sources.
	IncomeWriter interface {
		CreateIncomeSource(ctx context.Context, s core.IncomeSource) (int64, error)
	}

	// IncomeReader lists a household's income sources, active and not.
	IncomeReader interface {
		IncomeSources(ctx context.Context, householdID string) ([]core.IncomeSource, error)
	}

	// RosterReader returns the household member roster.
	RosterReader interface {
		Members(ctx context.Context, householdID string) ([]core.Member, error)
	}

	// TemplateStore manages recurring record templates for the
	// recurring worker.
	TemplateStore interface {
		CreateTemplate(ctx context.Context, t core.RecurringTemplate) (int64, error)
		ActiveTemplates(ctx context.Context, now core.Date) ([]core.RecurringTemplate, error)
		TemplateLastRun(ctx context.Context, id int64) (core.Date, error)
		MarkTemplateRun(ctx context.Context, id int64, ranOn core.Date) error
	}

	// Seeder pre-creates a household and its roster. Used at startup so
	// single-household deployments work out of the box.
	Seeder interface {
		EnsureHousehold(ctx context.Context, householdID, name string, members []core.Member) error
	}

	// Store is the composite every backend provides.
	Store interface {
		RecordWriter
		RecordDeleter
		RecordLister
		IncomeWriter
		IncomeReader
		RosterReader
		TemplateStore
		Seeder
		Close() error
	}
)
