// Package storage is the SQLite implementation of the ledger ports.
// Dates are stored as YYYY-MM-DD text so range predicates compare
// lexicographically, amounts as integer cents.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"hearth/internal/core"
	"hearth/internal/ledger"

	_ "modernc.org/sqlite"
)

var ErrNotFound = ledger.ErrNotFound

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// CreateRecord implements ledger.RecordWriter.
func (r *SQLiteRepository) CreateRecord(ctx context.Context, rec core.Record) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO records (household_id, member_id, occurred_on, description, amount_cents, expense_type, category)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.HouseholdID, rec.MemberID, rec.Date.String(), rec.Description,
		rec.Amount.Cents, string(rec.Type), rec.Category)
	if err != nil {
		return 0, fmt.Errorf("insert record: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("record id: %w", err)
	}

	slog.InfoContext(ctx, "Record saved",
		"id", id,
		"household_id", rec.HouseholdID,
		"amount_cents", rec.Amount.Cents,
		"type", rec.Type,
		"occurred_on", rec.Date.String())

	return id, nil
}

// SoftDeleteRecord implements ledger.RecordDeleter.
func (r *SQLiteRepository) SoftDeleteRecord(ctx context.Context, householdID string, id int64) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE records SET deleted = 1 WHERE id = ? AND household_id = ? AND deleted = 0`,
		id, householdID)
	if err != nil {
		return fmt.Errorf("soft delete record: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("record %d: %w", id, ErrNotFound)
	}

	slog.InfoContext(ctx, "Record deleted", "id", id, "household_id", householdID)
	return nil
}

// RecordsInRange implements ledger.RecordLister. The range is inclusive
// on both ends; soft-deleted rows are never returned.
func (r *SQLiteRepository) RecordsInRange(ctx context.Context, householdID string, start, end core.Date, memberIDs []string) ([]core.Record, error) {
	query := `
		SELECT id, household_id, member_id, occurred_on, description, amount_cents, expense_type, category
		FROM records
		WHERE household_id = ? AND deleted = 0 AND occurred_on >= ? AND occurred_on <= ?`
	args := []any{householdID, start.String(), end.String()}

	if len(memberIDs) > 0 {
		query += ` AND member_id IN (?` + strings.Repeat(", ?", len(memberIDs)-1) + `)`
		for _, id := range memberIDs {
			args = append(args, id)
		}
	}
	query += ` ORDER BY occurred_on, id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	var out []core.Record
	for rows.Next() {
		var (
			rec      core.Record
			occurred string
			typ      string
		)
		if err := rows.Scan(&rec.ID, &rec.HouseholdID, &rec.MemberID, &occurred,
			&rec.Description, &rec.Amount.Cents, &typ, &rec.Category); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		rec.Type = core.ExpenseType(typ)
		if rec.Date, err = core.ParseDate(occurred); err != nil {
			return nil, fmt.Errorf("record %d date %q: %w", rec.ID, occurred, err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}

	return out, nil
}

// CreateIncomeSource implements ledger.IncomeWriter.
func (r *SQLiteRepository) CreateIncomeSource(ctx context.Context, s core.IncomeSource) (int64, error) {
	var endsOn any
	if !s.EndsOn.IsEmpty() {
		endsOn = s.EndsOn.String()
	}

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO income_sources (household_id, member_id, name, amount_cents, recurrence, active, starts_on, ends_on)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		s.HouseholdID, s.MemberID, s.Name, s.Amount.Cents, string(s.Recurrence),
		s.Active, s.StartsOn.String(), endsOn)
	if err != nil {
		return 0, fmt.Errorf("insert income source: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("income source id: %w", err)
	}

	slog.InfoContext(ctx, "Income source saved",
		"id", id,
		"household_id", s.HouseholdID,
		"name", s.Name,
		"recurrence", s.Recurrence)

	return id, nil
}

// IncomeSources implements ledger.IncomeReader.
func (r *SQLiteRepository) IncomeSources(ctx context.Context, householdID string) ([]core.IncomeSource, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, household_id, member_id, name, amount_cents, recurrence, active, starts_on, ends_on
		FROM income_sources
		WHERE household_id = ?
		ORDER BY id`,
		householdID)
	if err != nil {
		return nil, fmt.Errorf("query income sources: %w", err)
	}
	defer rows.Close()

	var out []core.IncomeSource
	for rows.Next() {
		var (
			s          core.IncomeSource
			recurrence string
			startsOn   string
			endsOn     sql.NullString
		)
		if err := rows.Scan(&s.ID, &s.HouseholdID, &s.MemberID, &s.Name,
			&s.Amount.Cents, &recurrence, &s.Active, &startsOn, &endsOn); err != nil {
			return nil, fmt.Errorf("scan income source: %w", err)
		}
		s.Recurrence = core.Recurrence(recurrence)
		if s.StartsOn, err = core.ParseDate(startsOn); err != nil {
			return nil, fmt.Errorf("income source %d start date %q: %w", s.ID, startsOn, err)
		}
		if endsOn.Valid {
			if s.EndsOn, err = core.ParseDate(endsOn.String); err != nil {
				return nil, fmt.Errorf("income source %d end date %q: %w", s.ID, endsOn.String, err)
			}
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate income sources: %w", err)
	}

	return out, nil
}

// Members implements ledger.RosterReader.
func (r *SQLiteRepository) Members(ctx context.Context, householdID string) ([]core.Member, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, household_id, display_name, role
		FROM members
		WHERE household_id = ?
		ORDER BY display_name, id`,
		householdID)
	if err != nil {
		return nil, fmt.Errorf("query members: %w", err)
	}
	defer rows.Close()

	var out []core.Member
	for rows.Next() {
		var m core.Member
		if err := rows.Scan(&m.ID, &m.HouseholdID, &m.DisplayName, &m.Role); err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate members: %w", err)
	}

	return out, nil
}

// ActiveTemplates implements ledger.TemplateStore.
func (r *SQLiteRepository) ActiveTemplates(ctx context.Context, now core.Date) ([]core.RecurringTemplate, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, household_id, member_id, description, amount_cents, expense_type, category, recurrence, starts_on, active
		FROM recurring_templates
		WHERE active = 1 AND starts_on <= ?
		ORDER BY id`,
		now.String())
	if err != nil {
		return nil, fmt.Errorf("query templates: %w", err)
	}
	defer rows.Close()

	var out []core.RecurringTemplate
	for rows.Next() {
		var (
			t        core.RecurringTemplate
			typ      string
			every    string
			startsOn string
		)
		if err := rows.Scan(&t.ID, &t.HouseholdID, &t.MemberID, &t.Description,
			&t.Amount.Cents, &typ, &t.Category, &every, &startsOn, &t.Active); err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		t.Type = core.ExpenseType(typ)
		t.Every = core.Recurrence(every)
		if t.StartsOn, err = core.ParseDate(startsOn); err != nil {
			return nil, fmt.Errorf("template %d start date %q: %w", t.ID, startsOn, err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate templates: %w", err)
	}

	return out, nil
}

// TemplateLastRun implements ledger.TemplateStore. A template that has
// never materialized returns the zero date and no error.
func (r *SQLiteRepository) TemplateLastRun(ctx context.Context, id int64) (core.Date, error) {
	var lastRun sql.NullString
	err := r.db.QueryRowContext(ctx,
		`SELECT last_run_on FROM recurring_templates WHERE id = ?`, id).Scan(&lastRun)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Date{}, fmt.Errorf("template %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return core.Date{}, fmt.Errorf("query template last run: %w", err)
	}
	if !lastRun.Valid {
		return core.Date{}, nil
	}

	d, err := core.ParseDate(lastRun.String)
	if err != nil {
		return core.Date{}, fmt.Errorf("template %d last run %q: %w", id, lastRun.String, err)
	}
	return d, nil
}

// MarkTemplateRun implements ledger.TemplateStore.
func (r *SQLiteRepository) MarkTemplateRun(ctx context.Context, id int64, ranOn core.Date) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE recurring_templates SET last_run_on = ? WHERE id = ?`, ranOn.String(), id)
	if err != nil {
		return fmt.Errorf("mark template run: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("template %d: %w", id, ErrNotFound)
	}
	return nil
}

// EnsureHousehold creates the household and its members if missing.
// Used by dev seeding and tests.
func (r *SQLiteRepository) EnsureHousehold(ctx context.Context, householdID, name string, members []core.Member) error {
	if _, err := r.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO households (id, name) VALUES (?, ?)`, householdID, name); err != nil {
		return fmt.Errorf("insert household: %w", err)
	}
	for _, m := range members {
		if _, err := r.db.ExecContext(ctx, `
			INSERT OR IGNORE INTO members (id, household_id, display_name, role)
			VALUES (?, ?, ?, ?)`,
			m.ID, householdID, m.DisplayName, m.Role); err != nil {
			return fmt.Errorf("insert member %s: %w", m.ID, err)
		}
	}
	return nil
}

// CreateTemplate persists a recurring template.
func (r *SQLiteRepository) CreateTemplate(ctx context.Context, t core.RecurringTemplate) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO recurring_templates (household_id, member_id, description, amount_cents, expense_type, category, recurrence, starts_on, active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.HouseholdID, t.MemberID, t.Description, t.Amount.Cents,
		string(t.Type), t.Category, string(t.Every), t.StartsOn.String(), t.Active)
	if err != nil {
		return 0, fmt.Errorf("insert template: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("template id: %w", err)
	}
	return id, nil
}
