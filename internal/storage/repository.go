// Package storage is the expense record store. The production backend is
// SQLite; amounts are persisted as integer cents so values survive the trip
// through the database exactly.
package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"

	"spendlog/internal/core"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// ErrExpenseNotFound marks a lookup of an id with no stored record.
var ErrExpenseNotFound = errors.New("expense not found")

// SortOrder selects list ordering by record date.
type SortOrder string

const (
	SortDateDesc SortOrder = "date_desc"
	SortDateAsc  SortOrder = "date_asc"
)

// ListFilter narrows and orders an owner's records.
type ListFilter struct {
	Category *core.Category
	Sort     SortOrder
}

const timeLayout = time.RFC3339Nano

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

	if err := applySchema(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

// applySchema brings the database up to the latest migration. It opens
// its own short-lived connection so the repository connection is never
// wrapped by the migration driver.
func applySchema(dbPath string) error {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("open schema connection: %w", err)
	}
	defer db.Close()

	driver, err := migratesqlite.WithInstance(db, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("sqlite migration driver: %w", err)
	}

	source, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return fmt.Errorf("migration source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("migrate instance: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

const createExpenseSQL = `
INSERT INTO expenses (id, owner_id, amount_cents, category, description, date, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

// CreateExpense persists a new record, assigning its id and timestamps.
func (r *SQLiteRepository) CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	e.ID = uuid.NewString()
	now := time.Now().UTC()
	e.CreatedAt = now
	e.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, createExpenseSQL,
		e.ID,
		e.OwnerID,
		e.Amount.Cents,
		string(e.Category),
		e.Description,
		e.Date.String(),
		now.Format(timeLayout),
		now.Format(timeLayout),
	)
	if err != nil {
		return core.Expense{}, fmt.Errorf("create expense: %w", err)
	}

	slog.InfoContext(ctx, "Expense saved",
		"expense_id", e.ID,
		"owner_id", e.OwnerID,
		"category", e.Category,
		"amount_cents", e.Amount.Cents)

	return e, nil
}

const getExpenseSQL = `
SELECT id, owner_id, amount_cents, category, description, date, created_at, updated_at
FROM expenses WHERE id = ?`

// GetExpense returns the record with the given id regardless of owner;
// ownership is decided by the caller.
func (r *SQLiteRepository) GetExpense(ctx context.Context, id string) (core.Expense, error) {
	row := r.db.QueryRowContext(ctx, getExpenseSQL, id)
	e, err := scanExpense(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Expense{}, ErrExpenseNotFound
	}
	if err != nil {
		return core.Expense{}, fmt.Errorf("get expense: %w", err)
	}
	return e, nil
}

const updateExpenseSQL = `
UPDATE expenses
SET amount_cents = ?, category = ?, description = ?, date = ?, updated_at = ?
WHERE id = ?`

// UpdateExpense replaces the record's mutable fields. Owner and id are
// immutable and never written.
func (r *SQLiteRepository) UpdateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	e.UpdatedAt = time.Now().UTC()

	res, err := r.db.ExecContext(ctx, updateExpenseSQL,
		e.Amount.Cents,
		string(e.Category),
		e.Description,
		e.Date.String(),
		e.UpdatedAt.Format(timeLayout),
		e.ID,
	)
	if err != nil {
		return core.Expense{}, fmt.Errorf("update expense: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return core.Expense{}, fmt.Errorf("update expense rows affected: %w", err)
	}
	if affected == 0 {
		return core.Expense{}, ErrExpenseNotFound
	}

	slog.InfoContext(ctx, "Expense updated",
		"expense_id", e.ID,
		"owner_id", e.OwnerID)

	return e, nil
}

// DeleteExpense removes the record if present. Deleting an absent id is
// not an error.
func (r *SQLiteRepository) DeleteExpense(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}

	slog.InfoContext(ctx, "Expense deleted", "expense_id", id)
	return nil
}

// ListExpenses returns the owner's records, optionally restricted to one
// category, ordered by date per the filter (newest first by default).
func (r *SQLiteRepository) ListExpenses(ctx context.Context, ownerID string, filter ListFilter) ([]core.Expense, error) {
	query := `
SELECT id, owner_id, amount_cents, category, description, date, created_at, updated_at
FROM expenses WHERE owner_id = ?`
	args := []any{ownerID}

	if filter.Category != nil {
		query += ` AND category = ?`
		args = append(args, string(*filter.Category))
	}

	if filter.Sort == SortDateAsc {
		query += ` ORDER BY date ASC, created_at ASC`
	} else {
		query += ` ORDER BY date DESC, created_at DESC`
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []core.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expenses: %w", err)
	}
	return expenses, nil
}

const summarizeSQL = `
SELECT category, SUM(amount_cents) AS total_cents, COUNT(*) AS cnt
FROM expenses WHERE owner_id = ?
GROUP BY category
ORDER BY total_cents DESC, category ASC`

// SummarizeByCategory aggregates the owner's records in the database,
// ordered by total descending.
func (r *SQLiteRepository) SummarizeByCategory(ctx context.Context, ownerID string) ([]core.CategorySummary, error) {
	rows, err := r.db.QueryContext(ctx, summarizeSQL, ownerID)
	if err != nil {
		return nil, fmt.Errorf("summarize by category: %w", err)
	}
	defer rows.Close()

	var out []core.CategorySummary
	for rows.Next() {
		var (
			category   string
			totalCents int64
			count      int
		)
		if err := rows.Scan(&category, &totalCents, &count); err != nil {
			return nil, fmt.Errorf("scan summary row: %w", err)
		}
		out = append(out, core.CategorySummary{
			Category: core.Category(category),
			Total:    core.Money{Cents: totalCents},
			Count:    count,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate summary rows: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExpense(row rowScanner) (core.Expense, error) {
	var (
		e          core.Expense
		category   string
		amount     int64
		date       string
		createdAt  string
		updatedAt  string
	)
	if err := row.Scan(&e.ID, &e.OwnerID, &amount, &category, &e.Description, &date, &createdAt, &updatedAt); err != nil {
		return core.Expense{}, err
	}

	e.Amount = core.Money{Cents: amount}
	e.Category = core.Category(category)

	d, err := core.ParseDate(date)
	if err != nil {
		return core.Expense{}, fmt.Errorf("parse stored date %q: %w", date, err)
	}
	e.Date = d

	if e.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
		return core.Expense{}, fmt.Errorf("parse created_at %q: %w", createdAt, err)
	}
	if e.UpdatedAt, err = time.Parse(timeLayout, updatedAt); err != nil {
		return core.Expense{}, fmt.Errorf("parse updated_at %q: %w", updatedAt, err)
	}
	return e, nil
}
