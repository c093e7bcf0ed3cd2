package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"spendlog/internal/core"
)

func newTestSQLiteRepository(t *testing.T) *SQLiteRepository {
	t.Helper()
	r, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "spendlog_test.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func TestSQLiteRepositoryRoundTrip(t *testing.T) {
	r := newTestSQLiteRepository(t)
	ctx := context.Background()

	created, err := r.CreateExpense(ctx, core.Expense{
		OwnerID:     "user-a",
		Amount:      core.Money{Cents: 1999},
		Category:    core.CategoryFood,
		Description: "lunch",
		Date:        core.NewDate(2025, 1, 15),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected assigned id")
	}

	got, err := r.GetExpense(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Amount.String() != "19.99" {
		t.Fatalf("amount must survive storage exactly, got %s", got.Amount.String())
	}
	if got.Date.String() != "2025-01-15" {
		t.Fatalf("date round trip failed: %s", got.Date.String())
	}
	if got.OwnerID != "user-a" || got.Category != core.CategoryFood {
		t.Fatalf("unexpected record: %+v", got)
	}
}

func TestSQLiteRepositoryUpdateAndDelete(t *testing.T) {
	r := newTestSQLiteRepository(t)
	ctx := context.Background()

	created, err := r.CreateExpense(ctx, core.Expense{
		OwnerID:     "user-a",
		Amount:      core.Money{Cents: 500},
		Category:    core.CategoryFood,
		Description: "lunch",
		Date:        core.NewDate(2025, 1, 15),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	created.Description = "dinner"
	created.Amount = core.Money{Cents: 750}
	updated, err := r.UpdateExpense(ctx, created)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	got, _ := r.GetExpense(ctx, updated.ID)
	if got.Description != "dinner" || got.Amount.Cents != 750 {
		t.Fatalf("update not persisted: %+v", got)
	}

	// Updating an absent id reports not found.
	missing := created
	missing.ID = "no-such-id"
	if _, err := r.UpdateExpense(ctx, missing); !errors.Is(err, ErrExpenseNotFound) {
		t.Fatalf("expected ErrExpenseNotFound, got %v", err)
	}

	if err := r.DeleteExpense(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := r.GetExpense(ctx, created.ID); !errors.Is(err, ErrExpenseNotFound) {
		t.Fatalf("expected ErrExpenseNotFound after delete, got %v", err)
	}
	// Deleting again stays silent.
	if err := r.DeleteExpense(ctx, created.ID); err != nil {
		t.Fatalf("repeat delete: %v", err)
	}
}

func TestSQLiteRepositoryListAndSummary(t *testing.T) {
	r := newTestSQLiteRepository(t)
	ctx := context.Background()

	seed := []struct {
		owner string
		cents int64
		cat   core.Category
		desc  string
		date  core.Date
	}{
		{"user-a", 1000, core.CategoryFood, "old", core.NewDate(2025, 1, 1)},
		{"user-a", 550, core.CategoryFood, "mid", core.NewDate(2025, 2, 1)},
		{"user-a", 225, core.CategoryTransport, "new", core.NewDate(2025, 3, 1)},
		{"user-b", 9999, core.CategoryShopping, "foreign", core.NewDate(2025, 3, 1)},
	}
	for _, s := range seed {
		if _, err := r.CreateExpense(ctx, core.Expense{
			OwnerID:     s.owner,
			Amount:      core.Money{Cents: s.cents},
			Category:    s.cat,
			Description: s.desc,
			Date:        s.date,
		}); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	got, err := r.ListExpenses(ctx, "user-a", ListFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 3 || got[0].Description != "new" || got[2].Description != "old" {
		t.Fatalf("unexpected default order: %+v", got)
	}

	food := core.CategoryFood
	got, err = r.ListExpenses(ctx, "user-a", ListFilter{Category: &food, Sort: SortDateAsc})
	if err != nil {
		t.Fatalf("filtered list: %v", err)
	}
	if len(got) != 2 || got[0].Description != "old" {
		t.Fatalf("unexpected filtered order: %+v", got)
	}

	summary, err := r.SummarizeByCategory(ctx, "user-a")
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if len(summary) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(summary))
	}
	if summary[0].Category != core.CategoryFood || summary[0].Total.String() != "15.50" || summary[0].Count != 2 {
		t.Fatalf("unexpected first row: %+v", summary[0])
	}
	if summary[1].Category != core.CategoryTransport || summary[1].Total.String() != "2.25" {
		t.Fatalf("unexpected second row: %+v", summary[1])
	}
}
