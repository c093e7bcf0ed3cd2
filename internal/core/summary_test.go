package core

import "testing"

func TestSummarizeByCategory(t *testing.T) {
	expenses := []Expense{
		{Category: CategoryFood, Amount: Money{Cents: 1000}},
		{Category: CategoryFood, Amount: Money{Cents: 550}},
		{Category: CategoryTransport, Amount: Money{Cents: 225}},
	}

	got := SummarizeByCategory(expenses)
	if len(got) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(got))
	}
	if got[0].Category != CategoryFood || got[0].Total.String() != "15.50" || got[0].Count != 2 {
		t.Fatalf("unexpected first row: %+v", got[0])
	}
	if got[1].Category != CategoryTransport || got[1].Total.String() != "2.25" || got[1].Count != 1 {
		t.Fatalf("unexpected second row: %+v", got[1])
	}
}

func TestSummarizeByCategoryEmpty(t *testing.T) {
	if got := SummarizeByCategory(nil); len(got) != 0 {
		t.Fatalf("expected empty summary, got %+v", got)
	}
}

func TestSummarizeByCategoryTieOrder(t *testing.T) {
	expenses := []Expense{
		{Category: CategoryShopping, Amount: Money{Cents: 500}},
		{Category: CategoryFood, Amount: Money{Cents: 500}},
	}
	got := SummarizeByCategory(expenses)
	if got[0].Category != CategoryFood || got[1].Category != CategoryShopping {
		t.Fatalf("expected name tiebreak, got %+v", got)
	}
}

func TestSumAmounts(t *testing.T) {
	expenses := []Expense{
		{Amount: Money{Cents: 1230}},
		{Amount: Money{Cents: 770}},
	}
	if total := SumAmounts(expenses); total.String() != "20.00" {
		t.Fatalf("expected 20.00, got %s", total.String())
	}
}
