package core

import "sort"

// CategorySummary aggregates an owner's records for one category.
type CategorySummary struct {
	Category Category
	Total    Money
	Count    int
}

// SummarizeByCategory groups expenses by category, summing amounts exactly.
// Results are ordered by total descending; ties break on category name so
// the ordering is deterministic.
func SummarizeByCategory(expenses []Expense) []CategorySummary {
	byCat := make(map[Category]*CategorySummary)
	for _, e := range expenses {
		cs, ok := byCat[e.Category]
		if !ok {
			cs = &CategorySummary{Category: e.Category}
			byCat[e.Category] = cs
		}
		cs.Total = cs.Total.Add(e.Amount)
		cs.Count++
	}

	out := make([]CategorySummary, 0, len(byCat))
	for _, cs := range byCat {
		out = append(out, *cs)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Total.Cents != out[j].Total.Cents {
			return out[i].Total.Cents > out[j].Total.Cents
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// SumAmounts returns the exact total of the given expenses.
func SumAmounts(expenses []Expense) Money {
	var total Money
	for _, e := range expenses {
		total = total.Add(e.Amount)
	}
	return total
}
