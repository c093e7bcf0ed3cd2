package core

import (
	"errors"
	"testing"
	"time"
)

func TestParseCategory(t *testing.T) {
	for _, c := range Categories() {
		got, err := ParseCategory(string(c))
		if err != nil || got != c {
			t.Fatalf("%q expected %q, got %q (err=%v)", c, c, got, err)
		}
	}
	for _, in := range []string{"", "food", "Groceries", "FOOD", "Other "} {
		// "Other " trims to a valid value; everything else must fail.
		got, err := ParseCategory(in)
		if in == "Other " {
			if err != nil || got != CategoryOther {
				t.Fatalf("%q expected Other, got %q (err=%v)", in, got, err)
			}
			continue
		}
		if err == nil {
			t.Fatalf("%q expected error, got %q", in, got)
		}
	}
}

func TestParseDate(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"2025-12-03", "2025-12-03", true},
		{"2025-12-03T00:00:00", "2025-12-03", true},
		{"2025-12-03T10:30:00+02:00", "2025-12-03", true},
		{"03/12/2025", "", false},
		{"not-a-date", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		d, err := ParseDate(tc.in)
		if tc.ok {
			if err != nil || d.String() != tc.want {
				t.Fatalf("%q expected %s, got %s (err=%v)", tc.in, tc.want, d, err)
			}
		} else if err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
	}
}

func TestExpenseValidate(t *testing.T) {
	good := Expense{
		Amount:      Money{Cents: 1999},
		Category:    CategoryFood,
		Description: "lunch",
		Date:        NewDate(2025, 1, 15),
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Expense)
		want   error
	}{
		{"zero amount", func(e *Expense) { e.Amount = Money{} }, ErrInvalidAmount},
		{"negative amount", func(e *Expense) { e.Amount = Money{Cents: -5} }, ErrInvalidAmount},
		{"zero date", func(e *Expense) { e.Date = Date{Time: time.Time{}} }, ErrInvalidDate},
		{"blank description", func(e *Expense) { e.Description = "   " }, ErrEmptyDescription},
		{"unknown category", func(e *Expense) { e.Category = "Groceries" }, ErrInvalidCategory},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := good
			tc.mutate(&e)
			if err := e.Validate(); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestExpenseValidateOrder(t *testing.T) {
	// A record failing every check must report the amount first.
	e := Expense{}
	if err := e.Validate(); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected amount error first, got %v", err)
	}
}
