package core

import "testing"

func TestParseDecimalToCents(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"1.0", 100, true},
		{"19.99", 1999, true},
		{"1,23", 123, true},
		{"0.01", 1, true},
		{"1.005", 101, true}, // half-up rounding
		{" 2.50 ", 250, true},
		{"-1", 0, false},
		{"+1", 0, false},
		{"0", 0, false},
		{"0.00", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseDecimalToCents(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
		}
	}
}

func TestMoneyString(t *testing.T) {
	cases := []struct {
		cents int64
		want  string
	}{
		{1999, "19.99"},
		{100, "1.00"},
		{5, "0.05"},
		{2000, "20.00"},
		{-150, "-1.50"},
	}
	for _, tc := range cases {
		if got := (Money{Cents: tc.cents}).String(); got != tc.want {
			t.Fatalf("cents=%d expected %q, got %q", tc.cents, tc.want, got)
		}
	}
}

func TestMoneyRoundTrip(t *testing.T) {
	// The value that drifts under float64 arithmetic must round-trip exactly.
	m, err := ParseMoney("19.99")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if m.String() != "19.99" {
		t.Fatalf("expected 19.99, got %s", m.String())
	}
}

func TestMoneyAddExact(t *testing.T) {
	a, _ := ParseMoney("12.30")
	b, _ := ParseMoney("7.70")
	if sum := a.Add(b); sum.String() != "20.00" {
		t.Fatalf("expected 20.00, got %s", sum.String())
	}

	// Repeated additions of 0.10 must not drift.
	var total Money
	tenth, _ := ParseMoney("0.10")
	for i := 0; i < 1000; i++ {
		total = total.Add(tenth)
	}
	if total.String() != "100.00" {
		t.Fatalf("expected 100.00, got %s", total.String())
	}
}
