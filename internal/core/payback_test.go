package core

import (
	"errors"
	"testing"
)

func TestComputePayback(t *testing.T) {
	cases := []struct {
		name    string
		savings []string
		cost    string
		total   string
		balance string
		status  PaybackStatus
	}{
		{"recouped", []string{"30.783"}, "20", "30.783", "10.783", Recouped},
		{"empty break-even", nil, "0", "0", "0", BreakEven},
		{"not recouped", []string{"10", "15.5"}, "5000", "25.5", "-4974.5", NotRecouped},
		{"exact", []string{"2500", "2500"}, "5000.00", "5000", "0", BreakEven},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var summaries []MonthlySummary
			for _, s := range tc.savings {
				summaries = append(summaries, MonthlySummary{Savings: dec(s), RecordCount: 1})
			}
			res, err := ComputePayback(summaries, dec(tc.cost))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !res.TotalSavingsToDate.Equal(dec(tc.total)) {
				t.Fatalf("total: got %s want %s", res.TotalSavingsToDate, tc.total)
			}
			if !res.Balance.Equal(dec(tc.balance)) {
				t.Fatalf("balance: got %s want %s", res.Balance, tc.balance)
			}
			if res.Status() != tc.status {
				t.Fatalf("status: got %s want %s", res.Status(), tc.status)
			}
		})
	}
}

func TestComputePaybackDoesNotMutate(t *testing.T) {
	summaries := []MonthlySummary{{Savings: dec("1.5")}, {Savings: dec("2.5")}}
	if _, err := ComputePayback(summaries, dec("1")); err != nil {
		t.Fatal(err)
	}
	if !summaries[0].Savings.Equal(dec("1.5")) || !summaries[1].Savings.Equal(dec("2.5")) {
		t.Fatalf("inputs mutated: %+v", summaries)
	}
}

func TestComputePaybackNegativeCost(t *testing.T) {
	_, err := ComputePayback(nil, dec("-1"))
	if !errors.Is(err, ErrInvalidProjectCost) {
		t.Fatalf("expected ErrInvalidProjectCost, got %v", err)
	}
}

func TestParseProjectCost(t *testing.T) {
	cases := []struct {
		in  string
		out string
		ok  bool
	}{
		{"5000.00", "5000", true},
		{" 0 ", "0", true},
		{"1234.5", "1234.5", true},
		{"-1", "", false},
		{"abc", "", false},
		{"NaN", "", false},
		{"Inf", "", false},
		{"1e900000000", "", false},
		{"-1e900000000", "", false},
		{"1e-900000000", "", false},
		{"5e3", "5000", true},
		{"100, 200", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := ParseProjectCost(tc.in)
		if tc.ok {
			if err != nil || !got.Equal(dec(tc.out)) {
				t.Fatalf("%q expected %s, got %s (err=%v)", tc.in, tc.out, got, err)
			}
			continue
		}
		if !errors.Is(err, ErrInvalidProjectCost) {
			t.Fatalf("%q expected ErrInvalidProjectCost, got %v", tc.in, err)
		}
	}
}

func TestPaybackStatusLabel(t *testing.T) {
	if NotRecouped.Label() != "not yet recouped" || BreakEven.Label() != "break-even" || Recouped.Label() != "recouped" {
		t.Fatal("unexpected labels")
	}
}
