package core

import (
	"testing"
	"time"
)

func TestDateValidate(t *testing.T) {
	cases := []struct {
		d  Date
		ok bool
	}{
		{NewDate(2025, time.January, 1), true},
		{NewDate(2025, time.December, 31), true},
		{Date{Time: time.Time{}}, false}, // zero time
	}
	for i, tc := range cases {
		err := tc.d.Validate()
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestParseRecordDate(t *testing.T) {
	cases := []struct {
		in   string
		want Date
		ok   bool
	}{
		{"3 Jun 2024", NewDate(2024, time.June, 3), true},
		{"  15   Jun 2024 ", NewDate(2024, time.June, 15), true},
		{"Jun 2024", NewDate(2024, time.June, 1), true},
		{"June 2024", NewDate(2024, time.June, 1), true},
		{"2024-06-03", Date{}, false},
		{"", Date{}, false},
	}
	for _, tc := range cases {
		got, err := ParseRecordDate(tc.in)
		if tc.ok {
			if err != nil || !got.Equal(tc.want) {
				t.Fatalf("%q expected %v, got %v (err=%v)", tc.in, tc.want, got, err)
			}
		} else if err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
	}
}

func TestMonthKeyFormats(t *testing.T) {
	k := MonthKeyOf(NewDate(2024, time.June, 15))
	if k.String() != "June 2024" {
		t.Fatalf("long: %q", k.String())
	}
	if k.Short() != "Jun 2024" {
		t.Fatalf("short: %q", k.Short())
	}
}

func TestDailyRecordValidate(t *testing.T) {
	good := rec(2024, time.June, 3, "1", "2", "3")
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	bad := rec(2024, time.June, 3, "1", "-2", "3")
	if err := bad.Validate(); err != ErrNegativeQuantity {
		t.Fatalf("expected ErrNegativeQuantity, got %v", err)
	}
	if err := (DailyRecord{}).Validate(); err == nil {
		t.Fatal("expected error for zero date")
	}
}
