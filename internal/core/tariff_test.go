package core

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseTariff(t *testing.T) {
	tests := []struct {
		name        string
		self, exp   string
		expectError bool
	}{
		{"defaults", DefaultSelfConsumptionRate, DefaultExportRate, false},
		{"zero rates", "0", "0", false},
		{"bad self", "abc", "0.24", true},
		{"bad export", "0.2887", "", true},
		{"negative self", "-0.1", "0.24", true},
		{"negative export", "0.2887", "-1", true},
		{"huge exponent", "1e900000000", "0.24", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseTariff(tt.self, tt.exp)
			if (err != nil) != tt.expectError {
				t.Fatalf("ParseTariff(%q, %q) error = %v, expectError %v", tt.self, tt.exp, err, tt.expectError)
			}
		})
	}
}

func TestTariffSavings(t *testing.T) {
	got := DefaultTariff().Savings(
		decimal.RequireFromString("100"),
		decimal.RequireFromString("20"),
		decimal.RequireFromString("10"),
	)
	if want := decimal.RequireFromString("30.783"); !got.Equal(want) {
		t.Fatalf("Savings = %s, want %s", got, want)
	}
}
