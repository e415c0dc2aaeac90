package core

import (
	"fmt"

	"github.com/shopspring/decimal"
)

const (
	DefaultSelfConsumptionRate = "0.2887"
	DefaultExportRate          = "0.24"
)

// Tariff converts energy quantities into euros. SelfConsumptionRate is
// credited for every kW consumed but not imported, ExportRate for every kW
// exported to the grid.
type Tariff struct {
	SelfConsumptionRate decimal.Decimal
	ExportRate          decimal.Decimal
}

func DefaultTariff() Tariff {
	return Tariff{
		SelfConsumptionRate: decimal.RequireFromString(DefaultSelfConsumptionRate),
		ExportRate:          decimal.RequireFromString(DefaultExportRate),
	}
}

// ParseTariff builds a tariff from two decimal strings.
func ParseTariff(selfConsumption, export string) (Tariff, error) {
	self, err := parseDecimal(selfConsumption)
	if err != nil {
		return Tariff{}, fmt.Errorf("self consumption rate %q: %w", selfConsumption, err)
	}
	exp, err := parseDecimal(export)
	if err != nil {
		return Tariff{}, fmt.Errorf("export rate %q: %w", export, err)
	}
	t := Tariff{SelfConsumptionRate: self, ExportRate: exp}
	if err := t.Validate(); err != nil {
		return Tariff{}, err
	}
	return t, nil
}

func (t Tariff) Validate() error {
	if t.SelfConsumptionRate.IsNegative() {
		return fmt.Errorf("self consumption rate must not be negative: %s", t.SelfConsumptionRate)
	}
	if t.ExportRate.IsNegative() {
		return fmt.Errorf("export rate must not be negative: %s", t.ExportRate)
	}
	return nil
}

// Savings applies (consumed - imported) * SelfConsumptionRate + exported * ExportRate.
func (t Tariff) Savings(consumed, exported, imported decimal.Decimal) decimal.Decimal {
	selfUsed := consumed.Sub(imported).Mul(t.SelfConsumptionRate)
	return selfUsed.Add(exported.Mul(t.ExportRate))
}
