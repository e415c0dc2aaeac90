package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// PaybackStatus is derived from the sign of a payback balance.
type PaybackStatus string

const (
	NotRecouped PaybackStatus = "not_recouped"
	BreakEven   PaybackStatus = "break_even"
	Recouped    PaybackStatus = "recouped"
)

func (s PaybackStatus) Label() string {
	switch s {
	case NotRecouped:
		return "not yet recouped"
	case BreakEven:
		return "break-even"
	case Recouped:
		return "recouped"
	default:
		return string(s)
	}
}

// PaybackResult compares accumulated savings with the one-time project cost.
type PaybackResult struct {
	TotalSavingsToDate decimal.Decimal
	ProjectCost        decimal.Decimal
	Balance            decimal.Decimal
}

func (p PaybackResult) Status() PaybackStatus {
	switch p.Balance.Sign() {
	case -1:
		return NotRecouped
	case 0:
		return BreakEven
	default:
		return Recouped
	}
}

// ComputePayback sums the savings of every summary and subtracts projectCost.
func ComputePayback(summaries []MonthlySummary, projectCost decimal.Decimal) (PaybackResult, error) {
	if projectCost.IsNegative() {
		return PaybackResult{}, &ValidationError{
			Kind:  ErrInvalidProjectCost,
			Field: "project_cost",
			Value: projectCost.String(),
			Msg:   "project cost must not be negative",
		}
	}
	total := decimal.Zero
	for _, s := range summaries {
		total = total.Add(s.Savings)
	}
	return PaybackResult{
		TotalSavingsToDate: total,
		ProjectCost:        projectCost,
		Balance:            total.Sub(projectCost),
	}, nil
}

// ParseProjectCost reads a project cost typed by the user, e.g. "5000.00".
// Exactly one finite, non-negative number is accepted.
func ParseProjectCost(raw string) (decimal.Decimal, error) {
	fields := strings.Split(strings.TrimSpace(raw), ",")
	if len(fields) != 1 {
		return decimal.Decimal{}, &ValidationError{
			Kind:  ErrInvalidProjectCost,
			Field: "project_cost",
			Value: raw,
			Msg:   "exactly 1 value required",
		}
	}
	s := strings.TrimSpace(fields[0])
	cost, err := parseDecimal(s)
	if err != nil {
		return decimal.Decimal{}, &ValidationError{
			Kind:  ErrInvalidProjectCost,
			Field: "project_cost",
			Value: s,
			Msg:   "not a finite number, use e.g. 5000.00",
		}
	}
	if cost.IsNegative() {
		return decimal.Decimal{}, &ValidationError{
			Kind:  ErrInvalidProjectCost,
			Field: "project_cost",
			Value: s,
			Msg:   "project cost must not be negative",
		}
	}
	return cost, nil
}
