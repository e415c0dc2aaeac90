package core

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Bounds on accepted quantities. Exponent notation such as "1e900000000"
// parses into a tiny coefficient with a huge exponent, and formatting it
// would expand every digit.
const (
	maxIntegerDigits  = 15
	maxFractionDigits = 30
)

var errOutOfRange = errors.New("number out of range")

// parseDecimal parses a finite decimal whose magnitude and precision fit the
// bounds above.
func parseDecimal(raw string) (decimal.Decimal, error) {
	v, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, err
	}
	exp := int64(v.Exponent())
	if exp < -maxFractionDigits || int64(v.NumDigits())+exp > maxIntegerDigits {
		return decimal.Decimal{}, fmt.Errorf("%q: %w", raw, errOutOfRange)
	}
	return v, nil
}
