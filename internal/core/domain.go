package core

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Date layouts used by the daily sheet. RecordDateLayout is the only layout
// accepted from user input; the month-only layouts are tolerated when reading
// rows back from a store and are pinned to day 1.
const (
	RecordDateLayout    = "2 Jan 2006"
	MonthOnlyLayout     = "Jan 2006"
	MonthOnlyLongLayout = "January 2006"
	MonthKeyLayout      = "Jan 2006"
)

type (
	// Date is a calendar day without time of day, always stored in UTC.
	Date struct {
		time.Time
	}

	// DailyRecord holds the energy figures of a single day in kW.
	DailyRecord struct {
		Date     Date
		Consumed decimal.Decimal
		Exported decimal.Decimal
		Imported decimal.Decimal
	}

	// MonthKey identifies a calendar month of a given year.
	MonthKey struct {
		Year  int
		Month time.Month
	}
)

var (
	ErrInvalidDay       = errors.New("invalid day")
	ErrInvalidMonth     = errors.New("invalid month")
	ErrNegativeQuantity = errors.New("energy quantity must not be negative")
)

// NewDate creates a new Date from year, month, day
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar day in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, m, d)
}

func (d Date) Validate() error {
	if d.IsZero() {
		return errors.New("date cannot be zero")
	}
	_, month, day := d.Date()
	if day < 1 || day > 31 {
		return ErrInvalidDay
	}
	if month < 1 || month > 12 {
		return ErrInvalidMonth
	}
	return nil
}

// String formats the date as it is written to the daily sheet, e.g. "3 Jun 2024".
func (d Date) String() string {
	return d.Format(RecordDateLayout)
}

// Before reports whether d is a strictly earlier calendar day than other.
func (d Date) Before(other Date) bool {
	return d.Time.Before(other.Time)
}

// Equal reports whether both dates are the same calendar day.
func (d Date) Equal(other Date) bool {
	return d.Time.Equal(other.Time)
}

// ParseRecordDate parses a stored date. Full dates use RecordDateLayout; a
// value with only month and year ("Jun 2024") is treated as day 1 of that month.
func ParseRecordDate(s string) (Date, error) {
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return Date{}, errors.New("empty date")
	}
	if t, err := time.Parse(RecordDateLayout, s); err == nil {
		return DateOf(t), nil
	}
	for _, layout := range []string{MonthOnlyLayout, MonthOnlyLongLayout} {
		if t, err := time.Parse(layout, s); err == nil {
			return NewDate(t.Year(), t.Month(), 1), nil
		}
	}
	return Date{}, fmt.Errorf("cannot parse date %q", s)
}

// MonthKeyOf truncates a date to its month.
func MonthKeyOf(d Date) MonthKey {
	return MonthKey{Year: d.Year(), Month: d.Month()}
}

// String returns the long form, e.g. "June 2024".
func (k MonthKey) String() string {
	return fmt.Sprintf("%s %d", k.Month, k.Year)
}

// Short returns the form used in the monthly sheet, e.g. "Jun 2024".
func (k MonthKey) Short() string {
	return time.Date(k.Year, k.Month, 1, 0, 0, 0, 0, time.UTC).Format(MonthKeyLayout)
}

func (r DailyRecord) Validate() error {
	if err := r.Date.Validate(); err != nil {
		return err
	}
	if r.Consumed.IsNegative() || r.Exported.IsNegative() || r.Imported.IsNegative() {
		return ErrNegativeQuantity
	}
	return nil
}

// Row returns the record as the four text cells of a daily sheet row.
func (r DailyRecord) Row() []string {
	return []string{r.Date.String(), r.Consumed.String(), r.Exported.String(), r.Imported.String()}
}
