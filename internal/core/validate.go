package core

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var quantityFields = [...]string{"consumed", "exported", "imported"}

// SplitDailyLine splits an input line such as "3 Jun 2024, 5.154, 20.698, 6.354"
// into trimmed fields. An empty line yields no fields.
func SplitDailyLine(line string) []string {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}
	parts := strings.Split(line, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// ValidateDailyRecord turns four raw fields into a DailyRecord. The checks run
// in order and stop at the first failure: field count, date format, date
// strictly before today, date not already in existing, and finally the three
// quantities as non-negative numbers.
func ValidateDailyRecord(fields []string, existing []DailyRecord, now time.Time) (DailyRecord, error) {
	if len(fields) != 4 {
		return DailyRecord{}, &ValidationError{
			Kind:  ErrFieldCount,
			Field: "line",
			Value: strings.Join(fields, ","),
			Msg:   fmt.Sprintf("exactly 4 values required, you provided %d", len(fields)),
		}
	}

	rawDate := strings.TrimSpace(fields[0])
	t, err := time.Parse(RecordDateLayout, rawDate)
	if err != nil {
		return DailyRecord{}, &ValidationError{
			Kind:  ErrDateFormat,
			Field: "date",
			Value: rawDate,
			Msg:   "use Day Month Year, e.g. 3 Jun 2024",
		}
	}
	date := DateOf(t)

	today := DateOf(now)
	if !date.Before(today) {
		msg := "date is in the future, no data generated yet"
		if date.Equal(today) {
			msg = "date is today, the day is not over yet"
		}
		return DailyRecord{}, &ValidationError{Kind: ErrDateRange, Field: "date", Value: rawDate, Msg: msg}
	}

	for _, r := range existing {
		if r.Date.Equal(date) {
			return DailyRecord{}, &ValidationError{
				Kind:  ErrDuplicateDate,
				Field: "date",
				Value: rawDate,
				Msg:   "a record for this date already exists",
			}
		}
	}

	rec := DailyRecord{Date: date}
	for i, dst := range []*decimal.Decimal{&rec.Consumed, &rec.Exported, &rec.Imported} {
		raw := strings.TrimSpace(fields[i+1])
		v, err := parseDecimal(raw)
		if err != nil {
			msg := "enter a valid number"
			if errors.Is(err, errOutOfRange) {
				msg = "number out of range"
			}
			return DailyRecord{}, &ValidationError{
				Kind:  ErrNumericFormat,
				Field: quantityFields[i],
				Value: raw,
				Msg:   msg,
			}
		}
		if v.IsNegative() {
			return DailyRecord{}, &ValidationError{
				Kind:  ErrNumericFormat,
				Field: quantityFields[i],
				Value: raw,
				Msg:   "value must not be negative",
			}
		}
		*dst = v
	}
	return rec, nil
}
