package core

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// MonthlySummary is the fold of every DailyRecord of one month.
type MonthlySummary struct {
	Month         MonthKey
	ConsumedTotal decimal.Decimal
	ExportedTotal decimal.Decimal
	ImportedTotal decimal.Decimal
	RecordCount   int
	Savings       decimal.Decimal
}

// GroupByMonth folds records into one summary per month. Summaries come back
// in the order their month was first seen in records, and Savings is filled in
// with t once every record has been added.
func GroupByMonth(records []DailyRecord, t Tariff) ([]MonthlySummary, error) {
	index := make(map[MonthKey]int)
	out := make([]MonthlySummary, 0)

	for i, r := range records {
		if r.Date.IsZero() {
			return nil, &MalformedRecordError{Position: i, Err: errors.New("missing date")}
		}
		key := MonthKeyOf(r.Date)
		pos, ok := index[key]
		if !ok {
			pos = len(out)
			index[key] = pos
			out = append(out, MonthlySummary{
				Month:         key,
				ConsumedTotal: decimal.Zero,
				ExportedTotal: decimal.Zero,
				ImportedTotal: decimal.Zero,
			})
		}
		s := &out[pos]
		s.ConsumedTotal = s.ConsumedTotal.Add(r.Consumed)
		s.ExportedTotal = s.ExportedTotal.Add(r.Exported)
		s.ImportedTotal = s.ImportedTotal.Add(r.Imported)
		s.RecordCount++
	}

	for i := range out {
		out[i].Savings = t.Savings(out[i].ConsumedTotal, out[i].ExportedTotal, out[i].ImportedTotal)
	}
	return out, nil
}

// ParseRows converts rows read back from a store into records. Rows with every
// cell blank are skipped; anything else that does not parse is reported with
// its position.
func ParseRows(rows [][]string) ([]DailyRecord, error) {
	out := make([]DailyRecord, 0, len(rows))
	for i, row := range rows {
		if blankRow(row) {
			continue
		}
		if len(row) < 4 {
			return nil, &MalformedRecordError{Position: i, Value: strings.Join(row, ","), Err: fmt.Errorf("expected 4 columns, got %d", len(row))}
		}
		d, err := ParseRecordDate(row[0])
		if err != nil {
			return nil, &MalformedRecordError{Position: i, Value: row[0], Err: err}
		}
		rec := DailyRecord{Date: d}
		for j, dst := range []*decimal.Decimal{&rec.Consumed, &rec.Exported, &rec.Imported} {
			v, err := parseDecimal(strings.TrimSpace(row[j+1]))
			if err != nil {
				return nil, &MalformedRecordError{Position: i, Value: row[j+1], Err: err}
			}
			*dst = v
		}
		out = append(out, rec)
	}
	return out, nil
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
