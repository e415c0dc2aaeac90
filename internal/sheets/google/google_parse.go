package google

import (
	"fmt"
	"strings"

	"solarlog/internal/core"
)

// dailyRows converts the values of the daily sheet into text rows. When the
// first row does not start with a date it is taken as the header and dropped.
// firstRow is the 1-based sheet row of rows[0].
func dailyRows(values [][]interface{}) (rows [][]string, firstRow int) {
	firstRow = 1
	rows = make([][]string, 0, len(values))
	for i, v := range values {
		cols := toStrings(v)
		if i == 0 && len(cols) > 0 {
			if _, err := core.ParseRecordDate(cols[0]); err != nil {
				firstRow = 2
				continue
			}
		}
		rows = append(rows, cols)
	}
	return rows, firstRow
}

func recordValues(r core.DailyRecord) []interface{} {
	return []interface{}{
		r.Date.String(),
		r.Consumed.InexactFloat64(),
		r.Exported.InexactFloat64(),
		r.Imported.InexactFloat64(),
	}
}

// monthlyValues lays out summaries as Month Year, Consumed, Exported,
// Imported, Savings.
func monthlyValues(summaries []core.MonthlySummary) [][]interface{} {
	out := make([][]interface{}, 0, len(summaries))
	for _, s := range summaries {
		out = append(out, []interface{}{
			s.Month.Short(),
			s.ConsumedTotal.InexactFloat64(),
			s.ExportedTotal.InexactFloat64(),
			s.ImportedTotal.InexactFloat64(),
			s.Savings.InexactFloat64(),
		})
	}
	return out
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}
