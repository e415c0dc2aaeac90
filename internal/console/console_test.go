package console

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"solarlog/internal/core"
	"solarlog/internal/services"
	"solarlog/internal/sheets/memory"

	"github.com/shopspring/decimal"
)

type fakeExporter struct {
	payback *core.PaybackResult
	calls   int
	err     error
}

func (f *fakeExporter) Export(_ context.Context, p *core.PaybackResult) ([]string, error) {
	f.calls++
	f.payback = p
	if f.err != nil {
		return nil, f.err
	}
	return []string{"exports/solarlog.xlsx", "exports/solarlog.pdf"}, nil
}

func run(t *testing.T, input string, exporter Exporter) (string, *memory.Store) {
	t.Helper()
	store := memory.New(nil)
	svc := services.NewSolarService(store, core.DefaultTariff()).
		WithClock(func() time.Time { return time.Date(2024, time.June, 20, 12, 0, 0, 0, time.UTC) })

	var out bytes.Buffer
	if err := New(svc, exporter, strings.NewReader(input), &out).Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	return out.String(), store
}

func TestEnterDailyRepromptsUntilValid(t *testing.T) {
	input := strings.Join([]string{
		"1",
		"3 Jun 2024, 1, 2",
		"3/6/2024, 1, 2, 3",
		"25 Jun 2024, 1, 2, 3",
		"3 Jun 2024, 1, x, 3",
		"3 Jun 2024, 100, 20, 10",
		"6",
	}, "\n")

	out, store := run(t, input, nil)

	for _, want := range []string{
		"exactly 4 values required, you provided 3",
		"use Day Month Year",
		"date is in the future",
		"Data is valid.",
		"Daily record for 3 Jun 2024 saved",
		"Goodbye!",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
	records, _ := store.ListRecords(context.Background())
	if len(records) != 1 {
		t.Fatalf("expected 1 stored record, got %d", len(records))
	}
}

func TestViewMonthlyAndPayback(t *testing.T) {
	input := strings.Join([]string{
		"1", "3 Jun 2024, 100, 20, 10",
		"3", "1",
		"4", "-10", "20", "1",
		"5",
		"4", "5000", "2",
	}, "\n")

	exp := &fakeExporter{}
	out, store := run(t, input, exp)

	for _, want := range []string{"Jun 2024", "30.78", "10.78", "recouped", "not yet recouped", "exports/solarlog.xlsx", "must not be negative"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
	if exp.calls != 1 || exp.payback == nil || !exp.payback.Balance.Equal(decimal.RequireFromString("10.783")) {
		t.Fatalf("export did not receive last payback: %+v", exp.payback)
	}
	p, ok, _ := store.GetPayback(context.Background())
	if !ok || p.Status() != core.NotRecouped {
		t.Fatalf("latest payback not persisted: %+v", p)
	}
}

func TestEmptyViewsAndInvalidChoices(t *testing.T) {
	out, _ := run(t, "9\n2\n3\n5\n", nil)
	for _, want := range []string{
		"Invalid choice. Please choose 1, 2, 3, 4, 5 or 6.",
		"No daily data available.",
		"No monthly data available.",
		"Exporting is not configured.",
		"Goodbye!",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestNextStepInvalidChoice(t *testing.T) {
	input := "1\n3 Jun 2024, 1, 1, 1\n2\nx\n1\n6\n"
	out, _ := run(t, input, nil)
	if !strings.Contains(out, "Invalid choice. Please enter either 1 or 2.") {
		t.Errorf("expected sub-menu re-prompt:\n%s", out)
	}
	if !strings.Contains(out, "3 Jun 2024") {
		t.Errorf("daily table missing record:\n%s", out)
	}
}

func TestExportFailure(t *testing.T) {
	out, _ := run(t, "5\n6\n", &fakeExporter{err: errors.New("disk full")})
	if !strings.Contains(out, "Could not export report: disk full") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestTables(t *testing.T) {
	records := []core.DailyRecord{{
		Date:     core.NewDate(2024, time.June, 3),
		Consumed: decimal.RequireFromString("5.154"),
		Exported: decimal.RequireFromString("20.698"),
		Imported: decimal.RequireFromString("6.354"),
	}}
	daily := DailyTable(records)
	if !strings.Contains(daily, "Consumed (kW)") || !strings.Contains(daily, "20.698") {
		t.Errorf("unexpected daily table:\n%s", daily)
	}

	summaries, err := core.GroupByMonth(records, core.DefaultTariff())
	if err != nil {
		t.Fatal(err)
	}
	monthly := MonthlyTable(summaries)
	if !strings.Contains(monthly, "Jun 2024") || !strings.Contains(monthly, "4.62") {
		t.Errorf("unexpected monthly table:\n%s", monthly)
	}

	payback := PaybackTable(core.PaybackResult{})
	if !strings.Contains(payback, "break-even") {
		t.Errorf("unexpected payback table:\n%s", payback)
	}
}

type monthlyFailingStore struct {
	*memory.Store
}

func (monthlyFailingStore) WriteMonthly(context.Context, []core.MonthlySummary) error {
	return errors.New("sheet locked")
}

func TestEnterDailyReportsSavedWhenMonthlyFails(t *testing.T) {
	store := monthlyFailingStore{memory.New(nil)}
	svc := services.NewSolarService(store, core.DefaultTariff()).
		WithClock(func() time.Time { return time.Date(2024, time.June, 20, 12, 0, 0, 0, time.UTC) })

	var out bytes.Buffer
	if err := New(svc, nil, strings.NewReader("1\n3 Jun 2024, 100, 20, 10\n6\n"), &out).Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	got := out.String()
	if !strings.Contains(got, "Daily record for 3 Jun 2024 saved, but the monthly data could not be updated") {
		t.Fatalf("missing saved-but-not-refreshed message:\n%s", got)
	}
	if strings.Contains(got, "Could not save the record") {
		t.Fatalf("record was saved but reported as not saved:\n%s", got)
	}
	if records, _ := store.ListRecords(context.Background()); len(records) != 1 {
		t.Fatalf("expected the record to be stored, have %d", len(records))
	}
}
