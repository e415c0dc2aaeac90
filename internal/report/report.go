// Package report exports the logged data as a spreadsheet and a PDF summary.
package report

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	"solarlog/internal/core"
	applog "solarlog/internal/log"
)

const (
	dailySheet   = "daily"
	monthlySheet = "monthly"
	paybackSheet = "payback"
)

// Snapshot is the data a report is built from. Payback is nil when none has
// been computed.
type Snapshot struct {
	Records     []core.DailyRecord
	Summaries   []core.MonthlySummary
	Payback     *core.PaybackResult
	Tariff      core.Tariff
	GeneratedAt time.Time
}

// BuildXLSX lays the snapshot out like the Google spreadsheet: one sheet per
// view with a header row.
func BuildXLSX(s Snapshot) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", dailySheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	for _, name := range []string{monthlySheet, paybackSheet} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("create sheet %s: %w", name, err)
		}
	}

	rows := [][]interface{}{{"Date", "Consumed (kW)", "Exported (kW)", "Imported (kW)"}}
	for _, r := range s.Records {
		rows = append(rows, []interface{}{
			r.Date.String(), r.Consumed.InexactFloat64(), r.Exported.InexactFloat64(), r.Imported.InexactFloat64(),
		})
	}
	if err := setRows(f, dailySheet, rows); err != nil {
		return nil, err
	}

	rows = [][]interface{}{{"Month Year", "Consumed (kW)", "Exported (kW)", "Imported (kW)", "Savings (€)"}}
	for _, m := range s.Summaries {
		rows = append(rows, []interface{}{
			m.Month.Short(),
			m.ConsumedTotal.InexactFloat64(),
			m.ExportedTotal.InexactFloat64(),
			m.ImportedTotal.InexactFloat64(),
			m.Savings.Round(2).InexactFloat64(),
		})
	}
	if err := setRows(f, monthlySheet, rows); err != nil {
		return nil, err
	}

	rows = [][]interface{}{{"Payback (€)", "Total savings (€)", "Project cost (€)", "Status"}}
	if s.Payback != nil {
		p := s.Payback
		rows = append(rows, []interface{}{
			p.Balance.Round(2).InexactFloat64(),
			p.TotalSavingsToDate.Round(2).InexactFloat64(),
			p.ProjectCost.Round(2).InexactFloat64(),
			p.Status().Label(),
		})
	}
	if err := setRows(f, paybackSheet, rows); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

func setRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("%s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

// BuildPDF renders the monthly table and the payback line on one A4 page.
func BuildPDF(s Snapshot) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	// Core fonts are cp1252; translate so "€" survives.
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(0, 8, "Solar Energy Report")
	pdf.Ln(10)

	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Generated: %s", s.GeneratedAt.Format(time.RFC3339)))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Daily records: %d", len(s.Records)))
	pdf.Ln(5)
	pdf.Cell(0, 6, tr(fmt.Sprintf("Tariff: %s €/kW self consumption, %s €/kW export",
		s.Tariff.SelfConsumptionRate, s.Tariff.ExportRate)))
	pdf.Ln(8)

	widths := []float64{35, 35, 35, 35, 35}
	headers := []string{"Month Year", "Consumed (kW)", "Exported (kW)", "Imported (kW)", "Savings (€)"}
	pdf.SetFont("Arial", "B", 10)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 6, tr(h), "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 10)
	for _, m := range s.Summaries {
		pdf.CellFormat(widths[0], 6, m.Month.Short(), "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[1], 6, m.ConsumedTotal.StringFixed(3), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[2], 6, m.ExportedTotal.StringFixed(3), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[3], 6, m.ImportedTotal.StringFixed(3), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[4], 6, m.Savings.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}
	if len(s.Summaries) == 0 {
		pdf.CellFormat(0, 6, "No monthly data available.", "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
	}

	pdf.Ln(6)
	if s.Payback != nil {
		p := s.Payback
		pdf.Cell(0, 6, tr(fmt.Sprintf("Payback: %s € (%s), savings %s € against a project cost of %s €",
			p.Balance.StringFixed(2), p.Status().Label(),
			p.TotalSavingsToDate.StringFixed(2), p.ProjectCost.StringFixed(2))))
	} else {
		pdf.Cell(0, 6, "Payback: not computed.")
	}
	pdf.Ln(5)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteFiles writes both reports to dir, named after the generation time, and
// returns their paths.
func WriteFiles(dir string, s Snapshot) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create export directory: %w", err)
	}
	base := "solarlog-" + s.GeneratedAt.Format("20060102-150405")

	xlsx, err := BuildXLSX(s)
	if err != nil {
		return nil, err
	}
	pdf, err := BuildPDF(s)
	if err != nil {
		return nil, err
	}

	var paths []string
	for _, out := range []struct {
		ext  string
		data []byte
	}{{".xlsx", xlsx}, {".pdf", pdf}} {
		path := filepath.Join(dir, base+out.ext)
		if err := os.WriteFile(path, out.data, 0644); err != nil {
			return nil, fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// Source supplies the current records and monthly summaries.
type Source interface {
	Daily(ctx context.Context) ([]core.DailyRecord, error)
	Monthly(ctx context.Context) ([]core.MonthlySummary, error)
	LastPayback(ctx context.Context) (core.PaybackResult, bool, error)
	Tariff() core.Tariff
}

// Exporter writes reports of a Source into a fixed directory.
type Exporter struct {
	dir    string
	source Source
	now    func() time.Time
}

func NewExporter(dir string, source Source) *Exporter {
	return &Exporter{dir: dir, source: source, now: time.Now}
}

// Export writes the current records and summaries. A nil payback falls back
// to the last one the source has stored.
func (e *Exporter) Export(ctx context.Context, payback *core.PaybackResult) ([]string, error) {
	if payback == nil {
		stored, ok, err := e.source.LastPayback(ctx)
		if err != nil {
			return nil, err
		}
		if ok {
			payback = &stored
		}
	}
	records, err := e.source.Daily(ctx)
	if err != nil {
		return nil, err
	}
	summaries, err := e.source.Monthly(ctx)
	if err != nil {
		return nil, err
	}
	paths, err := WriteFiles(e.dir, Snapshot{
		Records:     records,
		Summaries:   summaries,
		Payback:     payback,
		Tariff:      e.source.Tariff(),
		GeneratedAt: e.now(),
	})
	if err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "Report exported",
		applog.FieldComponent, applog.ComponentReport,
		applog.FieldOperation, applog.OpExport,
		"files", paths,
		"months", len(summaries),
		"with_payback", payback != nil)
	return paths, nil
}
