// Package console runs the interactive menu on top of the solar service.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"text/tabwriter"

	"solarlog/internal/core"
	applog "solarlog/internal/log"
	"solarlog/internal/services"
)

// Service is the control layer the menu drives.
type Service interface {
	SubmitDaily(ctx context.Context, line string) (core.DailyRecord, error)
	Daily(ctx context.Context) ([]core.DailyRecord, error)
	Monthly(ctx context.Context) ([]core.MonthlySummary, error)
	Payback(ctx context.Context, rawCost string) (core.PaybackResult, error)
}

// Exporter writes a report of the current data and returns the file paths.
// payback is nil until one has been computed in this session.
type Exporter interface {
	Export(ctx context.Context, payback *core.PaybackResult) ([]string, error)
}

type action int

const (
	backToMenu action = iota
	exitApp
)

type Console struct {
	svc      Service
	exporter Exporter
	in       *bufio.Scanner
	out      io.Writer

	lastPayback *core.PaybackResult
}

// New returns a console reading commands from in. exporter may be nil, in
// which case the export entry reports that exporting is unavailable.
func New(svc Service, exporter Exporter, in io.Reader, out io.Writer) *Console {
	return &Console{
		svc:      svc,
		exporter: exporter,
		in:       bufio.NewScanner(in),
		out:      out,
	}
}

// Run shows the menu until the user exits, input ends or ctx is cancelled.
func (c *Console) Run(ctx context.Context) error {
	c.printf("Welcome to the solar energy logger!\n\n")
	c.printf("Log daily household energy figures and track monthly\n")
	c.printf("savings and the payback of the installed system.\n\n")

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		c.printMenu()
		choice, ok := c.prompt("\nEnter your choice (1, 2, 3, 4, 5 or 6): ")
		if !ok {
			c.goodbye()
			return c.in.Err()
		}
		c.printf("\n")

		actx := applog.WithTrace(ctx)
		var next action
		switch choice {
		case "1":
			next = c.enterDaily(actx)
		case "2":
			next = c.viewDaily(actx)
		case "3":
			next = c.viewMonthly(actx)
		case "4":
			next = c.enterPayback(actx)
		case "5":
			next = c.export(actx)
		case "6":
			next = exitApp
		default:
			c.printf("Invalid choice. Please choose 1, 2, 3, 4, 5 or 6.\n\n")
			continue
		}
		if next == exitApp {
			c.goodbye()
			return nil
		}
	}
}

func (c *Console) printMenu() {
	c.printf("Main Menu:\n")
	c.printf("1. Enter daily data\n")
	c.printf("2. View daily data\n")
	c.printf("3. View monthly data\n")
	c.printf("4. Enter and view project payback\n")
	c.printf("5. Export report\n")
	c.printf("6. Exit\n")
}

func (c *Console) enterDaily(ctx context.Context) action {
	for {
		c.printf("Please enter daily energy use data.\n")
		c.printf("Format: Day Month Year, Consumed (kW), Exported (kW), Imported (kW)\n")
		c.printf("Example: 3 Jun 2024, 5.154, 20.698, 6.354\n\n")
		line, ok := c.prompt("Enter your data here: ")
		if !ok {
			return exitApp
		}

		rec, err := c.svc.SubmitDaily(ctx, line)
		var verr *core.ValidationError
		switch {
		case errors.Is(err, services.ErrMonthlyNotRefreshed):
			slog.WarnContext(ctx, "Daily record saved without monthly refresh", applog.NewFields().
				WithOperation(applog.OpMonthly).
				WithRecord(rec).
				WithError(err).
				ToSlice()...)
			c.printf("\nDaily record for %s saved, but the monthly data could not be updated: %v\n\n", rec.Date, err)
			return backToMenu
		case errors.As(err, &verr):
			slog.DebugContext(ctx, "Daily input rejected", applog.NewFields().
				WithOperation(applog.OpValidate).
				WithError(err).
				WithErrorType(applog.ErrorTypeValidation).
				ToSlice()...)
			c.printf("\n%s\n\n", verr.Error())
			continue
		case err != nil:
			slog.ErrorContext(ctx, "Failed to store daily record", applog.NewFields().
				WithOperation(applog.OpAppend).
				WithError(err).
				WithErrorType(applog.ErrorTypeDatabase).
				ToSlice()...)
			c.printf("\nCould not save the record: %v\n\n", err)
			return backToMenu
		}

		c.printf("\nData is valid.\n")
		c.printf("Daily record for %s saved, monthly data updated.\n\n", rec.Date)
		return backToMenu
	}
}

func (c *Console) viewDaily(ctx context.Context) action {
	records, err := c.svc.Daily(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to list daily records", applog.NewFields().
			WithOperation(applog.OpList).
			WithError(err).
			WithErrorType(applog.ErrorTypeDatabase).
			ToSlice()...)
		c.printf("Could not read daily data: %v\n\n", err)
		return backToMenu
	}
	if len(records) == 0 {
		c.printf("No daily data available.\n\n")
		return backToMenu
	}

	c.printf("Here is your daily data:\n")
	c.printf("Consumed (kW): energy used by the household.\n")
	c.printf("Exported (kW): energy sent to the grid.\n")
	c.printf("Imported (kW): energy drawn from the grid.\n\n")
	c.printf("%s\n", DailyTable(records))
	return c.nextStep()
}

func (c *Console) viewMonthly(ctx context.Context) action {
	summaries, err := c.svc.Monthly(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to compute monthly data", "error", err)
		c.printf("Could not compute monthly data: %v\n\n", err)
		return backToMenu
	}
	if len(summaries) == 0 {
		c.printf("No monthly data available.\n\n")
		return backToMenu
	}

	c.printf("Here is your monthly data:\n")
	c.printf("Savings (€): self consumed energy credited at the self consumption rate\n")
	c.printf("plus exported energy paid at the export rate.\n\n")
	c.printf("%s\n", MonthlyTable(summaries))
	return c.nextStep()
}

func (c *Console) enterPayback(ctx context.Context) action {
	for {
		c.printf("Please enter project cost.\n")
		c.printf("Format: Project Cost (€)\n")
		c.printf("Example: 5000.00\n\n")
		raw, ok := c.prompt("Enter your data here: ")
		if !ok {
			return exitApp
		}

		result, err := c.svc.Payback(ctx, raw)
		var verr *core.ValidationError
		switch {
		case errors.As(err, &verr):
			c.printf("\n%s\n\n", verr.Error())
			continue
		case err != nil:
			slog.ErrorContext(ctx, "Failed to compute payback", "error", err)
			c.printf("\nCould not compute payback: %v\n\n", err)
			return backToMenu
		}

		c.lastPayback = &result
		c.printf("\nProject data is valid.\n\n")
		c.printf("%s\n", PaybackTable(result))
		return c.nextStep()
	}
}

func (c *Console) export(ctx context.Context) action {
	if c.exporter == nil {
		c.printf("Exporting is not configured.\n\n")
		return backToMenu
	}
	paths, err := c.exporter.Export(ctx, c.lastPayback)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to export report", applog.NewFields().
			WithOperation(applog.OpExport).
			WithError(err).
			WithErrorType(applog.ErrorTypeInternal).
			ToSlice()...)
		c.printf("Could not export report: %v\n\n", err)
		return backToMenu
	}
	c.printf("Report written to:\n")
	for _, p := range paths {
		c.printf("  %s\n", p)
	}
	c.printf("\n")
	return backToMenu
}

// nextStep asks whether to return to the menu or leave the program.
func (c *Console) nextStep() action {
	for {
		c.printf("What would you like to do next?\n")
		c.printf("1. Back to main menu\n")
		c.printf("2. Exit\n")
		choice, ok := c.prompt("Enter your choice (1 or 2): ")
		if !ok {
			return exitApp
		}
		c.printf("\n")
		switch choice {
		case "1":
			return backToMenu
		case "2":
			return exitApp
		default:
			c.printf("Invalid choice. Please enter either 1 or 2.\n\n")
		}
	}
}

func (c *Console) prompt(label string) (string, bool) {
	c.printf("%s\n", label)
	if !c.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(c.in.Text()), true
}

func (c *Console) goodbye() {
	c.printf("Exiting the solar energy logger. Goodbye!\n")
}

func (c *Console) printf(format string, args ...any) {
	fmt.Fprintf(c.out, format, args...)
}

// DailyTable renders records as an aligned text table.
func DailyTable(records []core.DailyRecord) string {
	var b strings.Builder
	tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Date\tConsumed (kW)\tExported (kW)\tImported (kW)\t")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t\n", r.Date, r.Consumed, r.Exported, r.Imported)
	}
	tw.Flush()
	return b.String()
}

// MonthlyTable renders summaries with savings rounded to cents.
func MonthlyTable(summaries []core.MonthlySummary) string {
	var b strings.Builder
	tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Month Year\tConsumed (kW)\tExported (kW)\tImported (kW)\tSavings (€)\t")
	for _, s := range summaries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t\n",
			s.Month.Short(), s.ConsumedTotal, s.ExportedTotal, s.ImportedTotal, s.Savings.StringFixed(2))
	}
	tw.Flush()
	return b.String()
}

// PaybackTable renders the balance and its recoup state.
func PaybackTable(p core.PaybackResult) string {
	var b strings.Builder
	tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Total savings (€)\tProject cost (€)\tPayback (€)\tStatus\t")
	fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t\n",
		p.TotalSavingsToDate.StringFixed(2), p.ProjectCost.StringFixed(2), p.Balance.StringFixed(2), p.Status().Label())
	tw.Flush()
	return b.String()
}
