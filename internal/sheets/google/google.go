package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"solarlog/internal/cache"
	"solarlog/internal/core"
	applog "solarlog/internal/log"
	ports "solarlog/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

const (
	defaultDailySheet   = "daily"
	defaultMonthlySheet = "monthly"
	defaultPaybackSheet = "payback"
	defaultCacheTTL     = 2 * time.Minute

	// Raw values keep "3 Jun 2024" as text instead of letting Sheets turn it
	// into a locale formatted date.
	valueInputRaw = "RAW"
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	dailySheet    string
	monthlySheet  string
	paybackSheet  string
	// Rows of the daily sheet, dropped on every append.
	rows *cache.LRUCache[[][]interface{}]
}

// Ensure interface conformance
var (
	_ ports.RecordWriter  = (*Client)(nil)
	_ ports.RecordLister  = (*Client)(nil)
	_ ports.MonthlyWriter = (*Client)(nil)
	_ ports.PaybackWriter = (*Client)(nil)
)

// Options names the spreadsheet and its three worksheets. Empty sheet
// names fall back to "daily", "monthly" and "payback".
type Options struct {
	SpreadsheetID string
	DailySheet    string
	MonthlySheet  string
	PaybackSheet  string
}

// New creates a Sheets client authenticated with service account
// credentials taken from the environment.
func New(ctx context.Context, opts Options) (*Client, error) {
	spreadsheetID := strings.TrimSpace(opts.SpreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return newClient(svc, spreadsheetID,
		orDefault(opts.DailySheet, defaultDailySheet),
		orDefault(opts.MonthlySheet, defaultMonthlySheet),
		orDefault(opts.PaybackSheet, defaultPaybackSheet),
	), nil
}

func newClient(svc *gsheet.Service, spreadsheetID, daily, monthly, payback string) *Client {
	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		dailySheet:    daily,
		monthlySheet:  monthly,
		paybackSheet:  payback,
		rows:          cache.NewLRUCache[[][]interface{}](1, defaultCacheTTL),
	}
}

func orDefault(v, def string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return def
}

// newSheetsService initializes a Sheets Service using Service Account credentials.
// Uses GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS.
func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error

	switch {
	case serviceAccountJSON != "":
		slog.DebugContext(ctx, "Using inline JSON credentials")
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		slog.DebugContext(ctx, "Reading credentials from file", "path", serviceAccountFile)
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	slog.InfoContext(ctx, "Google Sheets service created successfully")
	return service, nil
}

// Append writes the record to the next free row of the daily sheet.
func (c *Client) Append(ctx context.Context, r core.DailyRecord) (string, error) {
	if err := r.Validate(); err != nil {
		return "", fmt.Errorf("validation failed: %w", err)
	}
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	values, err := c.dailyValues(ctx)
	if err != nil {
		return "", err
	}
	nextRow := len(values) + 1

	rng := fmt.Sprintf("%s!A%d:D%d", c.dailySheet, nextRow, nextRow)
	vr := &gsheet.ValueRange{Values: [][]interface{}{recordValues(r)}}
	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
		ValueInputOption(valueInputRaw).Context(ctx).Do()
	c.rows.Delete(c.dailySheet)
	if err != nil {
		return "", fmt.Errorf("failed to update %s: %w", rng, err)
	}

	slog.InfoContext(ctx, "Daily record appended", applog.NewFields().
		WithComponent(applog.ComponentSheets).
		WithOperation(applog.OpAppend).
		WithRecord(r).
		With("sheet", c.dailySheet).
		With("row", nextRow).
		ToSlice()...)
	return rng, nil
}

// ListRecords reads every daily record. A header row is skipped.
func (c *Client) ListRecords(ctx context.Context) ([]core.DailyRecord, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}
	values, err := c.dailyValues(ctx)
	if err != nil {
		return nil, err
	}
	rows, firstRow := dailyRows(values)
	records, err := core.ParseRows(rows)
	if err != nil {
		var mr *core.MalformedRecordError
		if errors.As(err, &mr) {
			return nil, fmt.Errorf("%s row %d: %w", c.dailySheet, firstRow+mr.Position, err)
		}
		return nil, err
	}
	return records, nil
}

// WriteMonthly rewrites the monthly sheet below its header row.
func (c *Client) WriteMonthly(ctx context.Context, summaries []core.MonthlySummary) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}

	clearRng := fmt.Sprintf("%s!A2:E", c.monthlySheet)
	_, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, clearRng, &gsheet.ClearValuesRequest{}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("clear %s: %w", clearRng, err)
	}
	if len(summaries) == 0 {
		return nil
	}

	rng := fmt.Sprintf("%s!A2:E%d", c.monthlySheet, len(summaries)+1)
	vr := &gsheet.ValueRange{Values: monthlyValues(summaries)}
	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
		ValueInputOption(valueInputRaw).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("update %s: %w", rng, err)
	}

	slog.InfoContext(ctx, "Monthly sheet updated",
		applog.FieldComponent, applog.ComponentSheets,
		applog.FieldOperation, applog.OpMonthly,
		"sheet", c.monthlySheet,
		"months", len(summaries))
	return nil
}

// WritePayback stores the balance in A2 of the payback sheet.
func (c *Client) WritePayback(ctx context.Context, p core.PaybackResult) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}
	rng := fmt.Sprintf("%s!A2", c.paybackSheet)
	vr := &gsheet.ValueRange{Values: [][]interface{}{{p.Balance.InexactFloat64()}}}
	_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
		ValueInputOption(valueInputRaw).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("update %s: %w", rng, err)
	}
	slog.InfoContext(ctx, "Payback sheet updated", applog.NewFields().
		WithComponent(applog.ComponentSheets).
		WithOperation(applog.OpPayback).
		WithPayback(p).
		With("sheet", c.paybackSheet).
		ToSlice()...)
	return nil
}

func (c *Client) dailyValues(ctx context.Context) ([][]interface{}, error) {
	return c.rows.GetOrLoad(ctx, c.dailySheet, func(ctx context.Context) ([][]interface{}, error) {
		rng := fmt.Sprintf("%s!A:D", c.dailySheet)
		resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", rng, err)
		}
		return resp.Values, nil
	})
}
