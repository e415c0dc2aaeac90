package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"solarlog/internal/core"
	applog "solarlog/internal/log"
	ports "solarlog/internal/sheets"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"
)

// Sync states of a daily record.
const (
	SyncPending = "pending"
	SyncSynced  = "synced"
	SyncError   = "error"
)

const storedDateLayout = "2006-01-02"

// ErrNotFound is returned when a record id does not exist.
var ErrNotFound = errors.New("record not found")

var (
	_ ports.RecordWriter  = (*SQLiteRepository)(nil)
	_ ports.RecordLister  = (*SQLiteRepository)(nil)
	_ ports.MonthlyWriter = (*SQLiteRepository)(nil)
	_ ports.PaybackWriter = (*SQLiteRepository)(nil)
	_ ports.PaybackReader = (*SQLiteRepository)(nil)
)

type SQLiteRepository struct {
	db *sql.DB
}

// StoredRecord is a daily record with its local id and sync bookkeeping.
type StoredRecord struct {
	ID           int64
	Record       core.DailyRecord
	SyncStatus   string
	SyncAttempts int
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	if _, err := RunMigrations(dbPath); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// One writer at a time; sqlite serialises writes anyway.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Append implements sheets.RecordWriter. The returned reference is the local id.
func (r *SQLiteRepository) Append(ctx context.Context, rec core.DailyRecord) (string, error) {
	if err := rec.Validate(); err != nil {
		return "", err
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO daily_records (record_date, consumed, exported, imported) VALUES (?, ?, ?, ?)`,
		rec.Date.Format(storedDateLayout), rec.Consumed.String(), rec.Exported.String(), rec.Imported.String())
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return "", fmt.Errorf("record for %s: %w", rec.Date, core.ErrDuplicateDate)
		}
		return "", fmt.Errorf("insert daily record: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return "", fmt.Errorf("read inserted id: %w", err)
	}

	slog.InfoContext(ctx, "Daily record saved to SQLite", applog.NewFields().
		WithComponent(applog.ComponentStorage).
		WithOperation(applog.OpAppend).
		WithRecord(rec).
		With(applog.FieldRecordID, id).
		ToSlice()...)

	return strconv.FormatInt(id, 10), nil
}

// ListRecords implements sheets.RecordLister
func (r *SQLiteRepository) ListRecords(ctx context.Context) ([]core.DailyRecord, error) {
	stored, err := r.queryRecords(ctx, `SELECT id, record_date, consumed, exported, imported, sync_status, sync_attempts
		FROM daily_records ORDER BY id`)
	if err != nil {
		return nil, err
	}
	out := make([]core.DailyRecord, 0, len(stored))
	for _, s := range stored {
		out = append(out, s.Record)
	}
	return out, nil
}

func (r *SQLiteRepository) GetRecord(ctx context.Context, id int64) (StoredRecord, error) {
	stored, err := r.queryRecords(ctx, `SELECT id, record_date, consumed, exported, imported, sync_status, sync_attempts
		FROM daily_records WHERE id = ?`, id)
	if err != nil {
		return StoredRecord{}, err
	}
	if len(stored) == 0 {
		return StoredRecord{}, fmt.Errorf("id %d: %w", id, ErrNotFound)
	}
	return stored[0], nil
}

// GetPendingSyncRecords returns records not yet on the remote sheet, oldest first.
func (r *SQLiteRepository) GetPendingSyncRecords(ctx context.Context, limit int) ([]StoredRecord, error) {
	return r.queryRecords(ctx, `SELECT id, record_date, consumed, exported, imported, sync_status, sync_attempts
		FROM daily_records WHERE sync_status IN ('pending', 'error') ORDER BY id LIMIT ?`, limit)
}

func (r *SQLiteRepository) MarkSynced(ctx context.Context, id int64) error {
	return r.setSyncStatus(ctx, id, `UPDATE daily_records SET sync_status = 'synced', synced_at = CURRENT_TIMESTAMP WHERE id = ?`)
}

func (r *SQLiteRepository) MarkSyncError(ctx context.Context, id int64) error {
	return r.setSyncStatus(ctx, id, `UPDATE daily_records SET sync_status = 'error', sync_attempts = sync_attempts + 1 WHERE id = ?`)
}

func (r *SQLiteRepository) setSyncStatus(ctx context.Context, id int64, query string) error {
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("update sync status of %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("id %d: %w", id, ErrNotFound)
	}
	return nil
}

func (r *SQLiteRepository) queryRecords(ctx context.Context, query string, args ...any) ([]StoredRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query daily records: %w", err)
	}
	defer rows.Close()

	var out []StoredRecord
	for rows.Next() {
		var s StoredRecord
		var date, consumed, exp, imp string
		if err := rows.Scan(&s.ID, &date, &consumed, &exp, &imp, &s.SyncStatus, &s.SyncAttempts); err != nil {
			return nil, fmt.Errorf("scan daily record: %w", err)
		}
		t, err := time.Parse(storedDateLayout, date)
		if err != nil {
			return nil, fmt.Errorf("record %d date %q: %w", s.ID, date, err)
		}
		s.Record.Date = core.DateOf(t)
		if s.Record.Consumed, err = decimal.NewFromString(consumed); err != nil {
			return nil, fmt.Errorf("record %d consumed: %w", s.ID, err)
		}
		if s.Record.Exported, err = decimal.NewFromString(exp); err != nil {
			return nil, fmt.Errorf("record %d exported: %w", s.ID, err)
		}
		if s.Record.Imported, err = decimal.NewFromString(imp); err != nil {
			return nil, fmt.Errorf("record %d imported: %w", s.ID, err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// WriteMonthly implements sheets.MonthlyWriter by replacing every stored summary.
func (r *SQLiteRepository) WriteMonthly(ctx context.Context, summaries []core.MonthlySummary) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM monthly_summaries`); err != nil {
		return fmt.Errorf("clear monthly summaries: %w", err)
	}
	for i, s := range summaries {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO monthly_summaries (year, month, position, consumed, exported, imported, record_count, savings)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			s.Month.Year, int(s.Month.Month), i,
			s.ConsumedTotal.String(), s.ExportedTotal.String(), s.ImportedTotal.String(),
			s.RecordCount, s.Savings.String())
		if err != nil {
			return fmt.Errorf("insert summary %s: %w", s.Month, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit monthly summaries: %w", err)
	}
	return nil
}

// listMonthly returns the stored summaries in the order they were written.
func (r *SQLiteRepository) listMonthly(ctx context.Context) ([]core.MonthlySummary, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT year, month, consumed, exported, imported, record_count, savings FROM monthly_summaries ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query monthly summaries: %w", err)
	}
	defer rows.Close()

	var out []core.MonthlySummary
	for rows.Next() {
		var s core.MonthlySummary
		var month int
		var consumed, exp, imp, savings string
		if err := rows.Scan(&s.Month.Year, &month, &consumed, &exp, &imp, &s.RecordCount, &savings); err != nil {
			return nil, fmt.Errorf("scan monthly summary: %w", err)
		}
		s.Month.Month = time.Month(month)
		for _, f := range []struct {
			dst *decimal.Decimal
			raw string
		}{{&s.ConsumedTotal, consumed}, {&s.ExportedTotal, exp}, {&s.ImportedTotal, imp}, {&s.Savings, savings}} {
			if *f.dst, err = decimal.NewFromString(f.raw); err != nil {
				return nil, fmt.Errorf("summary %s: %w", s.Month, err)
			}
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// WritePayback implements sheets.PaybackWriter. Only the latest result is kept.
func (r *SQLiteRepository) WritePayback(ctx context.Context, p core.PaybackResult) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO payback (id, total_savings, project_cost, balance, updated_at) VALUES (1, ?, ?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(id) DO UPDATE SET total_savings = excluded.total_savings, project_cost = excluded.project_cost,
		 balance = excluded.balance, updated_at = excluded.updated_at`,
		p.TotalSavingsToDate.String(), p.ProjectCost.String(), p.Balance.String())
	if err != nil {
		return fmt.Errorf("save payback: %w", err)
	}
	return nil
}

// GetPayback implements sheets.PaybackReader. Only the latest result is kept.
func (r *SQLiteRepository) GetPayback(ctx context.Context) (p core.PaybackResult, ok bool, err error) {
	var total, cost, balance string
	err = r.db.QueryRowContext(ctx, `SELECT total_savings, project_cost, balance FROM payback WHERE id = 1`).
		Scan(&total, &cost, &balance)
	if errors.Is(err, sql.ErrNoRows) {
		return core.PaybackResult{}, false, nil
	}
	if err != nil {
		return core.PaybackResult{}, false, fmt.Errorf("read payback: %w", err)
	}
	if p.TotalSavingsToDate, err = decimal.NewFromString(total); err != nil {
		return core.PaybackResult{}, false, err
	}
	if p.ProjectCost, err = decimal.NewFromString(cost); err != nil {
		return core.PaybackResult{}, false, err
	}
	if p.Balance, err = decimal.NewFromString(balance); err != nil {
		return core.PaybackResult{}, false, err
	}
	return p, true, nil
}
