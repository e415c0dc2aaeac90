package adapters

import (
	"context"

	"solarlog/internal/core"
	"solarlog/internal/services"
	"solarlog/internal/storage"
)

// SQLiteAdapter routes appends through RecordService so each new record is
// queued for Google Sheets sync, while reads and derived views go straight
// to SQLite.
type SQLiteAdapter struct {
	storage *storage.SQLiteRepository
	service *services.RecordService
}

func NewSQLiteAdapter(storage *storage.SQLiteRepository, service *services.RecordService) *SQLiteAdapter {
	return &SQLiteAdapter{
		storage: storage,
		service: service,
	}
}

// Append implements sheets.RecordWriter
func (a *SQLiteAdapter) Append(ctx context.Context, rec core.DailyRecord) (string, error) {
	return a.service.CreateRecord(ctx, rec)
}

// ListRecords implements sheets.RecordLister
func (a *SQLiteAdapter) ListRecords(ctx context.Context) ([]core.DailyRecord, error) {
	return a.storage.ListRecords(ctx)
}

// WriteMonthly implements sheets.MonthlyWriter
func (a *SQLiteAdapter) WriteMonthly(ctx context.Context, summaries []core.MonthlySummary) error {
	return a.storage.WriteMonthly(ctx, summaries)
}

// WritePayback implements sheets.PaybackWriter
func (a *SQLiteAdapter) WritePayback(ctx context.Context, p core.PaybackResult) error {
	return a.storage.WritePayback(ctx, p)
}

// GetPayback implements sheets.PaybackReader
func (a *SQLiteAdapter) GetPayback(ctx context.Context) (core.PaybackResult, bool, error) {
	return a.storage.GetPayback(ctx)
}
