package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"solarlog/internal/amqp"
	"solarlog/internal/core"
	applog "solarlog/internal/log"
	ports "solarlog/internal/sheets"
	"solarlog/internal/storage"
)

// LocalRecords is the sync bookkeeping side of the SQLite store.
type LocalRecords interface {
	GetRecord(ctx context.Context, id int64) (storage.StoredRecord, error)
	GetPendingSyncRecords(ctx context.Context, limit int) ([]storage.StoredRecord, error)
	MarkSynced(ctx context.Context, id int64) error
	MarkSyncError(ctx context.Context, id int64) error
}

// RemoteSheet is the Google side the worker writes to.
type RemoteSheet interface {
	ports.RecordWriter
	ports.RecordLister
	ports.MonthlyWriter
}

// SyncWorker copies daily records from SQLite to Google Sheets and keeps the
// remote monthly sheet in step with the remote daily sheet.
type SyncWorker struct {
	storage   LocalRecords
	sheets    RemoteSheet
	tariff    core.Tariff
	batchSize int
}

func NewSyncWorker(storage LocalRecords, sheets RemoteSheet, tariff core.Tariff, batchSize int) *SyncWorker {
	if batchSize <= 0 {
		batchSize = 10
	}
	return &SyncWorker{
		storage:   storage,
		sheets:    sheets,
		tariff:    tariff,
		batchSize: batchSize,
	}
}

// HandleSyncMessage processes a single record sync message from AMQP.
// Redelivered messages for records already synced are acknowledged without
// touching the sheet, as are messages naming an id the store does not have.
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg *amqp.RecordSyncMessage) error {
	slog.InfoContext(ctx, "Processing sync message", "id", msg.ID, "date", msg.Date)

	stored, err := w.storage.GetRecord(ctx, msg.ID)
	if errors.Is(err, storage.ErrNotFound) {
		slog.WarnContext(ctx, "Sync message for unknown record, dropping", applog.NewFields().
			WithOperation(applog.OpSync).
			WithError(err).
			WithErrorType(applog.ErrorTypeValidation).
			With(applog.FieldRecordID, msg.ID).
			ToSlice()...)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get record from storage: %w", err)
	}
	if stored.SyncStatus == storage.SyncSynced {
		slog.InfoContext(ctx, "Record already synced, skipping", "id", msg.ID)
		return nil
	}

	remote, err := w.sheets.ListRecords(ctx)
	if err != nil {
		return fmt.Errorf("list remote records: %w", err)
	}
	if err := w.syncRecord(ctx, stored, remote); err != nil {
		return fmt.Errorf("sync record to sheets: %w", err)
	}
	return w.RefreshMonthly(ctx)
}

// ProcessPendingRecords syncs records whose message was lost or whose
// previous attempt failed. It returns how many were synced.
func (w *SyncWorker) ProcessPendingRecords(ctx context.Context) (int, error) {
	synced, failed, err := w.syncPending(ctx, w.batchSize)
	if err != nil {
		return 0, err
	}
	if synced+failed > 0 {
		slog.InfoContext(ctx, "Processed pending records", "synced", synced, "errors", failed)
	}
	return synced, nil
}

// StartupSyncCheck drains a larger batch of pending records when the worker
// starts, recovering from downtime.
func (w *SyncWorker) StartupSyncCheck(ctx context.Context) error {
	synced, failed, err := w.syncPending(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("startup sync check: %w", err)
	}
	if synced+failed == 0 {
		slog.InfoContext(ctx, "No pending records found on startup", applog.FieldOperation, applog.OpStartup)
		return nil
	}
	slog.InfoContext(ctx, "Startup sync completed",
		applog.FieldOperation, applog.OpStartup,
		"total", synced+failed,
		"synced", synced,
		"errors", failed)
	return nil
}

func (w *SyncWorker) syncPending(ctx context.Context, limit int) (synced, failed int, err error) {
	pending, err := w.storage.GetPendingSyncRecords(ctx, limit)
	if err != nil {
		return 0, 0, fmt.Errorf("get pending records: %w", err)
	}
	if len(pending) == 0 {
		return 0, 0, nil
	}

	remote, err := w.sheets.ListRecords(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("list remote records: %w", err)
	}

	for _, s := range pending {
		if err := ctx.Err(); err != nil {
			return synced, failed, err
		}
		if err := w.syncRecord(ctx, s, remote); err != nil {
			slog.ErrorContext(ctx, "Failed to sync record", applog.NewFields().
				WithOperation(applog.OpSync).
				WithError(err).
				WithErrorType(applog.ErrorTypeNetwork).
				With(applog.FieldRecordID, s.ID).
				ToSlice()...)
			failed++
			continue
		}
		remote = append(remote, s.Record)
		synced++
	}

	if synced > 0 {
		if err := w.RefreshMonthly(ctx); err != nil {
			return synced, failed, err
		}
	}
	return synced, failed, nil
}

// syncRecord appends s unless the sheet already holds its date, which
// happens when an earlier append succeeded but MarkSynced did not.
func (w *SyncWorker) syncRecord(ctx context.Context, s storage.StoredRecord, remote []core.DailyRecord) error {
	for _, r := range remote {
		if r.Date.Equal(s.Record.Date) {
			slog.WarnContext(ctx, "Record date already on sheet, marking synced",
				"id", s.ID, "date", s.Record.Date.String())
			return w.markSynced(ctx, s.ID)
		}
	}

	ref, err := w.sheets.Append(ctx, s.Record)
	if err != nil {
		if markErr := w.storage.MarkSyncError(ctx, s.ID); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark sync error", applog.NewFields().
				WithOperation(applog.OpSync).
				WithError(markErr).
				WithErrorType(applog.ErrorTypeDatabase).
				With(applog.FieldRecordID, s.ID).
				ToSlice()...)
		}
		return fmt.Errorf("append to sheets: %w", err)
	}

	slog.InfoContext(ctx, "Successfully synced record", applog.NewFields().
		WithOperation(applog.OpSync).
		WithRecord(s.Record).
		With(applog.FieldRecordID, s.ID).
		With(applog.FieldSheetsRef, ref).
		ToSlice()...)
	return w.markSynced(ctx, s.ID)
}

func (w *SyncWorker) markSynced(ctx context.Context, id int64) error {
	// The row is on the sheet; a failed mark only means a later duplicate check.
	if err := w.storage.MarkSynced(ctx, id); err != nil {
		slog.ErrorContext(ctx, "Failed to mark as synced", applog.NewFields().
			WithOperation(applog.OpSync).
			WithError(err).
			WithErrorType(applog.ErrorTypeDatabase).
			With(applog.FieldRecordID, id).
			ToSlice()...)
	}
	return nil
}

// RefreshMonthly regroups the remote daily sheet and rewrites the monthly sheet.
func (w *SyncWorker) RefreshMonthly(ctx context.Context) error {
	records, err := w.sheets.ListRecords(ctx)
	if err != nil {
		return fmt.Errorf("list remote records: %w", err)
	}
	summaries, err := core.GroupByMonth(records, w.tariff)
	if err != nil {
		return fmt.Errorf("group remote records: %w", err)
	}
	if err := w.sheets.WriteMonthly(ctx, summaries); err != nil {
		return fmt.Errorf("write monthly sheet: %w", err)
	}
	slog.InfoContext(ctx, "Monthly sheet refreshed",
		applog.FieldOperation, applog.OpMonthly,
		"months", len(summaries),
		"records", len(records))
	return nil
}
