package services

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"solarlog/internal/core"
)

// LocalStore is the durable side of the SQLite backend.
type LocalStore interface {
	Append(ctx context.Context, rec core.DailyRecord) (string, error)
	Close() error
}

// SyncPublisher announces a stored record so the worker can push it to the sheet.
type SyncPublisher interface {
	PublishRecordSync(ctx context.Context, id int64, date string) error
	Close() error
}

// RecordService saves daily records locally and queues them for remote sync.
type RecordService struct {
	storage   LocalStore
	publisher SyncPublisher
}

// NewRecordService accepts a nil publisher; records then stay pending until
// the worker's periodic scan picks them up.
func NewRecordService(storage LocalStore, publisher SyncPublisher) *RecordService {
	return &RecordService{
		storage:   storage,
		publisher: publisher,
	}
}

// CreateRecord stores rec and publishes a sync message. A failed publish is
// logged but does not fail the call since the record is already saved.
func (s *RecordService) CreateRecord(ctx context.Context, rec core.DailyRecord) (string, error) {
	ref, err := s.storage.Append(ctx, rec)
	if err != nil {
		return "", fmt.Errorf("save record: %w", err)
	}

	id, err := strconv.ParseInt(ref, 10, 64)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to parse record ID", "ref", ref, "error", err)
		return ref, nil
	}

	if s.publisher == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping sync message", "id", id)
		return ref, nil
	}
	if err := s.publisher.PublishRecordSync(ctx, id, rec.Date.String()); err != nil {
		slog.ErrorContext(ctx, "Failed to publish sync message", "id", id, "error", err)
	}
	return ref, nil
}

// Close closes both storage and AMQP connections
func (s *RecordService) Close() error {
	var errs []error
	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}
	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close record service: %v", errs)
	}
	return nil
}
