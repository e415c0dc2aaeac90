package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"solarlog/internal/amqp"
	"solarlog/internal/core"
	"solarlog/internal/sheets/memory"
	"solarlog/internal/storage"

	"github.com/shopspring/decimal"
)

type fakeLocal struct {
	records map[int64]*storage.StoredRecord
	order   []int64
}

func newFakeLocal(records ...core.DailyRecord) *fakeLocal {
	f := &fakeLocal{records: map[int64]*storage.StoredRecord{}}
	for i, r := range records {
		id := int64(i + 1)
		f.records[id] = &storage.StoredRecord{ID: id, Record: r, SyncStatus: storage.SyncPending}
		f.order = append(f.order, id)
	}
	return f
}

func (f *fakeLocal) GetRecord(_ context.Context, id int64) (storage.StoredRecord, error) {
	s, ok := f.records[id]
	if !ok {
		return storage.StoredRecord{}, storage.ErrNotFound
	}
	return *s, nil
}

func (f *fakeLocal) GetPendingSyncRecords(_ context.Context, limit int) ([]storage.StoredRecord, error) {
	var out []storage.StoredRecord
	for _, id := range f.order {
		if s := f.records[id]; s.SyncStatus != storage.SyncSynced && len(out) < limit {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (f *fakeLocal) MarkSynced(_ context.Context, id int64) error {
	f.records[id].SyncStatus = storage.SyncSynced
	return nil
}

func (f *fakeLocal) MarkSyncError(_ context.Context, id int64) error {
	f.records[id].SyncStatus = storage.SyncError
	f.records[id].SyncAttempts++
	return nil
}

type failingSheet struct {
	*memory.Store
}

func (failingSheet) Append(context.Context, core.DailyRecord) (string, error) {
	return "", errors.New("quota exceeded")
}

func rec(day int, consumed, exported, imported string) core.DailyRecord {
	return core.DailyRecord{
		Date:     core.NewDate(2024, time.June, day),
		Consumed: decimal.RequireFromString(consumed),
		Exported: decimal.RequireFromString(exported),
		Imported: decimal.RequireFromString(imported),
	}
}

func TestHandleSyncMessage(t *testing.T) {
	local := newFakeLocal(rec(3, "100", "20", "10"))
	remote := memory.New(nil)
	w := NewSyncWorker(local, remote, core.DefaultTariff(), 10)
	ctx := context.Background()

	if err := w.HandleSyncMessage(ctx, &amqp.RecordSyncMessage{ID: 1, Date: "3 Jun 2024"}); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if local.records[1].SyncStatus != storage.SyncSynced {
		t.Fatalf("record not marked synced: %q", local.records[1].SyncStatus)
	}
	monthly := remote.Monthly()
	if len(monthly) != 1 || !monthly[0].Savings.Equal(decimal.RequireFromString("30.783")) {
		t.Fatalf("unexpected monthly sheet %+v", monthly)
	}

	// Redelivery is a no-op.
	if err := w.HandleSyncMessage(ctx, &amqp.RecordSyncMessage{ID: 1}); err != nil {
		t.Fatalf("redelivery: %v", err)
	}
	if got, _ := remote.ListRecords(ctx); len(got) != 1 {
		t.Fatalf("expected 1 remote record, got %d", len(got))
	}
}

func TestHandleSyncMessageUnknownIDIsDropped(t *testing.T) {
	remote := memory.New(nil)
	w := NewSyncWorker(newFakeLocal(), remote, core.DefaultTariff(), 10)

	// A nil error acks the delivery so a stale id is not redelivered.
	if err := w.HandleSyncMessage(context.Background(), &amqp.RecordSyncMessage{ID: 42, Date: "3 Jun 2024"}); err != nil {
		t.Fatalf("expected unknown id to be acknowledged, got %v", err)
	}
	if got, _ := remote.ListRecords(context.Background()); len(got) != 0 {
		t.Fatalf("nothing should reach the sheet, have %d rows", len(got))
	}
}

type brokenLocal struct{ *fakeLocal }

func (brokenLocal) GetRecord(context.Context, int64) (storage.StoredRecord, error) {
	return storage.StoredRecord{}, errors.New("database is locked")
}

func TestHandleSyncMessageStorageErrorIsRetried(t *testing.T) {
	w := NewSyncWorker(brokenLocal{newFakeLocal()}, memory.New(nil), core.DefaultTariff(), 10)
	if err := w.HandleSyncMessage(context.Background(), &amqp.RecordSyncMessage{ID: 1}); err == nil {
		t.Fatal("expected storage error so the message is requeued")
	}
}

func TestHandleSyncMessageAlreadyOnSheet(t *testing.T) {
	r := rec(3, "1", "1", "1")
	local := newFakeLocal(r)
	remote := memory.New([]core.DailyRecord{r})
	w := NewSyncWorker(local, remote, core.DefaultTariff(), 10)

	if err := w.HandleSyncMessage(context.Background(), &amqp.RecordSyncMessage{ID: 1}); err != nil {
		t.Fatal(err)
	}
	if local.records[1].SyncStatus != storage.SyncSynced {
		t.Fatal("record present on sheet should be marked synced")
	}
	if got, _ := remote.ListRecords(context.Background()); len(got) != 1 {
		t.Fatalf("duplicate appended, have %d rows", len(got))
	}
}

func TestSyncFailureMarksError(t *testing.T) {
	local := newFakeLocal(rec(3, "1", "1", "1"))
	w := NewSyncWorker(local, failingSheet{memory.New(nil)}, core.DefaultTariff(), 10)

	if err := w.HandleSyncMessage(context.Background(), &amqp.RecordSyncMessage{ID: 1}); err == nil {
		t.Fatal("expected error")
	}
	if s := local.records[1]; s.SyncStatus != storage.SyncError || s.SyncAttempts != 1 {
		t.Fatalf("unexpected bookkeeping %+v", s)
	}
}

func TestProcessPendingRecords(t *testing.T) {
	local := newFakeLocal(rec(1, "1", "1", "1"), rec(2, "2", "2", "2"), rec(3, "3", "3", "3"))
	remote := memory.New(nil)
	w := NewSyncWorker(local, remote, core.DefaultTariff(), 2)
	ctx := context.Background()

	n, err := w.ProcessPendingRecords(ctx)
	if err != nil || n != 2 {
		t.Fatalf("first batch: n=%d err=%v", n, err)
	}
	n, err = w.ProcessPendingRecords(ctx)
	if err != nil || n != 1 {
		t.Fatalf("second batch: n=%d err=%v", n, err)
	}
	n, err = w.ProcessPendingRecords(ctx)
	if err != nil || n != 0 {
		t.Fatalf("empty batch: n=%d err=%v", n, err)
	}

	if got, _ := remote.ListRecords(ctx); len(got) != 3 {
		t.Fatalf("expected 3 remote records, got %d", len(got))
	}
	if m := remote.Monthly(); len(m) != 1 || m[0].RecordCount != 3 {
		t.Fatalf("unexpected monthly %+v", m)
	}
}

func TestStartupSyncCheck(t *testing.T) {
	local := newFakeLocal(rec(1, "1", "1", "1"), rec(2, "2", "2", "2"))
	w := NewSyncWorker(local, failingSheet{memory.New(nil)}, core.DefaultTariff(), 1)

	if err := w.StartupSyncCheck(context.Background()); err != nil {
		t.Fatalf("startup check should not fail on per-record errors: %v", err)
	}
	for id, s := range local.records {
		if s.SyncStatus != storage.SyncError {
			t.Fatalf("record %d: unexpected status %q", id, s.SyncStatus)
		}
	}
}
