package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"solarlog/internal/core"
)

type fakeLocalStore struct {
	ref      string
	err      error
	appended []core.DailyRecord
	closed   bool
}

func (f *fakeLocalStore) Append(_ context.Context, rec core.DailyRecord) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.appended = append(f.appended, rec)
	return f.ref, nil
}

func (f *fakeLocalStore) Close() error {
	f.closed = true
	return nil
}

type fakePublisher struct {
	ids    []int64
	dates  []string
	err    error
	closed bool
}

func (f *fakePublisher) PublishRecordSync(_ context.Context, id int64, date string) error {
	f.ids = append(f.ids, id)
	f.dates = append(f.dates, date)
	return f.err
}

func (f *fakePublisher) Close() error {
	f.closed = true
	return errors.New("already closed")
}

func TestRecordService_CreateRecord(t *testing.T) {
	rec := core.DailyRecord{Date: core.NewDate(2024, time.June, 3)}

	t.Run("publishes stored id", func(t *testing.T) {
		store := &fakeLocalStore{ref: "7"}
		pub := &fakePublisher{}
		ref, err := NewRecordService(store, pub).CreateRecord(context.Background(), rec)
		if err != nil || ref != "7" {
			t.Fatalf("ref=%q err=%v", ref, err)
		}
		if len(pub.ids) != 1 || pub.ids[0] != 7 || pub.dates[0] != "3 Jun 2024" {
			t.Fatalf("unexpected publish %v %v", pub.ids, pub.dates)
		}
	})

	t.Run("publish failure keeps record", func(t *testing.T) {
		store := &fakeLocalStore{ref: "8"}
		pub := &fakePublisher{err: errors.New("broker down")}
		ref, err := NewRecordService(store, pub).CreateRecord(context.Background(), rec)
		if err != nil || ref != "8" || len(store.appended) != 1 {
			t.Fatalf("ref=%q err=%v appended=%d", ref, err, len(store.appended))
		}
	})

	t.Run("nil publisher", func(t *testing.T) {
		ref, err := NewRecordService(&fakeLocalStore{ref: "1"}, nil).CreateRecord(context.Background(), rec)
		if err != nil || ref != "1" {
			t.Fatalf("ref=%q err=%v", ref, err)
		}
	})

	t.Run("storage failure", func(t *testing.T) {
		pub := &fakePublisher{}
		_, err := NewRecordService(&fakeLocalStore{err: core.ErrDuplicateDate}, pub).CreateRecord(context.Background(), rec)
		if !errors.Is(err, core.ErrDuplicateDate) {
			t.Fatalf("expected ErrDuplicateDate, got %v", err)
		}
		if len(pub.ids) != 0 {
			t.Fatal("nothing should be published when storage fails")
		}
	})
}

func TestRecordService_Close(t *testing.T) {
	t.Run("nil components", func(t *testing.T) {
		if err := (&RecordService{}).Close(); err != nil {
			t.Fatalf("Close should not return error with nil components: %v", err)
		}
	})

	t.Run("collects errors", func(t *testing.T) {
		store := &fakeLocalStore{}
		pub := &fakePublisher{}
		if err := NewRecordService(store, pub).Close(); err == nil {
			t.Fatal("expected publisher close error")
		}
		if !store.closed || !pub.closed {
			t.Fatal("both components should be closed")
		}
	})
}
