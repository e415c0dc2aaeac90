package adapters

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"solarlog/internal/core"
	"solarlog/internal/services"
	"solarlog/internal/storage"

	"github.com/shopspring/decimal"
)

type recordingPublisher struct {
	ids []int64
}

func (p *recordingPublisher) PublishRecordSync(_ context.Context, id int64, _ string) error {
	p.ids = append(p.ids, id)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func TestSQLiteAdapterQueuesAppends(t *testing.T) {
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "solarlog.db"))
	if err != nil {
		t.Fatal(err)
	}
	pub := &recordingPublisher{}
	svc := services.NewRecordService(repo, pub)
	t.Cleanup(func() { svc.Close() })

	adapter := NewSQLiteAdapter(repo, svc)
	ctx := context.Background()
	rec := core.DailyRecord{
		Date:     core.NewDate(2024, time.June, 3),
		Consumed: decimal.NewFromInt(100),
		Exported: decimal.NewFromInt(20),
		Imported: decimal.NewFromInt(10),
	}

	ref, err := adapter.Append(ctx, rec)
	if err != nil || ref != "1" {
		t.Fatalf("ref=%q err=%v", ref, err)
	}
	if len(pub.ids) != 1 || pub.ids[0] != 1 {
		t.Fatalf("expected sync message for id 1, got %v", pub.ids)
	}
	if _, err := adapter.Append(ctx, rec); !errors.Is(err, core.ErrDuplicateDate) {
		t.Fatalf("expected ErrDuplicateDate, got %v", err)
	}

	records, err := adapter.ListRecords(ctx)
	if err != nil || len(records) != 1 {
		t.Fatalf("records=%v err=%v", records, err)
	}

	summaries, err := core.GroupByMonth(records, core.DefaultTariff())
	if err != nil {
		t.Fatal(err)
	}
	if err := adapter.WriteMonthly(ctx, summaries); err != nil {
		t.Fatal(err)
	}
	result, err := core.ComputePayback(summaries, decimal.NewFromInt(20))
	if err != nil {
		t.Fatal(err)
	}
	if err := adapter.WritePayback(ctx, result); err != nil {
		t.Fatal(err)
	}
	stored, ok, err := adapter.GetPayback(ctx)
	if err != nil || !ok || !stored.Balance.Equal(decimal.RequireFromString("10.783")) {
		t.Fatalf("stored payback %+v ok=%v err=%v", stored, ok, err)
	}
}
