package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"solarlog/internal/core"
	applog "solarlog/internal/log"
	ports "solarlog/internal/sheets"
)

// ErrMonthlyNotRefreshed marks a SubmitDaily failure that happened after the
// record itself was stored.
var ErrMonthlyNotRefreshed = errors.New("monthly view not refreshed")

// Store is everything the control layer needs from a backend.
type Store interface {
	ports.RecordWriter
	ports.RecordLister
	ports.MonthlyWriter
	ports.PaybackWriter
}

// SolarService validates input, persists it and keeps the derived monthly
// and payback views in step with the daily records.
type SolarService struct {
	store  Store
	tariff core.Tariff
	now    func() time.Time
}

func NewSolarService(store Store, tariff core.Tariff) *SolarService {
	return &SolarService{store: store, tariff: tariff, now: time.Now}
}

// WithClock replaces the wall clock used for the "strictly before today" check.
func (s *SolarService) WithClock(now func() time.Time) *SolarService {
	s.now = now
	return s
}

func (s *SolarService) Tariff() core.Tariff { return s.tariff }

// SubmitDaily validates one "date, consumed, exported, imported" line against
// the stored records, appends it and rewrites the monthly view.
// Validation failures are returned unwrapped so callers can show them as-is.
// A failed monthly rewrite after a successful append returns the stored record
// with an error matching ErrMonthlyNotRefreshed.
func (s *SolarService) SubmitDaily(ctx context.Context, line string) (core.DailyRecord, error) {
	existing, err := s.store.ListRecords(ctx)
	if err != nil {
		return core.DailyRecord{}, fmt.Errorf("list records: %w", err)
	}

	rec, err := core.ValidateDailyRecord(core.SplitDailyLine(line), existing, s.now())
	if err != nil {
		return core.DailyRecord{}, err
	}

	ref, err := s.store.Append(ctx, rec)
	if err != nil {
		return core.DailyRecord{}, fmt.Errorf("append record: %w", err)
	}
	slog.InfoContext(ctx, "Daily record stored", applog.NewFields().
		WithOperation(applog.OpAppend).
		WithRecord(rec).
		With(applog.FieldSheetsRef, ref).
		ToSlice()...)

	if _, err := s.writeMonthly(ctx, append(existing, rec)); err != nil {
		return rec, fmt.Errorf("record for %s saved: %w: %w", rec.Date, ErrMonthlyNotRefreshed, err)
	}
	return rec, nil
}

// Daily returns the stored records in stored order.
func (s *SolarService) Daily(ctx context.Context) ([]core.DailyRecord, error) {
	records, err := s.store.ListRecords(ctx)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	return records, nil
}

// Monthly recomputes the monthly summaries from the daily records and
// persists them before returning.
func (s *SolarService) Monthly(ctx context.Context) ([]core.MonthlySummary, error) {
	records, err := s.Daily(ctx)
	if err != nil {
		return nil, err
	}
	return s.writeMonthly(ctx, records)
}

func (s *SolarService) writeMonthly(ctx context.Context, records []core.DailyRecord) ([]core.MonthlySummary, error) {
	summaries, err := core.GroupByMonth(records, s.tariff)
	if err != nil {
		return nil, err
	}
	if err := s.store.WriteMonthly(ctx, summaries); err != nil {
		return nil, fmt.Errorf("write monthly: %w", err)
	}
	for _, m := range summaries {
		slog.DebugContext(ctx, "Monthly summary", applog.NewFields().
			WithOperation(applog.OpMonthly).
			WithSummary(m).
			ToSlice()...)
	}
	slog.DebugContext(ctx, "Monthly summaries refreshed", "months", len(summaries))
	return summaries, nil
}

// LastPayback returns the most recently stored payback when the store can
// read it back. Stores that only write payback report ok=false.
func (s *SolarService) LastPayback(ctx context.Context) (core.PaybackResult, bool, error) {
	r, ok := s.store.(ports.PaybackReader)
	if !ok {
		return core.PaybackResult{}, false, nil
	}
	p, found, err := r.GetPayback(ctx)
	if err != nil {
		return core.PaybackResult{}, false, fmt.Errorf("read payback: %w", err)
	}
	return p, found, nil
}

// Payback parses the project cost, computes the balance over the current
// monthly summaries and persists the result.
func (s *SolarService) Payback(ctx context.Context, rawCost string) (core.PaybackResult, error) {
	cost, err := core.ParseProjectCost(rawCost)
	if err != nil {
		return core.PaybackResult{}, err
	}

	summaries, err := s.Monthly(ctx)
	if err != nil {
		return core.PaybackResult{}, err
	}

	result, err := core.ComputePayback(summaries, cost)
	if err != nil {
		return core.PaybackResult{}, err
	}

	if err := s.store.WritePayback(ctx, result); err != nil {
		return core.PaybackResult{}, fmt.Errorf("write payback: %w", err)
	}
	slog.InfoContext(ctx, "Payback computed", applog.NewFields().
		WithOperation(applog.OpPayback).
		WithPayback(result).
		ToSlice()...)
	return result, nil
}
