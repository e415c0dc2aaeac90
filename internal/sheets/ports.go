package sheets

import (
	"context"

	"solarlog/internal/core"
)

// Ports for outbound adapters.
type (
	RecordWriter interface {
		Append(ctx context.Context, r core.DailyRecord) (rowRef string, err error)
	}

	// RecordLister returns every stored daily record in insertion order.
	RecordLister interface {
		ListRecords(ctx context.Context) ([]core.DailyRecord, error)
	}

	// MonthlyWriter replaces the stored monthly summaries.
	MonthlyWriter interface {
		WriteMonthly(ctx context.Context, summaries []core.MonthlySummary) error
	}

	PaybackWriter interface {
		WritePayback(ctx context.Context, p core.PaybackResult) error
	}

	// PaybackReader returns the last written payback; ok is false when none
	// has been written.
	PaybackReader interface {
		GetPayback(ctx context.Context) (p core.PaybackResult, ok bool, err error)
	}
)
