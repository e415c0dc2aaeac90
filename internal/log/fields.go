package log

import (
	"solarlog/internal/core"
)

// Common field names for structured logging
const (
	FieldComponent    = "component"
	FieldError        = "error"
	FieldErrorType    = "error_type"
	FieldOperation    = "operation"
	FieldRecordID     = "id"
	FieldRecordDate   = "date"
	FieldConsumed     = "consumed"
	FieldExported     = "exported"
	FieldImported     = "imported"
	FieldMonth        = "month"
	FieldSavings      = "savings"
	FieldTotalSavings = "total_savings"
	FieldProjectCost  = "project_cost"
	FieldBalance      = "balance"
	FieldStatus       = "status"
	FieldSheetsRef    = "sheets_ref"
)

const (
	ComponentApp     = "app"
	ComponentConsole = "console"
	ComponentStorage = "storage"
	ComponentAMQP    = "amqp"
	ComponentWorker  = "worker"
	ComponentSheets  = "sheets"
	ComponentBackend = "backend"
	ComponentReport  = "report"
)

const (
	OpAppend   = "append"
	OpList     = "list"
	OpMonthly  = "monthly"
	OpPayback  = "payback"
	OpExport   = "export"
	OpSync     = "sync"
	OpValidate = "validate"
	OpStartup  = "startup"
	OpShutdown = "shutdown"
)

const (
	ErrorTypeValidation    = "validation_error"
	ErrorTypeConfiguration = "configuration_error"
	ErrorTypeDatabase      = "database_error"
	ErrorTypeNetwork       = "network_error"
	ErrorTypeInternal      = "internal_error"
)

// LogFields collects structured attributes before handing them to slog.
type LogFields map[string]any

func NewFields() LogFields {
	return make(LogFields)
}

func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

func (f LogFields) WithErrorType(errType string) LogFields {
	f[FieldErrorType] = errType
	return f
}

func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithRecord adds the date and the three quantities of a daily record.
func (f LogFields) WithRecord(r core.DailyRecord) LogFields {
	f[FieldRecordDate] = r.Date.String()
	f[FieldConsumed] = r.Consumed.String()
	f[FieldExported] = r.Exported.String()
	f[FieldImported] = r.Imported.String()
	return f
}

func (f LogFields) WithSummary(s core.MonthlySummary) LogFields {
	f[FieldMonth] = s.Month.String()
	f[FieldSavings] = s.Savings.String()
	return f
}

func (f LogFields) WithPayback(p core.PaybackResult) LogFields {
	f[FieldTotalSavings] = p.TotalSavingsToDate.String()
	f[FieldProjectCost] = p.ProjectCost.String()
	f[FieldBalance] = p.Balance.String()
	f[FieldStatus] = string(p.Status())
	return f
}

func (f LogFields) With(key string, value any) LogFields {
	f[key] = value
	return f
}

// ToSlice converts LogFields to a slice for slog
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
