package ledger

import "vestra/internal/models"

// MetricsCollector receives counters from the ledger. Wire a real collector in
// production; the service falls back to the no-op one.
type MetricsCollector interface {
	RecordTransaction(txType string, amount models.Money)
	RecordAccruals(count int)
	RecordError(operation, errType string)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordTransaction(string, models.Money) {}
func (NoopMetricsCollector) RecordAccruals(int)                     {}
func (NoopMetricsCollector) RecordError(string, string)             {}
