// Package observability provides a metrics extension for the demurrage
// ledger that records event counts and amounts via a MetricFactory.
package observability

import (
	"context"

	"github.com/xraph/demurrage"
	"github.com/xraph/demurrage/event"
	"github.com/xraph/demurrage/plugin"
)

// Ensure MetricsExtension implements required interfaces.
var (
	_ plugin.Plugin            = (*MetricsExtension)(nil)
	_ plugin.OnInit            = (*MetricsExtension)(nil)
	_ plugin.OnTransferred     = (*MetricsExtension)(nil)
	_ plugin.OnIssued          = (*MetricsExtension)(nil)
	_ plugin.OnBurned          = (*MetricsExtension)(nil)
	_ plugin.OnSlashed         = (*MetricsExtension)(nil)
	_ plugin.OnOperationFailed = (*MetricsExtension)(nil)
)

// Counter interface for metric counters.
type Counter interface {
	Inc()
	Add(float64)
}

// Histogram interface for metric histograms.
type Histogram interface {
	Observe(float64)
}

// MetricFactory creates metrics.
type MetricFactory interface {
	Counter(name string) Counter
	Histogram(name string) Histogram
}

// MetricsExtension records ledger-wide metrics.
// Register it as a ledger plugin to track transfers, issuance and rejections.
type MetricsExtension struct {
	factory MetricFactory

	// Balance metrics
	Transfers      Counter
	TransferAmount Histogram

	// Issuance metrics
	Issued       Counter
	IssuedAmount Histogram
	Burned       Counter
	BurnedAmount Histogram

	// Enforcement metrics
	Slashes         Counter
	SlashedAmount   Histogram
	SlashShortfalls Counter

	// Error metrics
	Rejected Counter
	Failures Counter
}

// NewMetricsExtension creates a MetricsExtension with the provided MetricFactory.
// Use app.Metrics() in forge extensions.
func NewMetricsExtension(factory MetricFactory) *MetricsExtension {
	return &MetricsExtension{
		factory: factory,

		// Balance metrics
		Transfers:      factory.Counter("demurrage.transfer.count"),
		TransferAmount: factory.Histogram("demurrage.transfer.amount"),

		// Issuance metrics
		Issued:       factory.Counter("demurrage.issue.count"),
		IssuedAmount: factory.Histogram("demurrage.issue.amount"),
		Burned:       factory.Counter("demurrage.burn.count"),
		BurnedAmount: factory.Histogram("demurrage.burn.amount"),

		// Enforcement metrics
		Slashes:         factory.Counter("demurrage.slash.count"),
		SlashedAmount:   factory.Histogram("demurrage.slash.amount"),
		SlashShortfalls: factory.Counter("demurrage.slash.shortfalls"),

		// Error metrics
		Rejected: factory.Counter("demurrage.operation.rejected"),
		Failures: factory.Counter("demurrage.operation.failures"),
	}
}

// Name implements plugin.Plugin.
func (m *MetricsExtension) Name() string { return "observability-metrics" }

// OnInit implements plugin.OnInit.
func (m *MetricsExtension) OnInit(_ context.Context, _ interface{}) error {
	// No initialization needed
	return nil
}

// ──────────────────────────────────────────────────
// Ledger event hooks
// ──────────────────────────────────────────────────

// OnTransferred implements plugin.OnTransferred.
func (m *MetricsExtension) OnTransferred(_ context.Context, e *event.Transferred) error {
	m.Transfers.Inc()
	m.TransferAmount.Observe(e.Amount.Float64())
	return nil
}

// OnIssued implements plugin.OnIssued.
func (m *MetricsExtension) OnIssued(_ context.Context, e *event.Issued) error {
	m.Issued.Inc()
	m.IssuedAmount.Observe(e.Amount.Float64())
	return nil
}

// OnBurned implements plugin.OnBurned.
func (m *MetricsExtension) OnBurned(_ context.Context, e *event.Burned) error {
	m.Burned.Inc()
	m.BurnedAmount.Observe(e.Amount.Float64())
	return nil
}

// OnSlashed implements plugin.OnSlashed.
func (m *MetricsExtension) OnSlashed(_ context.Context, e *event.Slashed) error {
	m.Slashes.Inc()
	m.SlashedAmount.Observe(e.Slashed.Float64())
	if e.Slashed.LessThan(e.Requested) {
		m.SlashShortfalls.Inc()
	}
	return nil
}

// ──────────────────────────────────────────────────
// Failure hooks
// ──────────────────────────────────────────────────

// OnOperationFailed implements plugin.OnOperationFailed. Business and input
// rejections count as Rejected, anything else as Failures.
func (m *MetricsExtension) OnOperationFailed(_ context.Context, _ string, err error) error {
	if demurrage.IsBusinessError(err) || demurrage.IsInputError(err) {
		m.Rejected.Inc()
	} else {
		m.Failures.Inc()
	}
	return nil
}
