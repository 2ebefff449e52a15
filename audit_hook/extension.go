// Package audithook bridges ledger events to an audit trail backend.
//
// It defines a local Recorder interface so the package does not import any
// audit backend directly. Callers inject a RecorderFunc adapter that bridges
// to their backend at wiring time.
package audithook

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/xraph/demurrage"
	"github.com/xraph/demurrage/event"
	"github.com/xraph/demurrage/plugin"
)

// Compile-time interface checks.
var (
	_ plugin.Plugin            = (*Extension)(nil)
	_ plugin.OnTransferred     = (*Extension)(nil)
	_ plugin.OnIssued          = (*Extension)(nil)
	_ plugin.OnBurned          = (*Extension)(nil)
	_ plugin.OnSlashed         = (*Extension)(nil)
	_ plugin.OnOperationFailed = (*Extension)(nil)
)

// Recorder is the interface that audit backends must implement.
type Recorder interface {
	Record(ctx context.Context, event *AuditEvent) error
}

// AuditEvent is a local representation of an audit event.
type AuditEvent struct {
	Action     string         `json:"action"`
	Resource   string         `json:"resource"`
	Category   string         `json:"category"`
	ResourceID string         `json:"resource_id,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	Outcome    string         `json:"outcome"`
	Severity   string         `json:"severity"`
	Reason     string         `json:"reason,omitempty"`
}

// RecorderFunc is an adapter to use a plain function as a Recorder.
type RecorderFunc func(ctx context.Context, event *AuditEvent) error

// Record implements Recorder.
func (f RecorderFunc) Record(ctx context.Context, event *AuditEvent) error {
	return f(ctx, event)
}

// Extension bridges ledger events to an audit trail backend.
type Extension struct {
	recorder Recorder
	enabled  map[string]bool // nil = all enabled
	logger   *slog.Logger
}

// New creates an Extension that emits audit events through the provided Recorder.
func New(r Recorder, opts ...Option) *Extension {
	e := &Extension{
		recorder: r,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name implements plugin.Plugin.
func (e *Extension) Name() string { return "audit-hook" }

// ──────────────────────────────────────────────────
// Balance hooks
// ──────────────────────────────────────────────────

// OnTransferred implements plugin.OnTransferred.
func (e *Extension) OnTransferred(ctx context.Context, ev *event.Transferred) error {
	return e.record(ctx, ActionTransferred, SeverityInfo, OutcomeSuccess,
		ResourceBalance, ev.ID.String(), CategoryLedger, nil,
		"currency", ev.Currency.String(),
		"block", ev.Block,
		"from", ev.From.String(),
		"to", ev.To.String(),
		"amount", ev.Amount.String(),
	)
}

// OnSlashed implements plugin.OnSlashed. A slash that could not take the
// full requested amount is recorded as a partial outcome.
func (e *Extension) OnSlashed(ctx context.Context, ev *event.Slashed) error {
	outcome := OutcomeSuccess
	if ev.Slashed.LessThan(ev.Requested) {
		outcome = OutcomePartial
	}
	return e.record(ctx, ActionSlashed, SeverityWarning, outcome,
		ResourceBalance, ev.ID.String(), CategoryEnforcement, nil,
		"currency", ev.Currency.String(),
		"block", ev.Block,
		"account", ev.Account.String(),
		"requested", ev.Requested.String(),
		"slashed", ev.Slashed.String(),
	)
}

// ──────────────────────────────────────────────────
// Issuance hooks
// ──────────────────────────────────────────────────

// OnIssued implements plugin.OnIssued.
func (e *Extension) OnIssued(ctx context.Context, ev *event.Issued) error {
	return e.record(ctx, ActionIssued, SeverityInfo, OutcomeSuccess,
		ResourceIssuance, ev.ID.String(), CategoryMonetary, nil,
		"currency", ev.Currency.String(),
		"block", ev.Block,
		"account", ev.Account.String(),
		"amount", ev.Amount.String(),
	)
}

// OnBurned implements plugin.OnBurned.
func (e *Extension) OnBurned(ctx context.Context, ev *event.Burned) error {
	return e.record(ctx, ActionBurned, SeverityInfo, OutcomeSuccess,
		ResourceIssuance, ev.ID.String(), CategoryMonetary, nil,
		"currency", ev.Currency.String(),
		"block", ev.Block,
		"account", ev.Account.String(),
		"amount", ev.Amount.String(),
	)
}

// ──────────────────────────────────────────────────
// Failure hooks
// ──────────────────────────────────────────────────

// OnOperationFailed implements plugin.OnOperationFailed. Business rejections
// are warnings; anything else is an error.
func (e *Extension) OnOperationFailed(ctx context.Context, op string, opErr error) error {
	severity := SeverityError
	if demurrage.IsBusinessError(opErr) || demurrage.IsInputError(opErr) {
		severity = SeverityWarning
	}
	return e.record(ctx, ActionOperationFailed, severity, OutcomeFailure,
		ResourceOperation, op, CategoryLedger, opErr,
		"op", op,
	)
}

// ──────────────────────────────────────────────────
// Internal helpers
// ──────────────────────────────────────────────────

// record builds and sends an audit event if the action is enabled.
func (e *Extension) record(
	ctx context.Context,
	action, severity, outcome string,
	resource, resourceID, category string,
	err error,
	kvPairs ...any,
) error {
	if e.enabled != nil && !e.enabled[action] {
		return nil
	}

	meta := make(map[string]any, len(kvPairs)/2+1)
	for i := 0; i+1 < len(kvPairs); i += 2 {
		key, ok := kvPairs[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", kvPairs[i])
		}
		meta[key] = kvPairs[i+1]
	}

	var reason string
	if err != nil {
		reason = err.Error()
		meta["error"] = err.Error()
	}

	evt := &AuditEvent{
		Action:     action,
		Resource:   resource,
		Category:   category,
		ResourceID: resourceID,
		Metadata:   meta,
		Outcome:    outcome,
		Severity:   severity,
		Reason:     reason,
	}

	if recErr := e.recorder.Record(ctx, evt); recErr != nil {
		e.logger.Warn("audit_hook: failed to record audit event",
			"action", action,
			"resource_id", resourceID,
			"error", recErr,
		)
	}
	return nil
}
