// Package plugin provides an extensible plugin system for the demurrage
// ledger. Plugins hook into lifecycle and ledger events to extend
// functionality (audit trails, metrics, event streaming).
package plugin

import (
	"context"

	"github.com/xraph/demurrage/event"
)

// Plugin is the base interface that all plugins must implement.
type Plugin interface {
	Name() string
}

// ──────────────────────────────────────────────────
// Lifecycle hooks
// ──────────────────────────────────────────────────

// OnInit is called when the plugin is initialized.
type OnInit interface {
	Plugin
	OnInit(ctx context.Context, l interface{}) error
}

// OnShutdown is called when the plugin is shutting down.
type OnShutdown interface {
	Plugin
	OnShutdown(ctx context.Context) error
}

// ──────────────────────────────────────────────────
// Ledger event hooks
// ──────────────────────────────────────────────────

// OnTransferred is called after a successful transfer.
type OnTransferred interface {
	Plugin
	OnTransferred(ctx context.Context, e *event.Transferred) error
}

// OnIssued is called after units are issued.
type OnIssued interface {
	Plugin
	OnIssued(ctx context.Context, e *event.Issued) error
}

// OnBurned is called after units are burned.
type OnBurned interface {
	Plugin
	OnBurned(ctx context.Context, e *event.Burned) error
}

// OnSlashed is called after every slash.
type OnSlashed interface {
	Plugin
	OnSlashed(ctx context.Context, e *event.Slashed) error
}

// OnEvent receives every ledger event regardless of kind. It suits sinks
// that forward events without interpreting them.
type OnEvent interface {
	Plugin
	OnEvent(ctx context.Context, e event.Event) error
}

// ──────────────────────────────────────────────────
// Failure hooks
// ──────────────────────────────────────────────────

// OnOperationFailed is called when a ledger operation is rejected, for
// example with a balance-too-low error.
type OnOperationFailed interface {
	Plugin
	OnOperationFailed(ctx context.Context, op string, err error) error
}
