package plugin

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"sync"
	"time"

	"github.com/xraph/demurrage/event"
)

// DefaultTimeout bounds how long a single hook may run.
const DefaultTimeout = 5 * time.Second

// Registry manages all registered plugins and provides efficient dispatch.
// It uses type-cached discovery for O(1) dispatch performance.
type Registry struct {
	mu      sync.RWMutex
	plugins []Plugin
	logger  *slog.Logger
	timeout time.Duration

	// Type-cached plugin lists for efficient dispatch
	onInit            []OnInit
	onShutdown        []OnShutdown
	onTransferred     []OnTransferred
	onIssued          []OnIssued
	onBurned          []OnBurned
	onSlashed         []OnSlashed
	onEvent           []OnEvent
	onOperationFailed []OnOperationFailed
}

// NewRegistry creates a new plugin registry.
func NewRegistry() *Registry {
	return &Registry{
		logger:  slog.Default(),
		timeout: DefaultTimeout,
	}
}

// WithLogger sets the logger for the registry.
func (r *Registry) WithLogger(logger *slog.Logger) *Registry {
	r.logger = logger
	return r
}

// WithTimeout sets the per-hook timeout.
func (r *Registry) WithTimeout(d time.Duration) *Registry {
	if d > 0 {
		r.timeout = d
	}
	return r
}

// Register adds a plugin to the registry and caches its interfaces.
func (r *Registry) Register(p Plugin) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Check for duplicate
	for _, existing := range r.plugins {
		if existing.Name() == p.Name() {
			return fmt.Errorf("plugin: duplicate registration: %s", p.Name())
		}
	}

	r.plugins = append(r.plugins, p)

	// Type-switch to cache interfaces
	if v, ok := p.(OnInit); ok {
		r.onInit = append(r.onInit, v)
	}
	if v, ok := p.(OnShutdown); ok {
		r.onShutdown = append(r.onShutdown, v)
	}
	if v, ok := p.(OnTransferred); ok {
		r.onTransferred = append(r.onTransferred, v)
	}
	if v, ok := p.(OnIssued); ok {
		r.onIssued = append(r.onIssued, v)
	}
	if v, ok := p.(OnBurned); ok {
		r.onBurned = append(r.onBurned, v)
	}
	if v, ok := p.(OnSlashed); ok {
		r.onSlashed = append(r.onSlashed, v)
	}
	if v, ok := p.(OnEvent); ok {
		r.onEvent = append(r.onEvent, v)
	}
	if v, ok := p.(OnOperationFailed); ok {
		r.onOperationFailed = append(r.onOperationFailed, v)
	}

	r.logger.Info("plugin registered",
		"name", p.Name(),
		"interfaces", r.getImplementedInterfaces(p),
	)

	return nil
}

// getImplementedInterfaces returns a list of interfaces implemented by the plugin.
func (r *Registry) getImplementedInterfaces(p Plugin) []string {
	var interfaces []string
	v := reflect.TypeOf(p)

	checkInterface := func(iface reflect.Type, name string) {
		if v.Implements(iface) {
			interfaces = append(interfaces, name)
		}
	}

	checkInterface(reflect.TypeOf((*OnInit)(nil)).Elem(), "OnInit")
	checkInterface(reflect.TypeOf((*OnShutdown)(nil)).Elem(), "OnShutdown")
	checkInterface(reflect.TypeOf((*OnTransferred)(nil)).Elem(), "OnTransferred")
	checkInterface(reflect.TypeOf((*OnIssued)(nil)).Elem(), "OnIssued")
	checkInterface(reflect.TypeOf((*OnBurned)(nil)).Elem(), "OnBurned")
	checkInterface(reflect.TypeOf((*OnSlashed)(nil)).Elem(), "OnSlashed")
	checkInterface(reflect.TypeOf((*OnEvent)(nil)).Elem(), "OnEvent")
	checkInterface(reflect.TypeOf((*OnOperationFailed)(nil)).Elem(), "OnOperationFailed")

	return interfaces
}

// Get returns a plugin by name.
func (r *Registry) Get(name string) Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.plugins {
		if p.Name() == name {
			return p
		}
	}
	return nil
}

// List returns all registered plugins.
func (r *Registry) List() []Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Plugin, len(r.plugins))
	copy(result, r.plugins)
	return result
}

// Count returns the number of registered plugins.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.plugins)
}

// ──────────────────────────────────────────────────
// Event emission methods
// ──────────────────────────────────────────────────

// EmitInit calls OnInit for all plugins that implement it.
func (r *Registry) EmitInit(ctx context.Context, ledger interface{}) {
	r.mu.RLock()
	plugins := r.onInit
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnInit(ctx, ledger)
		}); err != nil {
			r.logger.Warn("plugin OnInit failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitShutdown calls OnShutdown for all plugins that implement it.
func (r *Registry) EmitShutdown(ctx context.Context) {
	r.mu.RLock()
	plugins := r.onShutdown
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnShutdown(ctx)
		}); err != nil {
			r.logger.Warn("plugin OnShutdown failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitTransferred emits a transfer event.
func (r *Registry) EmitTransferred(ctx context.Context, e *event.Transferred) {
	r.mu.RLock()
	plugins := r.onTransferred
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnTransferred(ctx, e)
		}); err != nil {
			r.logger.Warn("plugin OnTransferred failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
	r.emitEvent(ctx, e)
}

// EmitIssued emits an issue event.
func (r *Registry) EmitIssued(ctx context.Context, e *event.Issued) {
	r.mu.RLock()
	plugins := r.onIssued
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnIssued(ctx, e)
		}); err != nil {
			r.logger.Warn("plugin OnIssued failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
	r.emitEvent(ctx, e)
}

// EmitBurned emits a burn event.
func (r *Registry) EmitBurned(ctx context.Context, e *event.Burned) {
	r.mu.RLock()
	plugins := r.onBurned
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnBurned(ctx, e)
		}); err != nil {
			r.logger.Warn("plugin OnBurned failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
	r.emitEvent(ctx, e)
}

// EmitSlashed emits a slash event.
func (r *Registry) EmitSlashed(ctx context.Context, e *event.Slashed) {
	r.mu.RLock()
	plugins := r.onSlashed
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnSlashed(ctx, e)
		}); err != nil {
			r.logger.Warn("plugin OnSlashed failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
	r.emitEvent(ctx, e)
}

// EmitOperationFailed reports a rejected operation.
func (r *Registry) EmitOperationFailed(ctx context.Context, op string, opErr error) {
	r.mu.RLock()
	plugins := r.onOperationFailed
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnOperationFailed(ctx, op, opErr)
		}); err != nil {
			r.logger.Warn("plugin OnOperationFailed failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// emitEvent forwards e to every OnEvent plugin.
func (r *Registry) emitEvent(ctx context.Context, e event.Event) {
	r.mu.RLock()
	plugins := r.onEvent
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnEvent(ctx, e)
		}); err != nil {
			r.logger.Warn("plugin OnEvent failed",
				"plugin", p.Name(),
				"kind", e.EventKind(),
				"error", err,
			)
		}
	}
}

// callWithTimeout calls a plugin function with a timeout.
// Plugins should never block the ledger.
func (r *Registry) callWithTimeout(ctx context.Context, pluginName string, fn func() error) error {
	done := make(chan error, 1)

	go func() {
		done <- fn()
	}()

	select {
	case err := <-done:
		return err
	case <-time.After(r.timeout):
		return fmt.Errorf("plugin timeout: %s", pluginName)
	case <-ctx.Done():
		return ctx.Err()
	}
}
