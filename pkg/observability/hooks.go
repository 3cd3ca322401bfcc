// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about layout synchronization, interaction commits, and
// layout store operations.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// This approach:
//   - Avoids import cycles (hooks are registered by main, not by libraries)
//   - Keeps the placement engine free from observability frameworks
//   - Allows different backends (logs, Prometheus, OpenTelemetry, etc.)
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetLayoutHooks(&myLayoutHooks{})
//	    observability.SetCommitHooks(&myCommitHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Commit().OnCommit(ctx, boardID, breakpoint, len(layout), duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Layout Hooks
// =============================================================================

// LayoutHooks receives events from the layout synchronizer.
// Synchronization is pure CPU work on the render path, so these hooks carry no
// context.
type LayoutHooks interface {
	// OnSync records one synchronization pass of a breakpoint layout.
	OnSync(breakpoint string, total, placed int, duration time.Duration)

	// OnGrow records a row capacity increase.
	OnGrow(breakpoint string, from, to int)

	// OnExhausted records a widget placed past the row ceiling.
	OnExhausted(breakpoint, widgetID string, ceiling int)
}

// =============================================================================
// Commit Hooks
// =============================================================================

// CommitHooks receives events from the interaction commit pipeline.
type CommitHooks interface {
	// OnCapture records a buffered interaction snapshot.
	OnCapture(boardID, breakpoint string, rects int)

	// OnReject records a snapshot rejected by validation.
	OnReject(boardID, breakpoint string, err error)

	// OnCommit records one breakpoint write after the quiescence window.
	OnCommit(ctx context.Context, boardID, breakpoint string, rects int, duration time.Duration, err error)
}

// =============================================================================
// Store Hooks
// =============================================================================

// StoreHooks receives events from layout store backends.
type StoreHooks interface {
	// OnRead records a layout read.
	OnRead(ctx context.Context, backend, boardID string, duration time.Duration, err error)

	// OnWrite records a layout write.
	OnWrite(ctx context.Context, backend, boardID, breakpoint string, duration time.Duration, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopLayoutHooks is a no-op implementation of LayoutHooks.
type NoopLayoutHooks struct{}

func (NoopLayoutHooks) OnSync(string, int, int, time.Duration) {}
func (NoopLayoutHooks) OnGrow(string, int, int)                {}
func (NoopLayoutHooks) OnExhausted(string, string, int)        {}

// NoopCommitHooks is a no-op implementation of CommitHooks.
type NoopCommitHooks struct{}

func (NoopCommitHooks) OnCapture(string, string, int)  {}
func (NoopCommitHooks) OnReject(string, string, error) {}
func (NoopCommitHooks) OnCommit(context.Context, string, string, int, time.Duration, error) {
}

// NoopStoreHooks is a no-op implementation of StoreHooks.
type NoopStoreHooks struct{}

func (NoopStoreHooks) OnRead(context.Context, string, string, time.Duration, error) {}
func (NoopStoreHooks) OnWrite(context.Context, string, string, string, time.Duration, error) {
}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	layoutHooks LayoutHooks = NoopLayoutHooks{}
	commitHooks CommitHooks = NoopCommitHooks{}
	storeHooks  StoreHooks  = NoopStoreHooks{}
	hooksMu     sync.RWMutex
)

// SetLayoutHooks registers custom layout hooks.
// This should be called once at application startup before any board is opened.
func SetLayoutHooks(h LayoutHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		layoutHooks = h
	}
}

// SetCommitHooks registers custom commit hooks.
func SetCommitHooks(h CommitHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		commitHooks = h
	}
}

// SetStoreHooks registers custom store hooks.
func SetStoreHooks(h StoreHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		storeHooks = h
	}
}

// Layout returns the registered layout hooks.
func Layout() LayoutHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return layoutHooks
}

// Commit returns the registered commit hooks.
func Commit() CommitHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return commitHooks
}

// Store returns the registered store hooks.
func Store() StoreHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return storeHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	layoutHooks = NoopLayoutHooks{}
	commitHooks = NoopCommitHooks{}
	storeHooks = NoopStoreHooks{}
}
