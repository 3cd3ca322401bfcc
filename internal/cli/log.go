// Package cli implements the seamless command-line interface.
//
// This package provides commands for serving board layouts over HTTP,
// placing the widgets of a board definition from the terminal and driving a
// board interactively. The CLI is built using cobra and supports verbose
// logging via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - serve: Run the layout HTTP API over the configured store
//   - place: Synchronize a board's layout and print the grid
//   - tui: Arrange a board interactively in the terminal
//   - config: Show the configuration file path and effective settings
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context to allow structured progress tracking.
// At debug level the placement, commit and store hooks log as well.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/lemu/seamless-sea-sub003/pkg/observability"
)

// newLogger creates a logger with "HH:MM:SS.ms" timestamps writing to w.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress logs how long an operation took. Not safe for concurrent use.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg with the elapsed time rounded to the millisecond.
// Example output: "Placed 3 widgets (12ms)"
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

type ctxKey int

const loggerKey ctxKey = 0

// withLogger returns a context carrying l.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext returns the logger attached by withLogger, or
// log.Default() when there is none.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}

// =============================================================================
// Observability Hooks
// =============================================================================

// logHooks reports engine events at debug level.
type logHooks struct {
	logger *log.Logger
}

// installLogHooks routes every observability hook to l.
func installLogHooks(l *log.Logger) {
	h := &logHooks{logger: l.WithPrefix("hooks")}
	observability.SetLayoutHooks(h)
	observability.SetCommitHooks(h)
	observability.SetStoreHooks(h)
}

func (h *logHooks) OnSync(bp string, total, placed int, dur time.Duration) {
	if placed > 0 {
		h.logger.Debug("sync", "breakpoint", bp, "widgets", total, "placed", placed, "took", dur)
	}
}

func (h *logHooks) OnGrow(bp string, from, to int) {
	h.logger.Debug("grow", "breakpoint", bp, "from", from, "to", to)
}

func (h *logHooks) OnExhausted(bp, widgetID string, ceiling int) {
	h.logger.Warn("row ceiling reached", "breakpoint", bp, "widget", widgetID, "ceiling", ceiling)
}

func (h *logHooks) OnCapture(board, bp string, rects int) {
	h.logger.Debug("capture", "board", board, "breakpoint", bp, "rects", rects)
}

func (h *logHooks) OnReject(board, bp string, err error) {
	h.logger.Debug("reject", "board", board, "breakpoint", bp, "err", err)
}

func (h *logHooks) OnCommit(_ context.Context, board, bp string, rects int, dur time.Duration, err error) {
	h.logger.Debug("commit", "board", board, "breakpoint", bp, "rects", rects, "took", dur, "err", err)
}

func (h *logHooks) OnRead(_ context.Context, backend, board string, dur time.Duration, err error) {
	h.logger.Debug("store read", "backend", backend, "board", board, "took", dur, "err", err)
}

func (h *logHooks) OnWrite(_ context.Context, backend, board, bp string, dur time.Duration, err error) {
	h.logger.Debug("store write", "backend", backend, "board", board, "breakpoint", bp, "took", dur, "err", err)
}
