// Package commit persists interactive layout edits without flooding the
// layout store.
//
// Every drag or resize hands the [Pipeline] a complete snapshot of the active
// breakpoint's rectangles. The pipeline keeps only the latest snapshot per
// breakpoint and writes them once the user has paused for the quiescence
// window:
//
//	p := commit.New(boardID, repo, commit.Options{Logger: logger})
//	defer p.Close()
//
//	p.Capture("wide", frame1) // buffered
//	p.Capture("wide", frame2) // replaces frame1, timer restarts
//	// 500ms later: one WriteLayout(boardID, "wide", frame2)
//
// A failed write is logged and dropped; the next interaction produces the next
// attempt.
package commit

import (
	"context"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/lemu/seamless-sea-sub003/pkg/errors"
	"github.com/lemu/seamless-sea-sub003/pkg/grid"
	"github.com/lemu/seamless-sea-sub003/pkg/observability"
)

// DefaultWriteTimeout bounds a single breakpoint write.
const DefaultWriteTimeout = 10 * time.Second

// Writer is the write half of the board layout repository.
type Writer interface {
	WriteLayout(ctx context.Context, boardID, breakpoint string, layout grid.Layout) error
}

// Options configures a Pipeline.
type Options struct {
	Delay        time.Duration
	WriteTimeout time.Duration
	Logger       *log.Logger
	Clock        Clock

	// RowCeiling bounds snapshot depth via grid.SnapshotRowLimit.
	// Zero uses grid.DefaultRowCeiling.
	RowCeiling int
}

// Pipeline buffers interaction snapshots for one board and commits the
// settled state.
type Pipeline struct {
	boardID  string
	writer   Writer
	logger   *log.Logger
	timeout  time.Duration
	rowLimit int

	debounce *Debouncer

	mu      sync.Mutex
	pending grid.Layouts
	closed  bool

	// commitMu orders commits: a batch is taken and written under it, so a
	// later batch for the same breakpoint can never land first.
	commitMu sync.Mutex

	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a pipeline committing to w for boardID.
func New(boardID string, w Writer, opts Options) *Pipeline {
	if opts.Logger == nil {
		opts.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = DefaultWriteTimeout
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Pipeline{
		boardID:  boardID,
		writer:   w,
		logger:   opts.Logger.With("board", boardID),
		timeout:  opts.WriteTimeout,
		rowLimit: grid.SnapshotRowLimit(opts.RowCeiling),
		debounce: NewDebouncer(opts.Delay, opts.Clock),
		pending:  make(grid.Layouts),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// BoardID returns the board this pipeline commits to.
func (p *Pipeline) BoardID() string { return p.boardID }

// Capture buffers the snapshot for breakpoint, replacing any uncommitted one,
// and restarts the quiescence timer. A malformed snapshot is rejected with an
// INVALID_SNAPSHOT error; the previously buffered snapshot and the timer are
// left as they were.
func (p *Pipeline) Capture(breakpoint string, layout grid.Layout) error {
	return p.CaptureAll(grid.Layouts{breakpoint: layout})
}

// CaptureAll buffers snapshots for several breakpoints at once. Validation is
// all-or-nothing.
func (p *Pipeline) CaptureAll(layouts grid.Layouts) error {
	if len(layouts) == 0 {
		return nil
	}
	for bp, l := range layouts {
		if err := validate(bp, l, p.rowLimit); err != nil {
			p.logger.Warn("rejected layout snapshot", "breakpoint", bp, "err", err)
			observability.Commit().OnReject(p.boardID, bp, err)
			return err
		}
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return errors.New(errors.ErrCodeInvalidInput, "pipeline for board %s is closed", p.boardID)
	}
	for bp, l := range layouts {
		p.pending[bp] = l.Clone()
	}
	p.mu.Unlock()

	for bp, l := range layouts {
		observability.Commit().OnCapture(p.boardID, bp, len(l))
	}
	p.debounce.Trigger(p.flush)
	return nil
}

func validate(breakpoint string, l grid.Layout, rowLimit int) error {
	if err := errors.ValidateBreakpointName(breakpoint); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidSnapshot, err, "snapshot breakpoint")
	}
	return l.ValidateWithin(0, rowLimit)
}

// Pending returns a copy of the buffered, uncommitted snapshots.
func (p *Pipeline) Pending() grid.Layouts {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pending.Clone()
}

// Flush commits the buffered snapshots now instead of waiting for the timer.
// It returns the first write error, if any.
func (p *Pipeline) Flush(ctx context.Context) error {
	p.debounce.Cancel()
	return p.commit(ctx)
}

// Cancel drops the pending timer and every buffered snapshot. Used when the
// view switches boards or unmounts.
func (p *Pipeline) Cancel() {
	p.debounce.Cancel()
	p.mu.Lock()
	p.pending = make(grid.Layouts)
	p.mu.Unlock()
}

// Close cancels pending work and aborts in-flight writes. The pipeline rejects
// captures afterwards.
func (p *Pipeline) Close() error {
	p.Cancel()
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	p.cancel()
	return nil
}

func (p *Pipeline) flush() {
	_ = p.commit(p.ctx)
}

// commit takes the buffer and writes one snapshot per breakpoint. The buffer
// is not restored on failure.
func (p *Pipeline) commit(ctx context.Context) error {
	p.commitMu.Lock()
	defer p.commitMu.Unlock()

	p.mu.Lock()
	batch := p.pending
	p.pending = make(grid.Layouts)
	p.mu.Unlock()

	if len(batch) == 0 {
		return nil
	}

	names := make([]string, 0, len(batch))
	for bp := range batch {
		names = append(names, bp)
	}
	sort.Strings(names)

	var g errgroup.Group
	for _, bp := range names {
		layout := batch[bp]
		g.Go(func() error {
			return p.write(ctx, bp, layout)
		})
	}
	return g.Wait()
}

func (p *Pipeline) write(ctx context.Context, breakpoint string, layout grid.Layout) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	start := time.Now()
	err := p.writer.WriteLayout(ctx, p.boardID, breakpoint, layout)
	elapsed := time.Since(start)
	observability.Commit().OnCommit(ctx, p.boardID, breakpoint, len(layout), elapsed, err)

	if err != nil {
		p.logger.Error("layout commit failed", "breakpoint", breakpoint, "rects", len(layout), "err", err)
		return errors.Wrap(errors.ErrCodeCommitFailed, err, "commit %s layout", breakpoint)
	}
	p.logger.Debug("committed layout", "breakpoint", breakpoint, "rects", len(layout), "duration", elapsed.Round(time.Millisecond))
	return nil
}
