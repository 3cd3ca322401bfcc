package board

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/lemu/seamless-sea-sub003/pkg/commit"
	"github.com/lemu/seamless-sea-sub003/pkg/errors"
	"github.com/lemu/seamless-sea-sub003/pkg/focus"
	"github.com/lemu/seamless-sea-sub003/pkg/grid"
	"github.com/lemu/seamless-sea-sub003/pkg/store"
)

// Options configures a View.
type Options struct {
	Breakpoints grid.Breakpoints
	RowHeight   int
	RowMargin   int
	RowCeiling  int
	CommitDelay time.Duration

	// Width and Height are the initial viewport size in pixels.
	Width  int
	Height int

	Logger *log.Logger
	// Clock drives the commit timer; nil uses the system clock.
	Clock commit.Clock
}

func (o *Options) setDefaults() {
	if len(o.Breakpoints) == 0 {
		o.Breakpoints = grid.DefaultBreakpoints()
	}
	o.Breakpoints = o.Breakpoints.Normalize()
	if o.RowHeight <= 0 {
		o.RowHeight = focus.DefaultRowHeight
	}
	if o.RowMargin < 0 {
		o.RowMargin = 0
	}
	if o.RowCeiling <= 0 {
		o.RowCeiling = grid.DefaultRowCeiling
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// Rendered is the output of one render pass.
type Rendered struct {
	Breakpoint grid.Breakpoint
	Layout     grid.Layout
	MaxRows    int

	// Exhausted is set when a widget had to be placed past the row ceiling.
	Exhausted bool

	// Scroll is set on the render that completes an add operation; the
	// caller scrolls the target into view.
	Scroll *focus.Target
}

// View renders one board. It is driven from a single event loop and is not
// safe for concurrent use; only the commit pipeline works in the background.
type View struct {
	board    *Board
	repo     store.Repository
	opts     Options
	logger   *log.Logger
	sync     *grid.Synchronizer
	pipeline *commit.Pipeline
	focus    *focus.Controller

	// layouts holds the persisted layouts merged with local interactions
	// and placements. Placements reach the repository with the next
	// interaction snapshot.
	layouts grid.Layouts
	maxRows map[string]int
	active  grid.Breakpoint
	height  int

	adding   bool
	addingID string
	onDone   func()
	closed   bool
}

// Open reads the board's layouts from repo and prepares a view for the
// given viewport.
func Open(ctx context.Context, repo store.Repository, b *Board, opts Options) (*View, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	opts.setDefaults()
	if err := opts.Breakpoints.Validate(); err != nil {
		return nil, err
	}

	stored, err := repo.ReadLayouts(ctx, b.ID)
	if err != nil {
		return nil, err
	}

	logger := opts.Logger.With("board", b.ID)
	v := &View{
		board:  b,
		repo:   repo,
		opts:   opts,
		logger: logger,
		sync:   grid.NewSynchronizer(opts.RowCeiling, opts.Logger),
		pipeline: commit.New(b.ID, repo, commit.Options{
			Delay:      opts.CommitDelay,
			Logger:     opts.Logger,
			Clock:      opts.Clock,
			RowCeiling: opts.RowCeiling,
		}),
		focus: focus.New(focus.Options{
			RowHeight:  opts.RowHeight,
			RowMargin:  opts.RowMargin,
			RowCeiling: opts.RowCeiling,
		}),
		layouts: stored,
		maxRows: make(map[string]int),
	}
	if v.layouts == nil {
		v.layouts = make(grid.Layouts)
	}
	v.Resize(opts.Width, opts.Height)
	// Widgets present at open are the baseline for add detection.
	v.focus.Observe(focus.Frame{Widgets: v.widgetRefs()})
	logger.Debug("opened board view", "breakpoint", v.active.Name, "stored", len(stored), "widgets", len(b.Widgets))
	return v, nil
}

// Board returns the board being viewed.
func (v *View) Board() *Board { return v.board }

// Active returns the breakpoint of the current viewport.
func (v *View) Active() grid.Breakpoint { return v.active }

// MaxRows returns the row capacity of a breakpoint.
func (v *View) MaxRows(breakpoint string) int { return v.maxRows[breakpoint] }

// Layout returns the last rendered layout of a breakpoint.
func (v *View) Layout(breakpoint string) grid.Layout { return v.layouts[breakpoint].Clone() }

// Adding reports whether an add operation is waiting to be revealed.
func (v *View) Adding() bool { return v.adding }

// Resize adapts the view to a new viewport. The breakpoint follows the width;
// the row capacity follows the height but never shrinks.
func (v *View) Resize(width, height int) {
	v.height = height
	v.active = v.opts.Breakpoints.ForWidth(width)
	rows := grid.RowsForHeight(height, v.opts.RowHeight, v.opts.RowMargin)
	v.maxRows[v.active.Name] = max(v.maxRows[v.active.Name], rows)
}

// Render synchronizes the active breakpoint and every breakpoint that
// already has a layout, then runs the add focus controller.
func (v *View) Render() Rendered {
	ids := v.board.WidgetIDs()

	// Breakpoints other than the active one are only kept in step once they
	// have a layout of their own.
	for _, bp := range v.opts.Breakpoints {
		if bp.Name == v.active.Name {
			continue
		}
		if _, ok := v.layouts[bp.Name]; !ok {
			continue
		}
		v.syncBreakpoint(bp, ids)
	}
	res := v.syncBreakpoint(v.active, ids)

	out := Rendered{
		Breakpoint: v.active,
		Layout:     res.Layout.Clone(),
		MaxRows:    res.MaxRows,
		Exhausted:  res.Exhausted,
	}

	action := v.focus.Observe(focus.Frame{
		Widgets: v.widgetRefs(),
		Layout:  res.Layout,
		MaxRows: res.MaxRows,
		Adding:  v.adding,
	})

	switch action.Kind {
	case focus.ActionGrow:
		v.logger.Debug("growing grid for added widget", "breakpoint", v.active.Name, "max_rows", action.MaxRows)
		v.maxRows[v.active.Name] = action.MaxRows
		// The scroll happens on the render after the growth.
		return v.Render()
	case focus.ActionScroll:
		t := action.Target
		out.Scroll = &t
		v.completeAdd()
	}
	return out
}

func (v *View) widgetRefs() []focus.WidgetRef {
	refs := make([]focus.WidgetRef, len(v.board.Widgets))
	for i, w := range v.board.Widgets {
		refs[i] = focus.WidgetRef{ID: w.ID, CreatedAt: w.CreatedAt}
	}
	return refs
}

func (v *View) syncBreakpoint(bp grid.Breakpoint, ids []string) grid.SyncResult {
	if _, ok := v.maxRows[bp.Name]; !ok {
		v.maxRows[bp.Name] = grid.RowsForHeight(v.height, v.opts.RowHeight, v.opts.RowMargin)
	}
	res := v.sync.Sync(v.layouts[bp.Name], ids, bp, v.maxRows[bp.Name])
	v.maxRows[bp.Name] = res.MaxRows
	v.layouts[bp.Name] = res.Layout
	return res
}

// Interact records a drag or resize of the active breakpoint. The layout
// becomes the view's layout immediately and is persisted once the user
// stops interacting. A malformed snapshot is rejected and changes nothing.
func (v *View) Interact(layout grid.Layout) error {
	return v.InteractAll(grid.Layouts{v.active.Name: layout})
}

// InteractAll records interaction snapshots for several breakpoints.
func (v *View) InteractAll(layouts grid.Layouts) error {
	if v.closed {
		return errors.New(errors.ErrCodeInvalidInput, "view of board %s is closed", v.board.ID)
	}
	for name, l := range layouts {
		bp, ok := v.opts.Breakpoints.Lookup(name)
		if !ok {
			return errors.New(errors.ErrCodeInvalidBreakpoint, "unknown breakpoint %q", name)
		}
		if err := l.ValidateWithin(bp.Columns, grid.SnapshotRowLimit(v.opts.RowCeiling)); err != nil {
			return err
		}
	}
	if err := v.pipeline.CaptureAll(layouts); err != nil {
		return err
	}
	for bp, l := range layouts {
		v.layouts[bp] = l.Clone()
	}
	return nil
}

// BeginAdd adds w to the board and starts an add operation. onDone runs
// when the widget has been placed and revealed.
func (v *View) BeginAdd(w Widget, onDone func()) error {
	if v.adding {
		return errors.New(errors.ErrCodeInvalidInput, "an add is already in progress on board %s", v.board.ID)
	}
	if err := v.board.Add(w); err != nil {
		return err
	}
	v.adding = true
	v.addingID = w.ID
	v.onDone = onDone
	return nil
}

// CancelAdd ends an add operation without revealing the widget.
func (v *View) CancelAdd() {
	v.adding = false
	v.addingID = ""
	v.onDone = nil
}

func (v *View) completeAdd() {
	done := v.onDone
	v.CancelAdd()
	if done != nil {
		done()
	}
}

// RemoveWidget deletes a widget. Its rectangles disappear on the next render;
// other widgets keep their positions. Removing the widget of a pending add
// cancels the add.
func (v *View) RemoveWidget(id string) error {
	if err := v.board.Remove(id); err != nil {
		return err
	}
	if v.adding && id == v.addingID {
		v.CancelAdd()
	}
	return nil
}

// ApplyRemote replaces the stored layouts with a set read from the
// repository, typically from Subscribe. Breakpoints with an uncommitted local
// interaction keep the local layout.
func (v *View) ApplyRemote(layouts grid.Layouts) {
	pending := v.pipeline.Pending()
	next := layouts.Clone()
	if next == nil {
		next = make(grid.Layouts)
	}
	for bp := range pending {
		if l, ok := v.layouts[bp]; ok {
			next[bp] = l
		}
	}
	v.layouts = next
}

// Subscribe follows layout changes of the board, including changes from
// other sessions. Feed the values to ApplyRemote.
func (v *View) Subscribe(ctx context.Context) (<-chan grid.Layouts, error) {
	return v.repo.Subscribe(ctx, v.board.ID)
}

// Flush commits pending interactions now.
func (v *View) Flush(ctx context.Context) error {
	return v.pipeline.Flush(ctx)
}

// Close drops pending interactions and stops the commit timer.
func (v *View) Close() error {
	if v.closed {
		return nil
	}
	v.closed = true
	v.CancelAdd()
	return v.pipeline.Close()
}
