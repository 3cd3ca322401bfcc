// Package focus reveals a freshly added widget.
//
// The [Controller] watches the widget set render by render. When the count
// grows while the caller has an add operation in flight, it finds the newest
// widget's rectangle, grows the grid first if the rectangle sits at or below
// the row capacity, and then asks for a single scroll to the rectangle. Count
// changes from other sessions or from deletions never scroll.
package focus

import (
	"time"

	"github.com/lemu/seamless-sea-sub003/pkg/grid"
)

// Default pixel geometry of one grid row.
const (
	DefaultRowHeight = 100
	DefaultRowMargin = 10
)

// WidgetRef is the part of a widget the controller needs.
type WidgetRef struct {
	ID        string
	CreatedAt time.Time
}

// Frame is the state of one render.
type Frame struct {
	// Widgets is the current widget set in stable order.
	Widgets []WidgetRef

	// Layout is the synchronized layout of the active breakpoint.
	Layout grid.Layout

	// MaxRows is the active breakpoint's current row capacity.
	MaxRows int

	// Adding is the caller's add-in-progress flag.
	Adding bool
}

// ActionKind tells the caller what to do after a render.
type ActionKind int

const (
	// ActionNone means nothing to do.
	ActionNone ActionKind = iota
	// ActionGrow asks the caller to raise the row capacity to Action.MaxRows
	// and render again before scrolling.
	ActionGrow
	// ActionScroll asks the caller to scroll Action.Target into view and then
	// signal completion of the add operation.
	ActionScroll
)

// String returns the action name.
func (k ActionKind) String() string {
	switch k {
	case ActionGrow:
		return "grow"
	case ActionScroll:
		return "scroll"
	default:
		return "none"
	}
}

// Target is a scroll destination in pixels.
type Target struct {
	WidgetID string
	Rect     grid.Rect
	Top      int
	Height   int
}

// Action is the controller's decision for one frame.
type Action struct {
	Kind    ActionKind
	MaxRows int
	Target  Target
}

// Options configures a Controller.
type Options struct {
	RowHeight  int
	RowMargin  int
	RowCeiling int
}

// Controller tracks the widget count of one board view.
// It is driven from the view's render loop and is not safe for concurrent use.
type Controller struct {
	opts Options

	count   int
	primed  bool
	pending string
	grown   bool
}

// New creates a Controller. Zero options take the package defaults.
func New(opts Options) *Controller {
	if opts.RowHeight <= 0 {
		opts.RowHeight = DefaultRowHeight
	}
	if opts.RowMargin < 0 {
		opts.RowMargin = 0
	}
	if opts.RowCeiling <= 0 {
		opts.RowCeiling = grid.DefaultRowCeiling
	}
	return &Controller{opts: opts}
}

// Pending returns the widget the controller is waiting to reveal, if any.
func (c *Controller) Pending() (string, bool) {
	return c.pending, c.pending != ""
}

// Reset forgets the tracked count and any pending widget. Used when the view
// switches boards.
func (c *Controller) Reset() {
	*c = Controller{opts: c.opts}
}

// Observe inspects one rendered frame.
func (c *Controller) Observe(f Frame) Action {
	n := len(f.Widgets)
	switch {
	case !c.primed:
		// The first frame only establishes the baseline.
		c.primed = true
		c.count = n
	case n < c.count:
		c.count = n
		c.pending = ""
		c.grown = false
		return Action{}
	case n > c.count:
		c.count = n
		if f.Adding {
			c.pending = newest(f.Widgets)
			c.grown = false
		}
	}

	if c.pending == "" {
		return Action{}
	}
	if !f.Adding {
		// The add operation ended without us (cancelled by the caller).
		c.pending = ""
		return Action{}
	}

	r, ok := f.Layout.Find(c.pending)
	if !ok {
		// Not synchronized yet; try again next render.
		return Action{}
	}

	if !c.grown && r.Bottom() >= f.MaxRows {
		want := min(r.Bottom()+1, max(c.opts.RowCeiling, f.MaxRows))
		if want > f.MaxRows {
			c.grown = true
			return Action{Kind: ActionGrow, MaxRows: want}
		}
	}

	c.pending = ""
	c.grown = false
	return Action{Kind: ActionScroll, Target: c.target(r)}
}

func (c *Controller) target(r grid.Rect) Target {
	return Target{
		WidgetID: r.WidgetID,
		Rect:     r,
		Top:      r.Y*(c.opts.RowHeight+c.opts.RowMargin) + c.opts.RowMargin,
		Height:   r.H*c.opts.RowHeight + max(r.H-1, 0)*c.opts.RowMargin,
	}
}

// newest returns the widget with the latest creation time; ties go to the
// later position.
func newest(ws []WidgetRef) string {
	best := -1
	for i, w := range ws {
		if best < 0 || !w.CreatedAt.Before(ws[best].CreatedAt) {
			best = i
		}
	}
	if best < 0 {
		return ""
	}
	return ws[best].ID
}
