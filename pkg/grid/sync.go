package grid

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/lemu/seamless-sea-sub003/pkg/observability"
)

// DefaultRowCeiling bounds row growth when no ceiling is configured.
const DefaultRowCeiling = 24

// SyncResult is the outcome of one synchronization pass.
type SyncResult struct {
	// Layout is the live layout: stored rectangles of current widgets in
	// stored order, followed by new placements in widget order.
	Layout Layout

	// Placed lists the widgets that received a rectangle in this pass.
	Placed []string

	// MaxRows is the row capacity after any growth.
	MaxRows int

	// Exhausted is set when a widget had to be placed past the row ceiling.
	Exhausted bool
}

// Synchronizer reconciles stored layouts with the current widget set.
// It holds no per-board state and is safe for concurrent use.
type Synchronizer struct {
	RowCeiling int
	Logger     *log.Logger
}

// NewSynchronizer creates a synchronizer with the given row ceiling.
// A ceiling below one uses DefaultRowCeiling; a nil logger discards output.
func NewSynchronizer(rowCeiling int, logger *log.Logger) *Synchronizer {
	if rowCeiling < 1 {
		rowCeiling = DefaultRowCeiling
	}
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Synchronizer{RowCeiling: rowCeiling, Logger: logger}
}

// Sync places every widget of widgetIDs that has no rectangle in existing.
//
// Existing rectangles are returned untouched. Rectangles of widgets that are
// no longer in widgetIDs are dropped and free their cells, but nothing else
// moves to fill the gap. When the grid is full the capacity grows one row at
// a time until RowCeiling; past the ceiling widgets spill onto row MaxRows and
// may overlap. maxRows is clamped to SnapshotRowLimit(RowCeiling).
func (s *Synchronizer) Sync(existing Layout, widgetIDs []string, bp Breakpoint, maxRows int) SyncResult {
	start := time.Now()
	maxRows = min(max(maxRows, 1), SnapshotRowLimit(s.RowCeiling))

	current := make(map[string]struct{}, len(widgetIDs))
	for _, id := range widgetIDs {
		current[id] = struct{}{}
	}

	kept := make(Layout, 0, len(widgetIDs))
	has := make(map[string]struct{}, len(existing))
	for _, r := range existing {
		if _, ok := current[r.WidgetID]; !ok {
			continue
		}
		if _, dup := has[r.WidgetID]; dup {
			continue
		}
		has[r.WidgetID] = struct{}{}
		kept = append(kept, r)
	}

	res := SyncResult{Layout: kept, MaxRows: maxRows}

	var pending []string
	for _, id := range widgetIDs {
		if _, ok := has[id]; ok {
			continue
		}
		has[id] = struct{}{}
		pending = append(pending, id)
	}
	if len(pending) == 0 {
		observability.Layout().OnSync(bp.Name, len(res.Layout), 0, time.Since(start))
		return res
	}

	occ := NewOccupancy(kept, bp.Columns, max(res.MaxRows, s.RowCeiling)+1)
	alloc := Allocator{Columns: bp.Columns}
	for _, id := range pending {
		r, ok := alloc.Allocate(occ, res.MaxRows, id)
		for !ok && res.MaxRows < s.RowCeiling {
			observability.Layout().OnGrow(bp.Name, res.MaxRows, res.MaxRows+1)
			res.MaxRows++
			r, ok = alloc.Allocate(occ, res.MaxRows, id)
		}
		if !ok {
			occ.Mark(r)
			res.Exhausted = true
			s.Logger.Warn("row ceiling reached, widget placed past it",
				"breakpoint", bp.Name, "widget", id, "row", r.Y, "ceiling", s.RowCeiling)
			observability.Layout().OnExhausted(bp.Name, id, s.RowCeiling)
		}
		res.Layout = append(res.Layout, r)
		res.Placed = append(res.Placed, id)
	}

	s.Logger.Debug("synchronized layout",
		"breakpoint", bp.Name, "widgets", len(res.Layout), "placed", len(res.Placed), "max_rows", res.MaxRows)
	observability.Layout().OnSync(bp.Name, len(res.Layout), len(res.Placed), time.Since(start))
	return res
}

// SyncAll synchronizes each breakpoint of bps independently and returns the
// per-breakpoint results. maxRows supplies the capacity per breakpoint name;
// missing entries start at one row.
func (s *Synchronizer) SyncAll(layouts Layouts, widgetIDs []string, bps Breakpoints, maxRows map[string]int) map[string]SyncResult {
	out := make(map[string]SyncResult, len(bps))
	for _, bp := range bps {
		out[bp.Name] = s.Sync(layouts[bp.Name], widgetIDs, bp, maxRows[bp.Name])
	}
	return out
}
