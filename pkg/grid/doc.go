// Package grid places dashboard widgets on an integer grid across responsive
// breakpoints.
//
// A board is rendered at one of a fixed, ordered set of [Breakpoint] tiers,
// each with its own column count and its own independent [Layout]. A layout
// is a list of [Rect] values, one per widget, in grid units.
//
// # Placement
//
// Widgets that already have a rectangle in a breakpoint keep it forever unless
// the user drags or resizes them. Widgets without one are placed by the
// [Allocator], which scans an [Occupancy] index in row-major order and takes
// the first free 1×1 cell:
//
//	occ := grid.NewOccupancy(existing, 12, maxRows)
//	rect, ok := grid.Allocator{Columns: 12}.Allocate(occ, maxRows, "w7")
//	if !ok {
//	    // no free cell within maxRows; rect sits on row maxRows
//	}
//
// # Synchronization
//
// The [Synchronizer] reconciles a stored layout with the current widget set on
// every render. It never moves an existing rectangle, never compacts after a
// removal, and grows the row capacity one row at a time up to a hard ceiling:
//
//	s := grid.NewSynchronizer(24, logger)
//	res := s.Sync(stored, widgetIDs, grid.DefaultBreakpoints()[0], maxRows)
//	// res.Layout is the live layout, res.MaxRows the (possibly grown) capacity
//
// Given the same stored layout and the same widget order, Sync returns an
// identical layout every time.
package grid
