package grid

// cell is one grid unit.
type cell struct{ x, y int }

// Occupancy is the set of filled cells of one breakpoint layout inside a
// bounded region. It is derived, never persisted, and rebuilt for every
// synchronization.
type Occupancy struct {
	cells   map[cell]struct{}
	columns int
	rows    int
}

// NewOccupancy marks every cell covered by rects inside the region of
// columns × rows cells anchored at the origin. Cells outside the region are
// not recorded; the allocator never scans them.
func NewOccupancy(rects []Rect, columns, rows int) *Occupancy {
	o := &Occupancy{columns: max(columns, 0), rows: max(rows, 0)}
	area := 0
	for _, r := range rects {
		w, h := o.clip(r)
		area += w * h
	}
	o.cells = make(map[cell]struct{}, area)
	for _, r := range rects {
		o.Mark(r)
	}
	return o
}

// clip returns the width and height of the part of r inside the region.
func (o *Occupancy) clip(r Rect) (int, int) {
	w := min(r.Right(), o.columns) - max(r.X, 0)
	h := min(r.Bottom(), o.rows) - max(r.Y, 0)
	return max(w, 0), max(h, 0)
}

// Mark fills every cell covered by r inside the region.
func (o *Occupancy) Mark(r Rect) {
	x0, y0 := max(r.X, 0), max(r.Y, 0)
	x1, y1 := min(r.Right(), o.columns), min(r.Bottom(), o.rows)
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			o.cells[cell{x, y}] = struct{}{}
		}
	}
}

// Occupied reports whether the cell (x, y) is filled.
func (o *Occupancy) Occupied(x, y int) bool {
	_, ok := o.cells[cell{x, y}]
	return ok
}

// Len returns the number of filled cells.
func (o *Occupancy) Len() int { return len(o.cells) }
