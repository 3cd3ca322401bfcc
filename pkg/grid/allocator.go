package grid

// Allocator assigns 1×1 rectangles to unplaced widgets.
type Allocator struct {
	Columns int
}

// Allocate returns the first free cell scanning rows 0..maxRows-1 left to
// right, and marks it in occ so the next call cannot receive it.
//
// When no cell is free it returns a rectangle at column 0 on row maxRows and
// false; the caller grows the grid or accepts the spill-over.
func (a Allocator) Allocate(occ *Occupancy, maxRows int, widgetID string) (Rect, bool) {
	for y := 0; y < maxRows; y++ {
		for x := 0; x < a.Columns; x++ {
			if occ.Occupied(x, y) {
				continue
			}
			r := Rect{WidgetID: widgetID, X: x, Y: y, W: 1, H: 1}
			occ.Mark(r)
			return r, true
		}
	}
	return Rect{WidgetID: widgetID, X: 0, Y: maxRows, W: 1, H: 1}, false
}
