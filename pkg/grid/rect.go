package grid

import (
	"encoding/json"
	"math"

	"github.com/lemu/seamless-sea-sub003/pkg/errors"
)

// Rect is one widget's placement in grid units.
// X and Y are the column and row of the top-left cell; W and H span columns
// and rows. The JSON form uses the short keys common to grid layout libraries.
type Rect struct {
	WidgetID string `json:"i" bson:"i" yaml:"i"`
	X        int    `json:"x" bson:"x" yaml:"x"`
	Y        int    `json:"y" bson:"y" yaml:"y"`
	W        int    `json:"w" bson:"w" yaml:"w"`
	H        int    `json:"h" bson:"h" yaml:"h"`
}

// Bottom returns the first row below the rectangle.
func (r Rect) Bottom() int { return r.Y + r.H }

// Right returns the first column right of the rectangle.
func (r Rect) Right() int { return r.X + r.W }

// Contains reports whether the cell (x, y) lies inside the rectangle.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.Right() && y >= r.Y && y < r.Bottom()
}

// Overlaps reports whether two rectangles share at least one cell.
func (r Rect) Overlaps(o Rect) bool {
	return r.X < o.Right() && o.X < r.Right() && r.Y < o.Bottom() && o.Y < r.Bottom()
}

// Validate checks the rectangle invariants: a widget id, non-negative origin
// and a size of at least one cell.
func (r Rect) Validate() error {
	if r.WidgetID == "" {
		return errors.New(errors.ErrCodeInvalidSnapshot, "rectangle without widget id")
	}
	if r.X < 0 || r.Y < 0 {
		return errors.New(errors.ErrCodeInvalidSnapshot, "negative origin (%d,%d) for widget %s", r.X, r.Y, r.WidgetID)
	}
	if r.W < 1 || r.H < 1 {
		return errors.New(errors.ErrCodeInvalidSnapshot, "size %dx%d below 1x1 for widget %s", r.W, r.H, r.WidgetID)
	}
	return nil
}

// wireRect accepts any JSON number so that fractional sizes can be rejected
// with a coded error instead of a generic decode failure.
type wireRect struct {
	I string       `json:"i"`
	X *json.Number `json:"x"`
	Y *json.Number `json:"y"`
	W *json.Number `json:"w"`
	H *json.Number `json:"h"`
}

// UnmarshalJSON decodes a rectangle, rejecting missing or non-integer
// coordinates.
func (r *Rect) UnmarshalJSON(data []byte) error {
	var w wireRect
	if err := json.Unmarshal(data, &w); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidSnapshot, err, "decode rectangle")
	}
	fields := []struct {
		name string
		n    *json.Number
		dst  *int
	}{
		{"x", w.X, &r.X},
		{"y", w.Y, &r.Y},
		{"w", w.W, &r.W},
		{"h", w.H, &r.H},
	}
	for _, f := range fields {
		v, err := gridInt(f.name, w.I, f.n)
		if err != nil {
			return err
		}
		*f.dst = v
	}
	r.WidgetID = w.I
	return nil
}

func gridInt(name, id string, n *json.Number) (int, error) {
	if n == nil {
		return 0, errors.New(errors.ErrCodeInvalidSnapshot, "missing %s for widget %s", name, id)
	}
	f, err := n.Float64()
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeInvalidSnapshot, err, "invalid %s for widget %s", name, id)
	}
	if f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0, errors.New(errors.ErrCodeInvalidSnapshot, "non-integer %s=%s for widget %s", name, n.String(), id)
	}
	return int(f), nil
}

// Layout is the set of rectangles of one breakpoint.
type Layout []Rect

// Find returns the rectangle of the given widget.
func (l Layout) Find(widgetID string) (Rect, bool) {
	for _, r := range l {
		if r.WidgetID == widgetID {
			return r, true
		}
	}
	return Rect{}, false
}

// IDs returns the widget ids in layout order.
func (l Layout) IDs() []string {
	ids := make([]string, len(l))
	for i, r := range l {
		ids[i] = r.WidgetID
	}
	return ids
}

// Clone returns a copy that shares no memory with l.
func (l Layout) Clone() Layout {
	if l == nil {
		return nil
	}
	out := make(Layout, len(l))
	copy(out, l)
	return out
}

// Rows returns the number of rows the layout spans.
func (l Layout) Rows() int {
	rows := 0
	for _, r := range l {
		rows = max(rows, r.Bottom())
	}
	return rows
}

// Without returns the layout minus the given widget's rectangle.
func (l Layout) Without(widgetID string) Layout {
	out := make(Layout, 0, len(l))
	for _, r := range l {
		if r.WidgetID != widgetID {
			out = append(out, r)
		}
	}
	return out
}

// Equal reports whether two layouts hold the same rectangles in the same order.
func (l Layout) Equal(o Layout) bool {
	if len(l) != len(o) {
		return false
	}
	for i := range l {
		if l[i] != o[i] {
			return false
		}
	}
	return true
}

// Overlapping returns every pair of widget ids whose rectangles share a cell.
func (l Layout) Overlapping() [][2]string {
	var pairs [][2]string
	for i := range l {
		for j := i + 1; j < len(l); j++ {
			if l[i].Overlaps(l[j]) {
				pairs = append(pairs, [2]string{l[i].WidgetID, l[j].WidgetID})
			}
		}
	}
	return pairs
}

// Validate checks every rectangle and rejects duplicate widget ids.
// Overlap is not checked: interaction snapshots come from a renderer that
// already prevents overlapping drags.
func (l Layout) Validate() error {
	seen := make(map[string]struct{}, len(l))
	for _, r := range l {
		if err := r.Validate(); err != nil {
			return err
		}
		if _, dup := seen[r.WidgetID]; dup {
			return errors.New(errors.ErrCodeInvalidSnapshot, "duplicate rectangle for widget %s", r.WidgetID)
		}
		seen[r.WidgetID] = struct{}{}
	}
	return nil
}

// SnapshotRowLimit returns the deepest bottom edge a stored rectangle may
// have under the given row ceiling: twice the ceiling, or twice
// DefaultRowCeiling when ceiling is below one.
func SnapshotRowLimit(ceiling int) int {
	if ceiling < 1 {
		ceiling = DefaultRowCeiling
	}
	return 2 * ceiling
}

// ValidateWithin runs Validate and also rejects rectangles that extend past
// columns (when columns is positive) or below rowLimit.
func (l Layout) ValidateWithin(columns, rowLimit int) error {
	if err := l.Validate(); err != nil {
		return err
	}
	for _, r := range l {
		if columns > 0 && r.Right() > columns {
			return errors.New(errors.ErrCodeInvalidSnapshot,
				"widget %s extends to column %d of %d", r.WidgetID, r.Right(), columns)
		}
		if r.Bottom() > rowLimit {
			return errors.New(errors.ErrCodeInvalidSnapshot,
				"widget %s extends to row %d, limit is %d", r.WidgetID, r.Bottom(), rowLimit)
		}
	}
	return nil
}

// Layouts maps breakpoint names to layouts for one board.
type Layouts map[string]Layout

// Clone returns a deep copy.
func (ls Layouts) Clone() Layouts {
	if ls == nil {
		return nil
	}
	out := make(Layouts, len(ls))
	for k, l := range ls {
		out[k] = l.Clone()
	}
	return out
}

// Equal reports whether both sets hold equal layouts for the same breakpoints.
func (ls Layouts) Equal(o Layouts) bool {
	if len(ls) != len(o) {
		return false
	}
	for k, l := range ls {
		ol, ok := o[k]
		if !ok || !l.Equal(ol) {
			return false
		}
	}
	return true
}
