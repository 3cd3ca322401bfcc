package grid

import (
	"sort"

	"github.com/lemu/seamless-sea-sub003/pkg/errors"
)

// Breakpoint is a named viewport tier with its own column count.
// A breakpoint applies to viewports at least MinWidth pixels wide.
type Breakpoint struct {
	Name     string `toml:"name" json:"name"`
	MinWidth int    `toml:"min_width" json:"min_width"`
	Columns  int    `toml:"columns" json:"columns"`
}

// Default breakpoint tiers.
const (
	Wide   = "wide"
	Medium = "medium"
	Narrow = "narrow"
)

// Breakpoints is an ordered tier set, widest first.
type Breakpoints []Breakpoint

// DefaultBreakpoints returns the built-in tiers.
func DefaultBreakpoints() Breakpoints {
	return Breakpoints{
		{Name: Wide, MinWidth: 1200, Columns: 12},
		{Name: Medium, MinWidth: 768, Columns: 8},
		{Name: Narrow, MinWidth: 0, Columns: 4},
	}
}

// Normalize returns a copy sorted widest first.
func (bs Breakpoints) Normalize() Breakpoints {
	out := make(Breakpoints, len(bs))
	copy(out, bs)
	sort.SliceStable(out, func(i, j int) bool { return out[i].MinWidth > out[j].MinWidth })
	return out
}

// Validate checks names, column counts and that every viewport width maps to
// exactly one tier.
func (bs Breakpoints) Validate() error {
	if len(bs) == 0 {
		return errors.New(errors.ErrCodeInvalidBreakpoint, "at least one breakpoint is required")
	}
	names := make(map[string]struct{}, len(bs))
	widths := make(map[int]struct{}, len(bs))
	hasZero := false
	for _, b := range bs {
		if err := errors.ValidateBreakpointName(b.Name); err != nil {
			return err
		}
		if _, dup := names[b.Name]; dup {
			return errors.New(errors.ErrCodeInvalidBreakpoint, "duplicate breakpoint %q", b.Name)
		}
		names[b.Name] = struct{}{}
		if b.Columns < 1 {
			return errors.New(errors.ErrCodeInvalidBreakpoint, "breakpoint %q needs at least one column", b.Name)
		}
		if b.MinWidth < 0 {
			return errors.New(errors.ErrCodeInvalidBreakpoint, "breakpoint %q has negative min width", b.Name)
		}
		if _, dup := widths[b.MinWidth]; dup {
			return errors.New(errors.ErrCodeInvalidBreakpoint, "breakpoints share min width %d", b.MinWidth)
		}
		widths[b.MinWidth] = struct{}{}
		hasZero = hasZero || b.MinWidth == 0
	}
	if !hasZero {
		return errors.New(errors.ErrCodeInvalidBreakpoint, "one breakpoint must have min width 0")
	}
	return nil
}

// Lookup returns the breakpoint with the given name.
func (bs Breakpoints) Lookup(name string) (Breakpoint, bool) {
	for _, b := range bs {
		if b.Name == name {
			return b, true
		}
	}
	return Breakpoint{}, false
}

// ForWidth returns the widest tier whose MinWidth fits the viewport.
// The set is expected to be normalized; the narrowest tier is the fallback.
func (bs Breakpoints) ForWidth(width int) Breakpoint {
	for _, b := range bs {
		if width >= b.MinWidth {
			return b
		}
	}
	return bs[len(bs)-1]
}

// Names returns the tier names in order.
func (bs Breakpoints) Names() []string {
	names := make([]string, len(bs))
	for i, b := range bs {
		names[i] = b.Name
	}
	return names
}

// RowsForHeight returns how many rows of rowHeight separated by margin fit in
// a viewport of the given height. The result is at least one.
func RowsForHeight(height, rowHeight, margin int) int {
	if rowHeight < 1 {
		return 1
	}
	return max(1, (height-margin)/(rowHeight+margin))
}
