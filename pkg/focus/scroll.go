package focus

// Scroller brings a target into view.
type Scroller interface {
	ScrollTo(t Target) error
}

// ScrollerFunc adapts a function to Scroller.
type ScrollerFunc func(t Target) error

// ScrollTo implements Scroller.
func (f ScrollerFunc) ScrollTo(t Target) error { return f(t) }

// Container is one level of the rendering surface's ancestry.
type Container interface {
	Scroller
	Parent() Container
	Scrollable() bool
}

// NearestScrollable walks up from start to the first container that can
// scroll vertically.
func NearestScrollable(start Container) (Container, bool) {
	for c := start; c != nil; c = c.Parent() {
		if c.Scrollable() {
			return c, true
		}
	}
	return nil, false
}

// ScrollIntoView scrolls the nearest scrollable ancestor of start to t,
// falling back to the window-level scroller when there is none.
func ScrollIntoView(start Container, window Scroller, t Target) error {
	if c, ok := NearestScrollable(start); ok {
		return c.ScrollTo(t)
	}
	if window == nil {
		return nil
	}
	return window.ScrollTo(t)
}
