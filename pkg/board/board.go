// Package board holds the dashboard model and the board view that keeps a
// board's widgets, layouts and persistence in step.
//
// A [Board] owns an ordered set of [Widget]s. A [View] renders one board at
// one viewport size: it places new widgets, persists user interactions
// through a debounced commit pipeline, follows layout changes from other
// sessions and reveals widgets the user adds.
package board

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lemu/seamless-sea-sub003/pkg/errors"
)

// WidgetType is the kind of content a widget shows.
type WidgetType string

// Known widget types.
const (
	TypeChart       WidgetType = "chart"
	TypeTable       WidgetType = "table"
	TypePlaceholder WidgetType = "placeholder"
)

// WidgetTypes lists the known widget types.
var WidgetTypes = []WidgetType{TypeChart, TypeTable, TypePlaceholder}

// ParseWidgetType parses a widget type name (case-insensitive).
func ParseWidgetType(s string) (WidgetType, error) {
	t := WidgetType(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range WidgetTypes {
		if t == known {
			return t, nil
		}
	}
	return "", errors.New(errors.ErrCodeInvalidWidget, "unknown widget type %q", s)
}

// Widget is one tile on a board. Config is opaque to the layout engine.
type Widget struct {
	ID        string         `yaml:"id" json:"id"`
	Type      WidgetType     `yaml:"type" json:"type"`
	Title     string         `yaml:"title,omitempty" json:"title,omitempty"`
	Config    map[string]any `yaml:"config,omitempty" json:"config,omitempty"`
	CreatedAt time.Time      `yaml:"created_at" json:"created_at"`
}

// NewWidget creates a widget with a fresh id.
func NewWidget(t WidgetType, title string) Widget {
	return Widget{
		ID:        uuid.NewString(),
		Type:      t,
		Title:     title,
		CreatedAt: time.Now().UTC(),
	}
}

// Validate checks the widget id and type.
func (w Widget) Validate() error {
	if err := errors.ValidateWidgetID(w.ID); err != nil {
		return err
	}
	if _, err := ParseWidgetType(string(w.Type)); err != nil {
		return err
	}
	return nil
}

// Scope names who a board belongs to. An org scope wins over a user scope.
type Scope struct {
	User string `yaml:"user,omitempty" json:"user,omitempty"`
	Org  string `yaml:"org,omitempty" json:"org,omitempty"`
}

// KeyPrefix returns the store key prefix of the scope ("org:acme:"), or ""
// for an unscoped board.
func (s Scope) KeyPrefix() string {
	switch {
	case s.Org != "":
		return "org:" + s.Org + ":"
	case s.User != "":
		return "user:" + s.User + ":"
	default:
		return ""
	}
}

// Board is a dashboard. Widgets are kept in creation order.
type Board struct {
	ID      string   `yaml:"id" json:"id"`
	Title   string   `yaml:"title,omitempty" json:"title,omitempty"`
	Scope   Scope    `yaml:"scope,omitempty" json:"scope,omitempty"`
	Widgets []Widget `yaml:"widgets" json:"widgets"`
}

// WidgetIDs returns the widget ids in board order.
func (b *Board) WidgetIDs() []string {
	ids := make([]string, len(b.Widgets))
	for i, w := range b.Widgets {
		ids[i] = w.ID
	}
	return ids
}

// Widget returns the widget with the given id.
func (b *Board) Widget(id string) (Widget, bool) {
	for _, w := range b.Widgets {
		if w.ID == id {
			return w, true
		}
	}
	return Widget{}, false
}

// Add appends a widget.
func (b *Board) Add(w Widget) error {
	if err := w.Validate(); err != nil {
		return err
	}
	if _, dup := b.Widget(w.ID); dup {
		return errors.New(errors.ErrCodeInvalidWidget, "widget %s already on board %s", w.ID, b.ID)
	}
	b.Widgets = append(b.Widgets, w)
	return nil
}

// Remove deletes a widget, keeping the order of the others.
func (b *Board) Remove(id string) error {
	for i, w := range b.Widgets {
		if w.ID == id {
			b.Widgets = append(b.Widgets[:i:i], b.Widgets[i+1:]...)
			return nil
		}
	}
	return errors.New(errors.ErrCodeWidgetNotFound, "widget %s not on board %s", id, b.ID)
}

// Validate checks the board id and every widget.
func (b *Board) Validate() error {
	if err := errors.ValidateBoardID(b.ID); err != nil {
		return err
	}
	seen := make(map[string]struct{}, len(b.Widgets))
	for i, w := range b.Widgets {
		if err := w.Validate(); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidBoard, err, "widget %d", i)
		}
		if _, dup := seen[w.ID]; dup {
			return errors.New(errors.ErrCodeInvalidBoard, "duplicate widget id %s", w.ID)
		}
		seen[w.ID] = struct{}{}
	}
	return nil
}

// String returns "title (id)".
func (b *Board) String() string {
	if b.Title == "" {
		return b.ID
	}
	return fmt.Sprintf("%s (%s)", b.Title, b.ID)
}
