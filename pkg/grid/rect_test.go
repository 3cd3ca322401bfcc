package grid

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/lemu/seamless-sea-sub003/pkg/errors"
)

func TestRectValidate(t *testing.T) {
	tests := []struct {
		name    string
		rect    Rect
		wantErr bool
	}{
		{"unit", Rect{WidgetID: "a", W: 1, H: 1}, false},
		{"large", Rect{WidgetID: "a", X: 3, Y: 9, W: 4, H: 2}, false},
		{"no id", Rect{W: 1, H: 1}, true},
		{"negative x", Rect{WidgetID: "a", X: -1, W: 1, H: 1}, true},
		{"negative y", Rect{WidgetID: "a", Y: -2, W: 1, H: 1}, true},
		{"zero width", Rect{WidgetID: "a", W: 0, H: 1}, true},
		{"zero height", Rect{WidgetID: "a", W: 1, H: 0}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rect.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, errors.ErrCodeInvalidSnapshot) {
				t.Errorf("Validate() code = %v, want INVALID_SNAPSHOT", errors.GetCode(err))
			}
		})
	}
}

func TestRectUnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Rect
		wantErr bool
	}{
		{"integers", `{"i":"a","x":1,"y":2,"w":3,"h":4}`, Rect{WidgetID: "a", X: 1, Y: 2, W: 3, H: 4}, false},
		{"whole floats", `{"i":"a","x":1.0,"y":0,"w":2.0,"h":1}`, Rect{WidgetID: "a", X: 1, W: 2, H: 1}, false},
		{"fractional width", `{"i":"a","x":0,"y":0,"w":1.5,"h":1}`, Rect{}, true},
		{"missing height", `{"i":"a","x":0,"y":0,"w":1}`, Rect{}, true},
		{"string coordinate", `{"i":"a","x":"left","y":0,"w":1,"h":1}`, Rect{}, true},
		{"not an object", `[1,2]`, Rect{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Rect
			err := json.Unmarshal([]byte(tt.input), &got)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Unmarshal() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, errors.ErrCodeInvalidSnapshot) {
					t.Errorf("error code = %v, want INVALID_SNAPSHOT", errors.GetCode(err))
				}
				return
			}
			if got != tt.want {
				t.Errorf("Unmarshal() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestRectMarshalJSON(t *testing.T) {
	data, err := json.Marshal(Rect{WidgetID: "a", X: 1, Y: 2, W: 3, H: 4})
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	if want := `{"i":"a","x":1,"y":2,"w":3,"h":4}`; string(data) != want {
		t.Errorf("Marshal() = %s, want %s", data, want)
	}
}

func TestLayoutValidateDuplicates(t *testing.T) {
	l := Layout{
		{WidgetID: "a", W: 1, H: 1},
		{WidgetID: "a", X: 1, W: 1, H: 1},
	}
	if err := l.Validate(); !errors.Is(err, errors.ErrCodeInvalidSnapshot) {
		t.Errorf("Validate() = %v, want INVALID_SNAPSHOT", err)
	}
}

func TestLayoutValidateWithin(t *testing.T) {
	limit := SnapshotRowLimit(10)
	if limit != 20 {
		t.Fatalf("SnapshotRowLimit(10) = %d, want 20", limit)
	}
	if got := SnapshotRowLimit(0); got != 2*DefaultRowCeiling {
		t.Errorf("SnapshotRowLimit(0) = %d, want %d", got, 2*DefaultRowCeiling)
	}

	tests := []struct {
		name    string
		layout  Layout
		wantErr bool
	}{
		{"inside", Layout{{WidgetID: "a", X: 3, Y: 19, W: 1, H: 1}}, false},
		{"past columns", Layout{{WidgetID: "a", X: 3, W: 2, H: 1}}, true},
		{"past row limit", Layout{{WidgetID: "a", Y: 20, W: 1, H: 1}}, true},
		{"max height", Layout{{WidgetID: "a", W: 1, H: math.MaxInt32}}, true},
		{"zero size", Layout{{WidgetID: "a", W: 0, H: 1}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.layout.ValidateWithin(4, limit)
			if tt.wantErr && !errors.Is(err, errors.ErrCodeInvalidSnapshot) {
				t.Errorf("ValidateWithin() = %v, want INVALID_SNAPSHOT", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("ValidateWithin() unexpected error: %v", err)
			}
		})
	}

	wide := Layout{{WidgetID: "a", X: 30, W: 1, H: 1}}
	if err := wide.ValidateWithin(0, limit); err != nil {
		t.Errorf("ValidateWithin(0 columns) = %v, want nil", err)
	}
}

func TestLayoutHelpers(t *testing.T) {
	l := Layout{
		{WidgetID: "a", X: 0, Y: 0, W: 2, H: 2},
		{WidgetID: "b", X: 1, Y: 1, W: 1, H: 3},
	}
	if got := l.Rows(); got != 4 {
		t.Errorf("Rows() = %d, want 4", got)
	}
	if pairs := l.Overlapping(); len(pairs) != 1 || pairs[0] != [2]string{"a", "b"} {
		t.Errorf("Overlapping() = %v, want [[a b]]", pairs)
	}
	if w := l.Without("a"); len(w) != 1 || w[0].WidgetID != "b" {
		t.Errorf("Without(a) = %v", w)
	}
	c := l.Clone()
	c[0].X = 9
	if l[0].X != 0 {
		t.Error("Clone shares memory")
	}
	if !l.Equal(l.Clone()) {
		t.Error("Equal(Clone) = false")
	}
}

func TestLayoutsEqual(t *testing.T) {
	a := Layouts{"wide": {{WidgetID: "a", W: 1, H: 1}}}
	b := a.Clone()
	if !a.Equal(b) {
		t.Error("Equal(Clone) = false")
	}
	b["narrow"] = Layout{}
	if a.Equal(b) {
		t.Error("Equal with extra breakpoint = true")
	}
}
