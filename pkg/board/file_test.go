package board

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/lemu/seamless-sea-sub003/pkg/errors"
)

const deskYAML = `
id: voyage-desk
title: Voyage desk
scope:
  org: acme
widgets:
  - type: chart
    title: Freight rates
  - id: positions
    type: Table
    title: Open positions
    config:
      columns: [vessel, eta, port]
`

func TestParse(t *testing.T) {
	b, err := Parse([]byte(deskYAML))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if b.ID != "voyage-desk" || b.Scope.Org != "acme" || len(b.Widgets) != 2 {
		t.Fatalf("Parse() = %+v", b)
	}

	rates, positions := b.Widgets[0], b.Widgets[1]
	if rates.ID == "" {
		t.Error("widget without id did not get one")
	}
	if positions.ID != "positions" || positions.Type != TypeTable {
		t.Errorf("positions = %+v", positions)
	}
	if !rates.CreatedAt.Before(positions.CreatedAt) {
		t.Errorf("creation order not kept: %v !< %v", rates.CreatedAt, positions.CreatedAt)
	}
	if cols, ok := positions.Config["columns"].([]any); !ok || len(cols) != 3 {
		t.Errorf("config = %#v", positions.Config)
	}
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"syntax", "id: [desk"},
		{"unknown field", "id: desk\nlayout: grid\n"},
		{"missing id", "widgets: []\n"},
		{"bad widget type", "id: desk\nwidgets:\n  - type: map\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.body))
			if !errors.Is(err, errors.ErrCodeInvalidBoard) {
				t.Errorf("Parse() error = %v, want INVALID_BOARD", err)
			}
		})
	}
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	if !errors.Is(err, errors.ErrCodeBoardNotFound) {
		t.Errorf("LoadFile() error = %v, want BOARD_NOT_FOUND", err)
	}
}

func TestSaveFileRoundTrip(t *testing.T) {
	b, err := Parse([]byte(deskYAML))
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "desk.yaml")
	if err := SaveFile(path, b); err != nil {
		t.Fatalf("SaveFile() error: %v", err)
	}
	got, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error: %v", err)
	}
	if diff := cmp.Diff(b, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadExampleBoard(t *testing.T) {
	b, err := LoadFile(filepath.Join("..", "..", "examples", "boards", "voyage-desk.yaml"))
	if err != nil {
		t.Fatalf("LoadFile() error: %v", err)
	}
	if b.Scope.KeyPrefix() != "org:acme:" {
		t.Errorf("KeyPrefix() = %q", b.Scope.KeyPrefix())
	}
	if len(b.Widgets) != 4 || b.Widgets[3].Type != TypePlaceholder || b.Widgets[3].ID == "" {
		t.Errorf("widgets = %+v", b.Widgets)
	}
}
