package board

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/lemu/seamless-sea-sub003/pkg/errors"
)

// LoadFile reads a YAML board definition:
//
//	id: voyage-desk
//	title: Voyage desk
//	scope:
//	  org: acme
//	widgets:
//	  - type: chart
//	    title: Freight rates
//	  - type: table
//	    title: Open positions
//
// Widgets without an id get a fresh one and widgets without a creation time
// get the load time, in file order. SaveFile writes them back.
func LoadFile(path string) (*Board, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeBoardNotFound, err, "board file %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("read board file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML board definition. See LoadFile.
func Parse(data []byte) (*Board, error) {
	var b Board
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&b); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidBoard, err, "parse board")
	}

	now := time.Now().UTC()
	for i := range b.Widgets {
		w := &b.Widgets[i]
		if w.ID == "" {
			w.ID = uuid.NewString()
		}
		if w.CreatedAt.IsZero() {
			// Keep file order as creation order.
			w.CreatedAt = now.Add(time.Duration(i) * time.Millisecond)
		}
		if t, err := ParseWidgetType(string(w.Type)); err == nil {
			w.Type = t
		}
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return &b, nil
}

// SaveFile writes b as YAML.
func SaveFile(path string, b *Board) error {
	if err := b.Validate(); err != nil {
		return err
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(b); err != nil {
		return fmt.Errorf("encode board: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encode board: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write board file: %w", err)
	}
	return nil
}
