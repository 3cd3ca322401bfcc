// Package store persists board layouts.
//
// A [Repository] keeps one [grid.Layout] per board and breakpoint. Writes are
// idempotent whole-layout replacements; the last write wins. Subscribe is the
// reactive read: it delivers the board's full layout set each time it changes,
// including changes written by other sessions.
//
// # Backends
//
//   - [MemoryStore]: process-local, used by tests and the default CLI setup
//   - [FileStore]: one JSON document per board, change feed via fsnotify
//   - [SQLiteStore]: embedded database for single-node deployments
//   - [RedisStore]: hash per board with pub/sub notifications
//   - [MongoStore]: document per board with change streams
//
// [Open] builds the backend selected in the configuration and wraps it with
// logging and observability hooks.
package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/lemu/seamless-sea-sub003/pkg/errors"
	"github.com/lemu/seamless-sea-sub003/pkg/grid"
)

// Repository is the layout persistence contract.
type Repository interface {
	// ReadLayouts returns every stored breakpoint layout of a board.
	// An unknown board yields an empty set, not an error.
	ReadLayouts(ctx context.Context, boardID string) (grid.Layouts, error)

	// WriteLayout replaces one breakpoint layout of a board.
	WriteLayout(ctx context.Context, boardID, breakpoint string, layout grid.Layout) error

	// Subscribe delivers the board's layouts after every change until ctx is
	// done, then closes the channel. Slow receivers only see the latest set.
	Subscribe(ctx context.Context, boardID string) (<-chan grid.Layouts, error)

	// Close releases the backend's resources.
	Close() error
}

// checkWrite validates the arguments of a WriteLayout call.
func checkWrite(boardID, breakpoint string, layout grid.Layout) error {
	if err := errors.ValidateBoardID(boardID); err != nil {
		return err
	}
	if err := errors.ValidateBreakpointName(breakpoint); err != nil {
		return err
	}
	return layout.Validate()
}

// encodeLayout returns the stored JSON form of a layout. Empty layouts are
// stored as [] so that a read returns the breakpoint.
func encodeLayout(l grid.Layout) ([]byte, error) {
	if l == nil {
		l = grid.Layout{}
	}
	data, err := json.Marshal(l)
	if err != nil {
		return nil, fmt.Errorf("marshal layout: %w", err)
	}
	return data, nil
}

func decodeLayout(data []byte) (grid.Layout, error) {
	var l grid.Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidSnapshot, err, "decode stored layout")
	}
	return l, nil
}

// offer replaces any undelivered value in ch with ls.
// ch must have capacity one and a single sender.
func offer(ch chan grid.Layouts, ls grid.Layouts) {
	select {
	case <-ch:
	default:
	}
	ch <- ls
}
