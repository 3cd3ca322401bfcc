package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/lemu/seamless-sea-sub003/pkg/errors"
	"github.com/lemu/seamless-sea-sub003/pkg/grid"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS layouts (
	board_key TEXT NOT NULL,
	breakpoint TEXT NOT NULL,
	rects TEXT NOT NULL,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (board_key, breakpoint)
);
`

// SQLiteStore keeps layouts in an embedded SQLite database.
// Change notifications only reach subscribers in the same process.
type SQLiteStore struct {
	db    *sql.DB
	keyer Keyer
	hub   *hub
}

// NewSQLiteStore opens (or creates) the database at path.
func NewSQLiteStore(path string, keyer Keyer) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStoreUnavailable, err, "open database")
	}
	// One connection serializes writers and keeps :memory: databases shared.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, errors.Wrap(errors.ErrCodeStoreUnavailable, err, "create schema")
	}

	if keyer == nil {
		keyer = NewDefaultKeyer()
	}
	return &SQLiteStore{db: db, keyer: keyer, hub: newHub()}, nil
}

// ReadLayouts implements Repository.
func (s *SQLiteStore) ReadLayouts(ctx context.Context, boardID string) (grid.Layouts, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT breakpoint, rects FROM layouts WHERE board_key = ?`, s.keyer.BoardKey(boardID))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStoreUnavailable, err, "query board %s", boardID)
	}
	defer rows.Close()

	ls := grid.Layouts{}
	for rows.Next() {
		var bp, rects string
		if err := rows.Scan(&bp, &rects); err != nil {
			return nil, errors.Wrap(errors.ErrCodeStoreUnavailable, err, "scan board %s", boardID)
		}
		l, err := decodeLayout([]byte(rects))
		if err != nil {
			return nil, err
		}
		ls[bp] = l
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStoreUnavailable, err, "query board %s", boardID)
	}
	return ls, nil
}

// WriteLayout implements Repository.
func (s *SQLiteStore) WriteLayout(ctx context.Context, boardID, breakpoint string, layout grid.Layout) error {
	if err := checkWrite(boardID, breakpoint, layout); err != nil {
		return err
	}
	data, err := encodeLayout(layout)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO layouts (board_key, breakpoint, rects, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(board_key, breakpoint) DO UPDATE SET
			rects = excluded.rects,
			updated_at = excluded.updated_at`,
		s.keyer.BoardKey(boardID), breakpoint, string(data))
	if err != nil {
		return errors.Wrap(errors.ErrCodeStoreUnavailable, err, "write board %s", boardID)
	}

	ls, err := s.ReadLayouts(ctx, boardID)
	if err != nil {
		return err
	}
	s.hub.publish(boardID, ls)
	return nil
}

// Subscribe implements Repository.
func (s *SQLiteStore) Subscribe(ctx context.Context, boardID string) (<-chan grid.Layouts, error) {
	return s.hub.subscribe(ctx, boardID), nil
}

// Close implements Repository.
func (s *SQLiteStore) Close() error {
	s.hub.close()
	return s.db.Close()
}

var _ Repository = (*SQLiteStore)(nil)
