package store

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"github.com/lemu/seamless-sea-sub003/pkg/errors"
	"github.com/lemu/seamless-sea-sub003/pkg/grid"
)

// FileStore keeps one JSON document per board in a directory.
// Several processes may share the directory; Subscribe picks up their writes
// through filesystem notifications.
type FileStore struct {
	mu     sync.Mutex
	dir    string
	keyer  Keyer
	logger *log.Logger
}

// boardFile is the on-disk document.
type boardFile struct {
	Board     string       `json:"board"`
	Layouts   grid.Layouts `json:"layouts"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// NewFileStore creates a file store in dir, creating the directory if needed.
// A nil keyer uses the default keys; a nil logger discards output.
func NewFileStore(dir string, keyer Keyer, logger *log.Logger) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	if keyer == nil {
		keyer = NewDefaultKeyer()
	}
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &FileStore{dir: dir, keyer: keyer, logger: logger}, nil
}

// Path returns the store directory.
func (s *FileStore) Path() string { return s.dir }

// path maps a board to its file. Keys are hashed so that any board id and
// prefix yield a valid file name.
func (s *FileStore) path(boardID string) string {
	return filepath.Join(s.dir, hashKey(s.keyer.BoardKey(boardID))+".json")
}

// ReadLayouts implements Repository.
func (s *FileStore) ReadLayouts(ctx context.Context, boardID string) (grid.Layouts, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.load(boardID)
	if err != nil {
		return nil, err
	}
	return doc.Layouts, nil
}

func (s *FileStore) load(boardID string) (*boardFile, error) {
	data, err := os.ReadFile(s.path(boardID))
	if os.IsNotExist(err) {
		return &boardFile{Board: boardID, Layouts: grid.Layouts{}}, nil
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStoreUnavailable, err, "read board %s", boardID)
	}

	var doc boardFile
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidSnapshot, err, "parse board %s", boardID)
	}
	if doc.Layouts == nil {
		doc.Layouts = grid.Layouts{}
	}
	return &doc, nil
}

// WriteLayout implements Repository. The document is replaced atomically so
// that concurrent readers never see a partial file.
func (s *FileStore) WriteLayout(ctx context.Context, boardID, breakpoint string, layout grid.Layout) error {
	if err := checkWrite(boardID, breakpoint, layout); err != nil {
		return err
	}
	if layout == nil {
		layout = grid.Layout{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load(boardID)
	if err != nil {
		return err
	}
	doc.Layouts[breakpoint] = layout.Clone()
	doc.UpdatedAt = time.Now().UTC()

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal board: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, ".board-*.tmp")
	if err != nil {
		return errors.Wrap(errors.ErrCodeStoreUnavailable, err, "write board %s", boardID)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(errors.ErrCodeStoreUnavailable, err, "write board %s", boardID)
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(errors.ErrCodeStoreUnavailable, err, "write board %s", boardID)
	}
	if err := os.Rename(tmp.Name(), s.path(boardID)); err != nil {
		return errors.Wrap(errors.ErrCodeStoreUnavailable, err, "write board %s", boardID)
	}
	return nil
}

// Subscribe implements Repository. Each subscription owns a watcher on the
// store directory.
func (s *FileStore) Subscribe(ctx context.Context, boardID string) (<-chan grid.Layouts, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStoreUnavailable, err, "watch store dir")
	}
	if err := watcher.Add(s.dir); err != nil {
		watcher.Close()
		return nil, errors.Wrap(errors.ErrCodeStoreUnavailable, err, "watch store dir")
	}

	out := make(chan grid.Layouts, 1)
	target := filepath.Clean(s.path(boardID))
	logger := s.logger.With("board", boardID)

	go func() {
		defer close(out)
		defer watcher.Close()

		var last grid.Layouts
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target {
					continue
				}
				if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
					continue
				}
				ls, err := s.ReadLayouts(ctx, boardID)
				if err != nil {
					logger.Warn("reload after change failed", "err", err)
					continue
				}
				if ls.Equal(last) {
					continue
				}
				last = ls
				offer(out, ls.Clone())
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("file watcher error", "err", err)
			}
		}
	}()
	return out, nil
}

// Close implements Repository.
func (s *FileStore) Close() error { return nil }

var _ Repository = (*FileStore)(nil)
