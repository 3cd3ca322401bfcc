package store

import (
	"context"
	"sync"

	"github.com/lemu/seamless-sea-sub003/pkg/grid"
)

// MemoryStore keeps layouts in process memory.
type MemoryStore struct {
	mu     sync.RWMutex
	boards map[string]grid.Layouts
	hub    *hub
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{boards: make(map[string]grid.Layouts), hub: newHub()}
}

// ReadLayouts implements Repository.
func (s *MemoryStore) ReadLayouts(ctx context.Context, boardID string) (grid.Layouts, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if ls, ok := s.boards[boardID]; ok {
		return ls.Clone(), nil
	}
	return grid.Layouts{}, nil
}

// WriteLayout implements Repository.
func (s *MemoryStore) WriteLayout(ctx context.Context, boardID, breakpoint string, layout grid.Layout) error {
	if err := checkWrite(boardID, breakpoint, layout); err != nil {
		return err
	}
	if layout == nil {
		layout = grid.Layout{}
	}

	s.mu.Lock()
	ls := s.boards[boardID]
	if ls == nil {
		ls = make(grid.Layouts)
		s.boards[boardID] = ls
	}
	ls[breakpoint] = layout.Clone()
	snapshot := ls.Clone()
	s.mu.Unlock()

	s.hub.publish(boardID, snapshot)
	return nil
}

// Subscribe implements Repository.
func (s *MemoryStore) Subscribe(ctx context.Context, boardID string) (<-chan grid.Layouts, error) {
	return s.hub.subscribe(ctx, boardID), nil
}

// Close implements Repository.
func (s *MemoryStore) Close() error {
	s.hub.close()
	return nil
}

var _ Repository = (*MemoryStore)(nil)
